package jobs

import (
	"time"

	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pushPool    *worker.Pool
	mirror      repository.RemoteMirror
	pushLog     repository.PushLog
	pushTimeout time.Duration
}

// NewWorkerQueue creates a new WorkerQueue implementation. A nil mirror
// makes every EnqueuePush fail with ErrNoMirror.
func NewWorkerQueue(
	pushPool *worker.Pool,
	mirror repository.RemoteMirror,
	pushLog repository.PushLog,
	pushTimeout time.Duration,
) JobQueue {
	return &WorkerQueue{
		pushPool:    pushPool,
		mirror:      mirror,
		pushLog:     pushLog,
		pushTimeout: pushTimeout,
	}
}

// EnqueuePush queues a mirror field update without blocking the caller.
func (q *WorkerQueue) EnqueuePush(userID string, fields map[string]any) error {
	if q.mirror == nil {
		return ErrNoMirror
	}
	job := &worker.PushFieldsJob{
		Mirror:  q.mirror,
		PushLog: q.pushLog,
		UserID:  userID,
		Fields:  fields,
		Timeout: q.pushTimeout,
	}
	return q.pushPool.TrySubmit(job)
}
