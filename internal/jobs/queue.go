package jobs

import "errors"

// ErrNoMirror is returned when pushes are enqueued on a device without a remote mirror.
var ErrNoMirror = errors.New("no remote mirror configured")

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueuePush(userID string, fields map[string]any) error
}
