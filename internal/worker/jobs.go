package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/repository"
)

// PushFieldsJob writes a partial update to the remote mirror and records
// the outcome of every field path in the push log. Failures are not retried.
type PushFieldsJob struct {
	Mirror  repository.RemoteMirror
	PushLog repository.PushLog
	UserID  string
	Fields  map[string]any
	Timeout time.Duration
}

func (j *PushFieldsJob) Name() string { return "push_fields" }

func (j *PushFieldsJob) Run(ctx context.Context) error {
	paths := make([]string, 0, len(j.Fields))
	for p := range j.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id": j.UserID,
		"fields":  paths,
	})

	pushCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		pushCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := j.Mirror.UpdateFields(pushCtx, j.UserID, j.Fields)
	if err != nil {
		log.Warn("mirror push failed after %v: %v", time.Since(start), err)
	} else {
		log.Debug("mirror push done in %v", time.Since(start))
	}

	if j.PushLog != nil {
		rec := repository.PushRecord{UserID: j.UserID, Status: repository.PushStatusOK}
		if err != nil {
			rec.Status = repository.PushStatusFailed
			rec.Error = err.Error()
		}
		for _, p := range paths {
			rec.FieldPath = p
			if logErr := j.PushLog.Record(ctx, rec); logErr != nil {
				log.Error("failed to record push outcome for %s: %v", p, logErr)
			}
		}
	}

	if err != nil {
		return fmt.Errorf("push fields for %s: %w", j.UserID, err)
	}
	return nil
}
