package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocabuddy/progress/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 8)
	pool.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.TrySubmit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}

	pool.Stop()
	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_TrySubmitFullQueue(t *testing.T) {
	pool := worker.NewPool(1, 1)

	block := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	require.NoError(t, pool.TrySubmit(block))

	err := pool.TrySubmit(block)
	assert.ErrorIs(t, err, worker.ErrQueueFull)

	pool.Start(context.Background())
	pool.Stop()
}

func TestPool_FailingAndPanickingJobsDoNotStopWorkers(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.TrySubmit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, pool.TrySubmit(funcJob{name: "panic", fn: func(context.Context) error { panic("oops") }}))
	require.NoError(t, pool.TrySubmit(funcJob{name: "ok", fn: func(context.Context) error {
		wg.Done()
		return nil
	}}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job after failures never ran")
	}
	pool.Stop()
}

func TestPool_StopTwiceAndSubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())

	pool.Stop()
	pool.Stop()

	job := funcJob{name: "late", fn: func(context.Context) error { return nil }}
	assert.ErrorIs(t, pool.TrySubmit(job), worker.ErrStopped)
}
