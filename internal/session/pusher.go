package session

import (
	"context"
	"errors"
	"sync"

	"github.com/vocabuddy/progress/internal/jobs"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/logger"
)

// Pusher forwards field-path updates to the push queue while the session is
// hydrated. It is handed to the ledger and the stores as their
// ledger.Publisher before the session itself exists.
type Pusher struct {
	queue jobs.JobQueue

	mu     sync.RWMutex
	state  State
	userID string
}

var _ ledger.Publisher = (*Pusher)(nil)

func NewPusher(queue jobs.JobQueue) *Pusher {
	return &Pusher{queue: queue, state: SignedOut}
}

func (p *Pusher) set(state State, userID string) {
	p.mu.Lock()
	p.state = state
	p.userID = userID
	p.mu.Unlock()
}

func (p *Pusher) current() (State, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state, p.userID
}

// Publish enqueues fields for the signed-in user. Outside the hydrated state
// it does nothing, and enqueue failures are only logged.
func (p *Pusher) Publish(ctx context.Context, fields map[string]any) {
	state, userID := p.current()
	if state != Hydrated || userID == "" || p.queue == nil || len(fields) == 0 {
		return
	}

	log := logger.FromContext(ctx).WithPrefix("pusher")
	if err := p.queue.EnqueuePush(userID, fields); err != nil {
		if errors.Is(err, jobs.ErrNoMirror) {
			log.Debug("no mirror configured, skipping push of %d field(s)", len(fields))
			return
		}
		log.Warn("dropping push of %d field(s) for %s: %v", len(fields), userID, err)
	}
}
