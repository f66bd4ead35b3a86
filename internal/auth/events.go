package auth

import (
	"context"
	"sync"
)

type EventKind string

const (
	SignedIn  EventKind = "signIn"
	SignedOut EventKind = "signOut"
)

// Event is one authentication transition. Identity is empty on sign-out.
type Event struct {
	Kind     EventKind
	Identity Identity
}

// Events fans every published transition out to all current subscribers.
type Events struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	ch      chan Event
	done    chan struct{}
	sending sync.WaitGroup
}

func NewEvents() *Events {
	return &Events{subs: map[int]*subscription{}}
}

// Subscribe returns a channel of future events and a func that ends the
// subscription and closes the channel. Ending a subscription never waits on
// a publisher blocked on it.
func (e *Events) Subscribe(buffer int) (<-chan Event, func()) {
	sub := &subscription{ch: make(chan Event, buffer), done: make(chan struct{})}
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = sub
	e.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
			close(sub.done)
			sub.sending.Wait()
			close(sub.ch)
		})
	}
}

// Publish delivers ev to every subscriber, waiting for slow subscribers
// until ctx is done. Subscribers that end mid-delivery are skipped.
func (e *Events) Publish(ctx context.Context, ev Event) error {
	e.mu.Lock()
	targets := make([]*subscription, 0, len(e.subs))
	for _, sub := range e.subs {
		sub.sending.Add(1)
		targets = append(targets, sub)
	}
	e.mu.Unlock()

	var err error
	for _, sub := range targets {
		if err == nil {
			select {
			case sub.ch <- ev:
			case <-sub.done:
			case <-ctx.Done():
				err = ctx.Err()
			}
		}
		sub.sending.Done()
	}
	return err
}
