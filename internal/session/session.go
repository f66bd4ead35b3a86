// Package session drives remote mirror synchronization for the signed-in
// user: a single hydration on sign-in, then fire-and-forget pushes.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/vocabuddy/progress/internal/auth"
	apperrors "github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/stores"
)

type State int

const (
	SignedOut State = iota
	Hydrating
	Hydrated
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "signedOut"
	case Hydrating:
		return "hydrating"
	case Hydrated:
		return "hydrated"
	}
	return "unknown"
}

// Status is a point-in-time view of the session.
type Status struct {
	State    string         `json:"state"`
	Identity *auth.Identity `json:"identity,omitempty"`
	Remote   bool           `json:"remote"`
}

type Session struct {
	pusher  *Pusher
	mirror  repository.RemoteMirror
	ledger  *ledger.Ledger
	stores  []stores.Syncable
	timeout time.Duration

	// hydrateMu serializes sign-in and sign-out. It is never held by
	// anything the ledger or the stores call back into.
	hydrateMu sync.Mutex

	mu       sync.RWMutex
	identity *auth.Identity
}

// New creates a signed-out session. mirror may be nil on an offline device.
func New(pusher *Pusher, mirror repository.RemoteMirror, l *ledger.Ledger, syncables []stores.Syncable, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Session{
		pusher:  pusher,
		mirror:  mirror,
		ledger:  l,
		stores:  syncables,
		timeout: timeout,
	}
}

func (s *Session) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).WithPrefix("session")
}

func (s *Session) State() State {
	state, _ := s.pusher.current()
	return state
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{State: s.State().String(), Remote: s.mirror != nil}
	if s.identity != nil {
		id := *s.identity
		st.Identity = &id
	}
	return st
}

// SignIn hydrates local state for id. An existing remote document replaces
// local state; otherwise local state is written as the user's new document.
// Remote failures are logged and local state stays authoritative.
func (s *Session) SignIn(ctx context.Context, id auth.Identity) error {
	if id.UserID == "" {
		return apperrors.NewValidationError("userId", "cannot be empty")
	}

	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	log := s.log(ctx).WithField("user", id.UserID)
	log.Info("signing in")
	s.pusher.set(Hydrating, id.UserID)

	s.ledger.Load(ctx)
	for _, st := range s.stores {
		st.Load(ctx)
	}

	if s.mirror != nil {
		s.hydrate(ctx, log, id.UserID)
	}

	s.mu.Lock()
	identity := id
	s.identity = &identity
	s.mu.Unlock()
	s.pusher.set(Hydrated, id.UserID)

	s.ledger.ApplyIdentity(ctx, id.Name, id.Email, id.Picture)
	log.Info("session hydrated")
	return nil
}

func (s *Session) hydrate(ctx context.Context, log *logger.Logger, userID string) {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	doc, err := s.mirror.ReadDocument(readCtx, userID)
	cancel()
	if err != nil {
		log.Warn("failed to read remote document, keeping local state: %v", err)
		return
	}

	if doc == nil {
		s.writeInitial(ctx, log, userID)
		return
	}
	if doc.SchemaVersion > models.DocumentSchemaVersion {
		log.Error("remote document has schema version %d, newer than %d; keeping local state",
			doc.SchemaVersion, models.DocumentSchemaVersion)
		return
	}

	s.ledger.Replace(ctx, *doc)
	for _, st := range s.stores {
		raw := doc.Collection(st.Field())
		if len(raw) == 0 {
			continue
		}
		if err := st.Replace(ctx, raw); err != nil {
			log.Error("failed to apply remote %s, keeping local copy: %v", st.Field(), err)
		}
	}
	log.Info("local state replaced from remote document")
}

func (s *Session) writeInitial(ctx context.Context, log *logger.Logger, userID string) {
	doc := s.ledger.Document(ctx)
	doc.UserID = userID
	for _, st := range s.stores {
		raw, err := st.Snapshot(ctx)
		if err != nil {
			log.Error("failed to snapshot %s: %v", st.Field(), err)
			continue
		}
		doc.SetCollection(st.Field(), raw)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.mirror.WriteDocument(writeCtx, userID, doc); err != nil {
		log.Warn("failed to create remote document: %v", err)
		return
	}
	log.Info("created remote document from local state")
}

// SignOut drops in-memory state. The local store keeps its copy.
func (s *Session) SignOut(ctx context.Context) {
	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	s.pusher.set(SignedOut, "")
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	s.ledger.Discard()
	for _, st := range s.stores {
		st.Discard()
	}
	s.log(ctx).Info("signed out")
}

// Listen drives the session from events until ctx is done. It returns once
// the subscription has been registered.
func (s *Session) Listen(ctx context.Context, events *auth.Events) {
	ch, unsubscribe := events.Subscribe(8)
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				s.handle(ctx, ev)
			}
		}
	}()
}

func (s *Session) handle(ctx context.Context, ev auth.Event) {
	switch ev.Kind {
	case auth.SignedIn:
		if err := s.SignIn(ctx, ev.Identity); err != nil {
			s.log(ctx).Warn("ignoring sign-in event: %v", err)
		}
	case auth.SignedOut:
		s.SignOut(ctx)
	default:
		s.log(ctx).Warn("unknown auth event %q", ev.Kind)
	}
}
