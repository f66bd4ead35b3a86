package api

import (
	"net/http"

	"github.com/vocabuddy/progress/internal/auth"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/repository"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Session.Status())
}

// handleSignIn verifies the bearer token and publishes a sign-in event.
// Hydration runs in the background; poll GET /session for its state.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	if s.Verifier == nil {
		handleError(w, r, errors.NewUnavailableError("authentication"))
		return
	}

	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		handleError(w, r, errors.NewUnauthorizedError(err))
		return
	}
	identity, err := s.Verifier.Verify(token)
	if err != nil {
		log.Warn("rejected sign-in: %v", err)
		handleError(w, r, errors.NewUnauthorizedError(err))
		return
	}

	if err := s.Events.Publish(r.Context(), auth.Event{Kind: auth.SignedIn, Identity: identity}); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("sign-in accepted for %s", identity.UserID)
	writeJSON(w, r, http.StatusAccepted, s.Session.Status())
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.Events.Publish(r.Context(), auth.Event{Kind: auth.SignedOut}); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, s.Session.Status())
}

// handlePushLog lists the last push outcome per field for the signed-in user.
func (s *Server) handlePushLog(w http.ResponseWriter, r *http.Request) {
	status := s.Session.Status()
	if status.Identity == nil {
		handleError(w, r, errors.NewUnauthorizedError(nil))
		return
	}
	records := []repository.PushRecord{}
	if s.PushLog != nil {
		list, err := s.PushLog.List(r.Context(), status.Identity.UserID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if list != nil {
			records = list
		}
	}
	writeJSON(w, r, http.StatusOK, records)
}
