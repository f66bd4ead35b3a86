package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/stores"
)

// handleListEvents returns every event, or those on ?date=YYYY-MM-DD.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var events []models.CalendarEvent
	if date := r.URL.Query().Get("date"); date != "" {
		var err error
		if events, err = s.Calendar.GetEventsByDate(ctx, date); err != nil {
			handleError(w, r, err)
			return
		}
	} else {
		events = s.Calendar.Events(ctx)
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}
	writeJSON(w, r, http.StatusOK, events)
}

func (s *Server) handleUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", stores.DefaultUpcomingCount)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.Calendar.GetUpcomingEvents(r.Context(), count))
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var in models.CalendarEventInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	event, err := s.Calendar.AddEvent(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, event)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	event := s.Calendar.GetEvent(r.Context(), id)
	if event == nil {
		handleError(w, r, errors.NewNotFoundError("event", id))
		return
	}
	writeJSON(w, r, http.StatusOK, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	var update models.CalendarEventUpdate
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	event, err := s.Calendar.UpdateEvent(r.Context(), id, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if event == nil {
		handleError(w, r, errors.NewNotFoundError("event", id))
		return
	}
	writeJSON(w, r, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	if !s.Calendar.DeleteEvent(r.Context(), id) {
		handleError(w, r, errors.NewNotFoundError("event", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	body := struct {
		Completed *bool `json:"completed"`
	}{}
	if err := decodeOptionalJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	completed := true
	if body.Completed != nil {
		completed = *body.Completed
	}
	event := s.Calendar.MarkEventCompleted(r.Context(), id, completed)
	if event == nil {
		handleError(w, r, errors.NewNotFoundError("event", id))
		return
	}
	writeJSON(w, r, http.StatusOK, event)
}
