package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/models"
)

// handleListWords filters by languageId and level, or searches when q is set.
func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	languageID := q.Get("languageId")
	level, err := queryLevel(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var words []models.Word
	switch {
	case q.Get("q") != "":
		words = s.Words.SearchWords(ctx, q.Get("q"), languageID)
	case languageID != "" && level != "":
		words = s.Words.GetWordsByLanguageAndLevel(ctx, languageID, level)
	case languageID != "":
		words = s.Words.GetWordsByLanguage(ctx, languageID)
	default:
		words = s.Words.Words(ctx)
	}
	if words == nil {
		words = []models.Word{}
	}
	writeJSON(w, r, http.StatusOK, words)
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var in models.WordInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	word, err := s.Words.AddWord(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, word)
}

func (s *Server) handleLearnedCount(w http.ResponseWriter, r *http.Request) {
	languageID := r.URL.Query().Get("languageId")
	if languageID == "" {
		handleError(w, r, errors.NewBadRequestError("languageId is required"))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{
		"count": s.Words.GetLearnedWordsCount(r.Context(), languageID),
	})
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "wordID")
	word := s.Words.GetWord(r.Context(), id)
	if word == nil {
		handleError(w, r, errors.NewNotFoundError("word", id))
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleUpdateWord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "wordID")
	var update models.WordUpdate
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	word, err := s.Words.UpdateWord(r.Context(), id, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if word == nil {
		handleError(w, r, errors.NewNotFoundError("word", id))
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleDeleteWord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "wordID")
	if !s.Words.DeleteWord(r.Context(), id) {
		handleError(w, r, errors.NewNotFoundError("word", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewWord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "wordID")
	var body struct {
		Correct bool `json:"correct"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	word := s.Words.ReviewWord(r.Context(), id, body.Correct)
	if word == nil {
		handleError(w, r, errors.NewNotFoundError("word", id))
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}
