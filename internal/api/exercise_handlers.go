package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/models"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	languageID := q.Get("languageId")
	if languageID == "" {
		handleError(w, r, errors.NewBadRequestError("languageId is required"))
		return
	}
	level, err := queryLevel(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if level == "" {
		level = s.Ledger.CurrentLevel(r.Context())
	}
	typ := models.ExerciseType(q.Get("type"))
	if typ != "" && !typ.Valid() {
		handleError(w, r, errors.NewBadRequestError("invalid exercise type: "+string(typ)))
		return
	}
	writeJSON(w, r, http.StatusOK, s.Exercises.GetExercisesByLanguageAndLevel(r.Context(), languageID, level, typ))
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var in models.Exercise
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	ex, err := s.Exercises.AddExercise(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, ex)
}

type exerciseProgress struct {
	LanguageID     string                      `json:"languageId"`
	CompletedCount int                         `json:"completedCount"`
	SuccessRate    float64                     `json:"successRate"`
	Completions    []models.ExerciseCompletion `json:"completions"`
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	languageID := r.URL.Query().Get("languageId")
	if languageID == "" {
		handleError(w, r, errors.NewBadRequestError("languageId is required"))
		return
	}
	completions := s.Exercises.Completions(ctx, languageID)
	if completions == nil {
		completions = []models.ExerciseCompletion{}
	}
	writeJSON(w, r, http.StatusOK, exerciseProgress{
		LanguageID:     languageID,
		CompletedCount: s.Exercises.GetCompletedExercisesCount(ctx, languageID),
		SuccessRate:    s.Exercises.GetSuccessRate(ctx, languageID),
		Completions:    completions,
	})
}

func (s *Server) handleResetExercises(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LanguageID string                  `json:"languageId"`
		Level      models.ProficiencyLevel `json:"level"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	if body.LanguageID == "" || !body.Level.Valid() {
		handleError(w, r, errors.NewBadRequestError("languageId and a valid level are required"))
		return
	}
	removed := s.Exercises.ResetProgress(r.Context(), body.LanguageID, body.Level)
	writeJSON(w, r, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "exerciseID")
	var body struct {
		Correct bool `json:"correct"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	completion := s.Exercises.MarkExerciseCompleted(r.Context(), id, body.Correct)
	if completion == nil {
		handleError(w, r, errors.NewNotFoundError("exercise", id))
		return
	}
	writeJSON(w, r, http.StatusOK, completion)
}

func (s *Server) handleExerciseResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "exerciseID")
	writeJSON(w, r, http.StatusOK, map[string]any{
		"exerciseId": id,
		"completed":  s.Exercises.IsExerciseCompleted(r.Context(), id),
		"correct":    s.Exercises.GetExerciseResult(r.Context(), id),
	})
}
