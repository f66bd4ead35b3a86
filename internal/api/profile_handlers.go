package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/models"
)

type profileResponse struct {
	Profile         models.Profile          `json:"profile"`
	CurrentLanguage string                  `json:"currentLanguage"`
	CurrentLevel    models.ProficiencyLevel `json:"currentLevel"`
}

func (s *Server) profileResponse(r *http.Request) profileResponse {
	ctx := r.Context()
	return profileResponse{
		Profile:         s.Ledger.Profile(ctx),
		CurrentLanguage: s.Ledger.CurrentLanguage(ctx),
		CurrentLevel:    s.Ledger.CurrentLevel(ctx),
	}
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, catalog.Languages())
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.profileResponse(r))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Ledger.UpdateProfile(r.Context(), update); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.profileResponse(r))
}

func (s *Server) handleSetCurrentLanguage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LanguageID string `json:"languageId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Ledger.SetCurrentLanguage(r.Context(), body.LanguageID); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.profileResponse(r))
}

func (s *Server) handleSetCurrentLevel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level models.ProficiencyLevel `json:"level"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Ledger.SetCurrentLevel(r.Context(), body.Level); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.profileResponse(r))
}

func (s *Server) handleToggleLanguage(w http.ResponseWriter, r *http.Request) {
	languageID := chi.URLParam(r, "languageID")
	if err := s.Ledger.ToggleLanguageSelection(r.Context(), languageID); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.profileResponse(r))
}

func (s *Server) handleDailyGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	languageID := r.URL.Query().Get("languageId")
	if languageID == "" {
		languageID = s.Ledger.CurrentLanguage(ctx)
	}
	learned := s.Words.GetLearnedWordsCount(ctx, languageID)
	writeJSON(w, r, http.StatusOK, s.Ledger.DailyGoalProgress(ctx, languageID, learned))
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Info("resetting all progress")
	s.Ledger.ResetAllProgress(r.Context())
	writeJSON(w, r, http.StatusOK, s.profileResponse(r))
}

func (s *Server) handleLanguageStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Ledger.LanguageStats(r.Context()))
}

func (s *Server) handleLanguageStat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Ledger.LanguageStat(r.Context(), chi.URLParam(r, "languageID")))
}

func (s *Server) handleUpdateLanguageStat(w http.ResponseWriter, r *http.Request) {
	languageID := chi.URLParam(r, "languageID")
	var update models.LanguageStatUpdate
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	s.Ledger.UpdateLanguageStat(r.Context(), languageID, update)
	writeJSON(w, r, http.StatusOK, s.Ledger.LanguageStat(r.Context(), languageID))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Ledger.Profile(r.Context()).Achievements)
}

func (s *Server) achievementOr404(w http.ResponseWriter, r *http.Request, id string) {
	a := s.Ledger.Achievement(r.Context(), id)
	if a == nil {
		handleError(w, r, errors.NewNotFoundError("achievement", id))
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

func (s *Server) handleAchievement(w http.ResponseWriter, r *http.Request) {
	s.achievementOr404(w, r, chi.URLParam(r, "achievementID"))
}

func (s *Server) handleUnlockAchievement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "achievementID")
	s.Ledger.UnlockAchievement(r.Context(), id)
	s.achievementOr404(w, r, id)
}

func (s *Server) handleAdvanceAchievement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "achievementID")
	var body struct {
		Progress int `json:"progress"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	s.Ledger.AdvanceAchievement(r.Context(), id, body.Progress)
	s.achievementOr404(w, r, id)
}
