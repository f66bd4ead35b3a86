package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 60 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverJSON)
	r.Use(securityHeaders)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(jsonTimeout(requestTimeout))

		r.Get("/languages", s.handleLanguages)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Patch("/", s.handleUpdateProfile)
			r.Put("/current-language", s.handleSetCurrentLanguage)
			r.Put("/current-level", s.handleSetCurrentLevel)
			r.Post("/languages/{languageID}/toggle", s.handleToggleLanguage)
			r.Get("/daily-goal", s.handleDailyGoal)
			r.Post("/reset", s.handleResetProgress)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", s.handleLanguageStats)
			r.Get("/{languageID}", s.handleLanguageStat)
			r.Patch("/{languageID}", s.handleUpdateLanguageStat)
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", s.handleAchievements)
			r.Get("/{achievementID}", s.handleAchievement)
			r.Post("/{achievementID}/unlock", s.handleUnlockAchievement)
			r.Post("/{achievementID}/advance", s.handleAdvanceAchievement)
		})

		r.Route("/words", func(r chi.Router) {
			r.Get("/", s.handleListWords)
			r.Post("/", s.handleAddWord)
			r.Get("/learned-count", s.handleLearnedCount)
			r.Get("/{wordID}", s.handleGetWord)
			r.Patch("/{wordID}", s.handleUpdateWord)
			r.Delete("/{wordID}", s.handleDeleteWord)
			r.Post("/{wordID}/review", s.handleReviewWord)
		})

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleAddExercise)
			r.Get("/progress", s.handleExerciseProgress)
			r.Post("/reset", s.handleResetExercises)
			r.Post("/{exerciseID}/complete", s.handleCompleteExercise)
			r.Get("/{exerciseID}/result", s.handleExerciseResult)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/results", s.handleListGameResults)
			r.Post("/results", s.handleAddGameResult)
			r.Get("/stats", s.handleGameStats)
		})

		r.Route("/calendar/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleAddEvent)
			r.Get("/upcoming", s.handleUpcomingEvents)
			r.Get("/{eventID}", s.handleGetEvent)
			r.Patch("/{eventID}", s.handleUpdateEvent)
			r.Delete("/{eventID}", s.handleDeleteEvent)
			r.Post("/{eventID}/complete", s.handleCompleteEvent)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/", s.handleSignIn)
			r.Delete("/", s.handleSignOut)
			r.Get("/pushes", s.handlePushLog)
		})

		r.Post("/assistant/translate", s.handleTranslate)
		r.Post("/assistant/chat", s.handleChat)
	})

	return r
}
