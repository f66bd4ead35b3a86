package api

import (
	"database/sql"

	"github.com/vocabuddy/progress/internal/assistant"
	"github.com/vocabuddy/progress/internal/auth"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/session"
	"github.com/vocabuddy/progress/internal/stores"
)

// Server exposes the ledger, the domain stores and the session over HTTP.
// Verifier and Assistant may be nil, in which case their endpoints answer 503.
type Server struct {
	DB        *sql.DB
	Ledger    *ledger.Ledger
	Words     *stores.WordStore
	Exercises *stores.ExerciseStore
	Games     *stores.GameStore
	Calendar  *stores.CalendarStore
	Session   *session.Session
	Events    *auth.Events
	Verifier  *auth.Verifier
	PushLog   repository.PushLog
	Assistant assistant.Assistant
}
