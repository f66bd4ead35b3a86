package api

import (
	"net/http"

	"github.com/vocabuddy/progress/internal/assistant"
	"github.com/vocabuddy/progress/internal/errors"
)

func (s *Server) assistantEnabled(w http.ResponseWriter, r *http.Request) bool {
	if s.Assistant == nil || !s.Assistant.Enabled() {
		handleError(w, r, errors.NewUnavailableError("assistant"))
		return false
	}
	return true
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if !s.assistantEnabled(w, r) {
		return
	}
	var body struct {
		Text string `json:"text"`
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	if body.To == "" {
		body.To = s.Ledger.CurrentLanguage(r.Context())
	}

	out, err := s.Assistant.Translate(r.Context(), body.Text, body.From, body.To)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"translation": out})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.assistantEnabled(w, r) {
		return
	}
	var body struct {
		Language string              `json:"language"`
		History  []assistant.Message `json:"history"`
		Text     string              `json:"text"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	if body.Language == "" {
		body.Language = s.Ledger.CurrentLanguage(r.Context())
	}

	reply, err := s.Assistant.Chat(r.Context(), body.Language, body.History, body.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"reply": reply})
}
