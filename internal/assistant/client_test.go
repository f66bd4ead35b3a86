package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vocabuddy/progress/internal/errors"
)

func completionServer(t *testing.T, reply string, got *completionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranslate(t *testing.T) {
	var got completionRequest
	srv := completionServer(t, "  das Haus \n", &got)
	c := New(srv.URL, "test-key", "test-model")

	out, err := c.Translate(context.Background(), "the house", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "das Haus", out)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "from English to German")
	assert.Equal(t, Message{Role: RoleUser, Content: "the house"}, got.Messages[1])
}

func TestTranslate_DetectsSource(t *testing.T) {
	var got completionRequest
	srv := completionServer(t, "la casa", &got)

	_, err := New(srv.URL, "test-key", "m").Translate(context.Background(), "the house", "", "it")
	require.NoError(t, err)
	assert.Contains(t, got.Messages[0].Content, "to Italian")
	assert.NotContains(t, got.Messages[0].Content, "from")
}

func TestChat_TrimsHistory(t *testing.T) {
	var got completionRequest
	srv := completionServer(t, "Bonjour !", &got)

	history := []Message{
		{Role: RoleUser, Content: "1"},
		{Role: RoleAssistant, Content: "2"},
		{Role: RoleUser, Content: "3"},
		{Role: RoleAssistant, Content: "4"},
		{Role: RoleSystem, Content: "ignored"},
		{Role: RoleUser, Content: "6"},
		{Role: RoleAssistant, Content: "7"},
	}
	out, err := New(srv.URL, "test-key", "m").Chat(context.Background(), "fr", history, "salut")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour !", out)

	require.Len(t, got.Messages, 6)
	assert.Contains(t, got.Messages[0].Content, "always respond in French")
	assert.Equal(t, "3", got.Messages[1].Content)
	assert.Equal(t, "7", got.Messages[4].Content)
	assert.Equal(t, Message{Role: RoleUser, Content: "salut"}, got.Messages[5])
}

func TestComplete_Unavailable(t *testing.T) {
	c := New("http://127.0.0.1:0", "", "m")
	assert.False(t, c.Enabled())

	_, err := c.Translate(context.Background(), "x", "en", "de")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnavailable))
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}},
		{"api error", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"bad model"}}`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(srv.URL, "test-key", "m").Chat(context.Background(), "en", nil, "hi")
			assert.Error(t, err)
		})
	}
}

func TestValidation(t *testing.T) {
	c := New("http://unused", "test-key", "m")

	_, err := c.Translate(context.Background(), "  ", "en", "de")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = c.Translate(context.Background(), "x", "en", "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = c.Chat(context.Background(), "en", nil, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}
