// Package assistant talks to an OpenAI-compatible chat completions endpoint
// for translations and language practice chat.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vocabuddy/progress/internal/catalog"
	apperrors "github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/logger"
)

// historyLimit is how many previous chat messages are sent as context.
const historyLimit = 5

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	httpClient *http.Client
	url        string
	key        string
	model      string
}

func New(url, key, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		key:        key,
		model:      model,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.key != ""
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Translate translates text from one language to another. An empty from
// leaves source language detection to the model.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("text", "cannot be empty")
	}
	if to == "" {
		return "", apperrors.NewValidationError("to", "cannot be empty")
	}

	target := catalog.LanguageName(to)
	var prompt string
	if from == "" {
		prompt = fmt.Sprintf("You are a helpful translation assistant. Translate the following text to %s. "+
			"Provide only the translation without any explanations or additional text.", target)
	} else {
		prompt = fmt.Sprintf("You are a helpful translation assistant. Translate the following text from %s to %s. "+
			"Provide only the translation without any explanations or additional text.", catalog.LanguageName(from), target)
	}

	return c.complete(ctx, "translate", []Message{
		{Role: RoleSystem, Content: prompt},
		{Role: RoleUser, Content: text},
	}, 0.3)
}

// Chat answers text in the practice language, with the tail of history as
// context. The reply is always in language.
func (c *Client) Chat(ctx context.Context, language string, history []Message, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("text", "cannot be empty")
	}
	name := catalog.LanguageName(language)
	if name == "" {
		name = catalog.LanguageName(catalog.DefaultLanguage)
	}

	prompt := fmt.Sprintf("You are VocaBuddy AI, a helpful assistant for language learning. "+
		"You help users learn %[1]s. The user may write in any language. "+
		"You must always respond in %[1]s. Keep responses concise, helpful and conversational.", name)

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: prompt})
	for _, m := range history {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, Message{Role: RoleUser, Content: text})

	return c.complete(ctx, "chat", messages, 0.7)
}

func (c *Client) complete(ctx context.Context, op string, messages []Message, temperature float64) (string, error) {
	if !c.Enabled() {
		return "", apperrors.NewUnavailableError("assistant")
	}
	log := logger.FromContext(ctx).WithPrefix("assistant").WithField("op", op)

	body, err := json.Marshal(completionRequest{Model: c.model, Messages: messages, Temperature: temperature})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("X-Title", "VocaBuddy")

	log.Debug("sending %d message(s) to %s", len(messages), c.url)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("assistant request failed: status=%d, body=%s", resp.StatusCode, string(snippet))
		return "", fmt.Errorf("assistant status %d: %s", resp.StatusCode, string(snippet))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode response: %v", err)
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("assistant error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
