package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vocabuddy/progress/internal/assistant"
)

// MockAssistant is a mock implementation of assistant.Assistant
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAssistant) Translate(ctx context.Context, text, from, to string) (string, error) {
	args := m.Called(ctx, text, from, to)
	return args.String(0), args.Error(1)
}

func (m *MockAssistant) Chat(ctx context.Context, language string, history []assistant.Message, text string) (string, error) {
	args := m.Called(ctx, language, history, text)
	return args.String(0), args.Error(1)
}
