package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of ledger.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, fields map[string]any) {
	m.Called(ctx, fields)
}
