package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vocabuddy/progress/internal/models"
)

// MockRemoteMirror is a mock implementation of repository.RemoteMirror
type MockRemoteMirror struct {
	mock.Mock
}

func (m *MockRemoteMirror) ReadDocument(ctx context.Context, userID string) (*models.Document, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockRemoteMirror) WriteDocument(ctx context.Context, userID string, doc models.Document) error {
	args := m.Called(ctx, userID, doc)
	return args.Error(0)
}

func (m *MockRemoteMirror) UpdateFields(ctx context.Context, userID string, fields map[string]any) error {
	args := m.Called(ctx, userID, fields)
	return args.Error(0)
}

func (m *MockRemoteMirror) Close() error {
	args := m.Called()
	return args.Error(0)
}
