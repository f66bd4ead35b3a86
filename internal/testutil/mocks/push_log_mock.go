package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vocabuddy/progress/internal/repository"
)

// MockPushLog is a mock implementation of repository.PushLog
type MockPushLog struct {
	mock.Mock
}

func (m *MockPushLog) Record(ctx context.Context, rec repository.PushRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPushLog) List(ctx context.Context, userID string) ([]repository.PushRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PushRecord), args.Error(1)
}
