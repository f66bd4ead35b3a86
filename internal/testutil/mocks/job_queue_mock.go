package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueuePush(userID string, fields map[string]any) error {
	args := m.Called(userID, fields)
	return args.Error(0)
}
