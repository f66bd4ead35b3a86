package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockLocalStore is a mock implementation of repository.LocalStore
type MockLocalStore struct {
	mock.Mock
}

func (m *MockLocalStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockLocalStore) Set(ctx context.Context, name string, value []byte) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

func (m *MockLocalStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockLocalStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
