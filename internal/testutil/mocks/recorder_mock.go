package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vocabuddy/progress/internal/models"
)

// MockRecorder is a mock implementation of ledger.Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) UpdateLanguageStat(ctx context.Context, languageID string, update models.LanguageStatUpdate) {
	m.Called(ctx, languageID, update)
}

func (m *MockRecorder) UnlockAchievement(ctx context.Context, achievementID string) {
	m.Called(ctx, achievementID)
}

func (m *MockRecorder) AdvanceAchievement(ctx context.Context, achievementID string, progress int) {
	m.Called(ctx, achievementID, progress)
}

func (m *MockRecorder) LanguageStat(ctx context.Context, languageID string) models.LanguageStat {
	args := m.Called(ctx, languageID)
	return args.Get(0).(models.LanguageStat)
}

func (m *MockRecorder) AchievementProgress(ctx context.Context, achievementID string) int {
	args := m.Called(ctx, achievementID)
	return args.Int(0)
}
