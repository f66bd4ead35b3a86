package ledger

import (
	"context"

	"github.com/vocabuddy/progress/internal/models"
)

// Recorder is the part of the ledger that domain stores report learning
// events into. Reads exist so that callers can compute the cumulative
// values the write operations expect.
type Recorder interface {
	UpdateLanguageStat(ctx context.Context, languageID string, update models.LanguageStatUpdate)
	UnlockAchievement(ctx context.Context, achievementID string)
	AdvanceAchievement(ctx context.Context, achievementID string, progress int)

	LanguageStat(ctx context.Context, languageID string) models.LanguageStat
	AchievementProgress(ctx context.Context, achievementID string) int
}

// Publisher pushes field-path updates to the remote mirror. Publish must
// not block and must not report failures back to the caller.
type Publisher interface {
	Publish(ctx context.Context, fields map[string]any)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, fields map[string]any)

func (f PublisherFunc) Publish(ctx context.Context, fields map[string]any) { f(ctx, fields) }

// NopPublisher drops every update. Used on devices without a mirror and in tests.
var NopPublisher Publisher = PublisherFunc(func(context.Context, map[string]any) {})

var _ Recorder = (*Ledger)(nil)
