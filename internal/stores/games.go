package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/snapshot"
)

const GamesStoreName = "games"

var gamesSchema = snapshot.Schema{
	Version:    1,
	Migrations: map[int]snapshot.Migration{0: legacyCollection("results", "date")},
}

// GameStore keeps finished game results. Results are append-only.
type GameStore struct {
	mu      sync.Mutex
	p       persister
	rec     ledger.Recorder
	opts    options
	loaded  bool
	results []models.GameResult
}

func NewGameStore(local repository.LocalStore, rec ledger.Recorder, pub ledger.Publisher, opts ...Option) *GameStore {
	return &GameStore{
		p:    newPersister(GamesStoreName, models.FieldGames, gamesSchema, local, pub),
		rec:  rec,
		opts: newOptions(opts),
	}
}

func (s *GameStore) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.results = nil
	var results []models.GameResult
	if s.p.load(ctx, &results) {
		s.results = results
	}
}

func validateGameResult(in models.GameResultInput) error {
	switch {
	case !in.GameType.Valid():
		return errors.NewValidationError("gameType", fmt.Sprintf("unknown game type %q", in.GameType))
	case in.LanguageID == "":
		return errors.NewValidationError("languageId", "cannot be empty")
	case in.Score < 0:
		return errors.NewValidationError("score", "cannot be negative")
	case in.TotalQuestions < 0:
		return errors.NewValidationError("totalQuestions", "cannot be negative")
	case in.Score > in.TotalQuestions:
		return errors.NewValidationError("score", "cannot exceed totalQuestions")
	case in.TimeSpent < 0:
		return errors.NewValidationError("timeSpent", "cannot be negative")
	case in.Date != nil && in.Date.IsZero():
		return errors.NewValidationError("date", "cannot be the zero time")
	}
	return nil
}

// AddResult appends a finished game, stamped with in.Date when given.
// gamesPlayed goes up by one and game-champion moves one step past its
// current progress.
func (s *GameStore) AddResult(ctx context.Context, in models.GameResultInput) (*models.GameResult, error) {
	if err := validateGameResult(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.ensureLoaded(ctx)
	r := models.GameResult{
		ID:             s.opts.newID(),
		GameType:       in.GameType,
		LanguageID:     in.LanguageID,
		Score:          in.Score,
		TotalQuestions: in.TotalQuestions,
		TimeSpent:      in.TimeSpent,
		Date:           s.opts.now(),
	}
	if in.Date != nil {
		r.Date = in.Date.UTC()
	}
	s.results = append(s.results, r)

	stat := s.rec.LanguageStat(ctx, r.LanguageID)
	s.rec.UpdateLanguageStat(ctx, r.LanguageID, models.LanguageStatUpdate{GamesPlayed: models.Int(stat.GamesPlayed + 1)})
	s.rec.UnlockAchievement(ctx, catalog.FirstGame)
	s.rec.AdvanceAchievement(ctx, catalog.GameChampion, s.rec.AchievementProgress(ctx, catalog.GameChampion)+1)

	s.p.save(ctx, s.results)
	remote := append([]models.GameResult{}, s.results...)
	s.mu.Unlock()

	s.p.log(ctx).Debug("recorded %s result %d/%d for %s", r.GameType, r.Score, r.TotalQuestions, r.LanguageID)
	s.p.push(ctx, remote)
	return &r, nil
}

func (s *GameStore) filter(ctx context.Context, keep func(models.GameResult) bool) []models.GameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	out := []models.GameResult{}
	for _, r := range s.results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *GameStore) Results(ctx context.Context) []models.GameResult {
	return s.filter(ctx, func(models.GameResult) bool { return true })
}

func (s *GameStore) GetResultsByLanguage(ctx context.Context, languageID string) []models.GameResult {
	return s.filter(ctx, func(r models.GameResult) bool { return r.LanguageID == languageID })
}

func (s *GameStore) GetResultsByGame(ctx context.Context, gameType models.GameType) []models.GameResult {
	return s.filter(ctx, func(r models.GameResult) bool { return r.GameType == gameType })
}

func averageRatio(results []models.GameResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Ratio()
	}
	return sum / float64(len(results))
}

// GetAverageScoreByLanguage is the mean of score/totalQuestions, 0 for no results.
func (s *GameStore) GetAverageScoreByLanguage(ctx context.Context, languageID string) float64 {
	return averageRatio(s.GetResultsByLanguage(ctx, languageID))
}

// GetAverageScoreByGame is the mean of score/totalQuestions, 0 for no results.
func (s *GameStore) GetAverageScoreByGame(ctx context.Context, gameType models.GameType) float64 {
	return averageRatio(s.GetResultsByGame(ctx, gameType))
}

// GetTotalGamesPlayed counts results of gameType, or all results when it is empty.
func (s *GameStore) GetTotalGamesPlayed(ctx context.Context, gameType models.GameType) int {
	if gameType == "" {
		return len(s.Results(ctx))
	}
	return len(s.GetResultsByGame(ctx, gameType))
}

func (s *GameStore) Field() string { return models.FieldGames }

func (s *GameStore) Snapshot(ctx context.Context) (json.RawMessage, error) {
	return json.Marshal(s.Results(ctx))
}

func (s *GameStore) Replace(ctx context.Context, raw json.RawMessage) error {
	var results []models.GameResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &results); err != nil {
			return fmt.Errorf("decode remote games: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.loaded = true
	s.p.save(ctx, s.results)
	return nil
}

func (s *GameStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.ensureLoaded(ctx)
}

func (s *GameStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.results = nil
}
