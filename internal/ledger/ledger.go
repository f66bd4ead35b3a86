// Package ledger holds the per-language statistics and the achievement
// catalog, and is the only place that decides when an achievement unlocks.
package ledger

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/snapshot"
)

// StoreName is the local store key the ledger persists under.
const StoreName = "profile"

// State is the persisted ledger snapshot.
type State struct {
	Profile         models.Profile          `json:"profile"`
	LanguageStats   []models.LanguageStat   `json:"languageStats"`
	CurrentLanguage string                  `json:"currentLanguage"`
	CurrentLevel    models.ProficiencyLevel `json:"currentLevel"`
}

// DefaultState is the state of a device that has never stored anything.
func DefaultState() State {
	return State{
		Profile:         catalog.DefaultProfile(),
		LanguageStats:   catalog.DefaultLanguageStats(),
		CurrentLanguage: catalog.DefaultLanguage,
		CurrentLevel:    models.LevelA1,
	}
}

var stateSchema = snapshot.Schema{
	Version: 1,
	Migrations: map[int]snapshot.Migration{
		0: unwrapPersistedState,
	},
}

// unwrapPersistedState accepts blobs written as {"state": {...}, "version": n}
// as well as a bare state object.
func unwrapPersistedState(data json.RawMessage) (json.RawMessage, error) {
	var wrapped struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.State) > 0 {
		return wrapped.State, nil
	}
	return data, nil
}

// DailyGoal is the daily word goal progress shown for one language.
type DailyGoal struct {
	LanguageID string  `json:"languageId"`
	Learned    int     `json:"learned"`
	Goal       int     `json:"goal"`
	Progress   float64 `json:"progress"`
}

type Ledger struct {
	mu     sync.Mutex
	local  repository.LocalStore
	pub    Publisher
	loaded bool
	state  State
}

func New(local repository.LocalStore, pub Publisher) *Ledger {
	if pub == nil {
		pub = NopPublisher
	}
	return &Ledger{local: local, pub: pub}
}

func (l *Ledger) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).WithPrefix("ledger")
}

// ensureLoaded must be called with l.mu held.
func (l *Ledger) ensureLoaded(ctx context.Context) {
	if l.loaded {
		return
	}
	l.loaded = true
	l.state = DefaultState()

	var st State
	found, err := snapshot.Load(ctx, l.local, StoreName, stateSchema, &st)
	if err != nil {
		l.log(ctx).Error("failed to load ledger state, using defaults: %v", err)
		return
	}
	if !found {
		l.log(ctx).Debug("no stored ledger state, using defaults")
		return
	}
	l.state = normalize(st)
}

// normalize repairs a snapshot so that every invariant holds: a non-empty
// selection, a positive goal, the full achievement catalog and a valid level.
func normalize(st State) State {
	if len(st.Profile.SelectedLanguages) == 0 {
		st.Profile.SelectedLanguages = []string{catalog.DefaultLanguage}
	}
	if st.Profile.DailyWordGoal <= 0 {
		st.Profile.DailyWordGoal = catalog.DefaultDailyWordGoal
	}
	if st.Profile.Name == "" {
		st.Profile.Name = catalog.DefaultProfile().Name
	}

	known := make(map[string]models.Achievement, len(st.Profile.Achievements))
	for _, a := range st.Profile.Achievements {
		known[a.ID] = a
	}
	merged := catalog.Achievements()
	for i, a := range merged {
		if stored, ok := known[a.ID]; ok {
			merged[i].Progress = clamp(stored.Progress, 0, a.MaxProgress)
			merged[i].IsUnlocked = stored.IsUnlocked || merged[i].Progress >= a.MaxProgress
		}
	}
	st.Profile.Achievements = merged

	if !st.CurrentLevel.Valid() {
		st.CurrentLevel = models.LevelA1
	}
	if st.CurrentLanguage == "" || !st.Profile.HasLanguage(st.CurrentLanguage) {
		st.CurrentLanguage = st.Profile.SelectedLanguages[0]
	}
	if st.LanguageStats == nil {
		st.LanguageStats = []models.LanguageStat{}
	}
	return st
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mutate applies fn to the state under the lock. fn returns the field paths
// it changed; when it returns none nothing is persisted or pushed.
func (l *Ledger) mutate(ctx context.Context, fn func(st *State) []string) {
	l.mu.Lock()
	l.ensureLoaded(ctx)
	paths := fn(&l.state)
	if len(paths) == 0 {
		l.mu.Unlock()
		return
	}
	l.persist(ctx)
	fields := make(map[string]any, len(paths))
	for _, p := range paths {
		fields[p] = l.fieldValue(p)
	}
	l.mu.Unlock()

	l.pub.Publish(ctx, fields)
}

// persist must be called with l.mu held.
func (l *Ledger) persist(ctx context.Context) {
	if err := snapshot.Save(ctx, l.local, StoreName, stateSchema, l.state); err != nil {
		l.log(ctx).Error("failed to persist ledger state: %v", err)
	}
}

func (l *Ledger) fieldValue(path string) any {
	switch path {
	case models.FieldProfile:
		return l.state.Profile.Clone()
	case models.FieldSelectedLanguages:
		return append([]string(nil), l.state.Profile.SelectedLanguages...)
	case models.FieldAchievements:
		return append([]models.Achievement(nil), l.state.Profile.Achievements...)
	case models.FieldLanguageStats:
		return append([]models.LanguageStat(nil), l.state.LanguageStats...)
	case models.FieldCurrentLanguage:
		return l.state.CurrentLanguage
	case models.FieldCurrentLevel:
		return l.state.CurrentLevel
	}
	return nil
}

func statIndex(st *State, languageID string) int {
	for i, s := range st.LanguageStats {
		if s.LanguageID == languageID {
			return i
		}
	}
	return -1
}

func achievementIndex(st *State, id string) int {
	for i, a := range st.Profile.Achievements {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// ensureStat returns the index of the stat for languageID, creating a zeroed one.
func ensureStat(st *State, languageID string) int {
	if i := statIndex(st, languageID); i >= 0 {
		return i
	}
	st.LanguageStats = append(st.LanguageStats, models.LanguageStat{LanguageID: languageID})
	return len(st.LanguageStats) - 1
}

// UpdateLanguageStat merges update into the stat for languageID. Fields
// left nil keep their value. Unknown languages get a zeroed record first.
func (l *Ledger) UpdateLanguageStat(ctx context.Context, languageID string, update models.LanguageStatUpdate) {
	l.log(ctx).Debug("updating language stat for %s", languageID)
	l.mutate(ctx, func(st *State) []string {
		i := ensureStat(st, languageID)
		st.LanguageStats[i] = update.Apply(st.LanguageStats[i])
		return []string{models.FieldLanguageStats}
	})
}

// UnlockAchievement forces the achievement to its max progress. Unknown ids are ignored.
func (l *Ledger) UnlockAchievement(ctx context.Context, achievementID string) {
	l.mutate(ctx, func(st *State) []string {
		i := achievementIndex(st, achievementID)
		if i < 0 {
			l.log(ctx).Warn("unlock of unknown achievement %q ignored", achievementID)
			return nil
		}
		a := &st.Profile.Achievements[i]
		if a.IsUnlocked && a.Progress == a.MaxProgress {
			return nil
		}
		a.Progress = a.MaxProgress
		a.IsUnlocked = true
		l.log(ctx).Info("achievement unlocked: %s", achievementID)
		return []string{models.FieldAchievements}
	})
}

// AdvanceAchievement sets the achievement's progress to min(max, progress).
// It is a set, so a lower value lowers progress, but an unlocked
// achievement stays unlocked until ResetAllProgress.
func (l *Ledger) AdvanceAchievement(ctx context.Context, achievementID string, progress int) {
	l.mutate(ctx, func(st *State) []string {
		i := achievementIndex(st, achievementID)
		if i < 0 {
			l.log(ctx).Warn("advance of unknown achievement %q ignored", achievementID)
			return nil
		}
		a := &st.Profile.Achievements[i]
		next := clamp(progress, 0, a.MaxProgress)
		unlocked := a.IsUnlocked || next >= a.MaxProgress
		if next == a.Progress && unlocked == a.IsUnlocked {
			return nil
		}
		if unlocked && !a.IsUnlocked {
			l.log(ctx).Info("achievement unlocked: %s", achievementID)
		}
		a.Progress = next
		a.IsUnlocked = unlocked
		return []string{models.FieldAchievements}
	})
}

// ResetAllProgress zeroes achievements and stat counters and moves the
// current level back to A1. The selection and identity fields are kept.
func (l *Ledger) ResetAllProgress(ctx context.Context) {
	l.log(ctx).Info("resetting all progress")
	l.mutate(ctx, func(st *State) []string {
		for i := range st.Profile.Achievements {
			st.Profile.Achievements[i].Progress = 0
			st.Profile.Achievements[i].IsUnlocked = false
		}
		for i := range st.LanguageStats {
			st.LanguageStats[i].WordsLearned = 0
			st.LanguageStats[i].ExercisesCompleted = 0
			st.LanguageStats[i].GamesPlayed = 0
			st.LanguageStats[i].SuccessRate = 0
		}
		st.CurrentLevel = models.LevelA1
		return []string{models.FieldAchievements, models.FieldLanguageStats, models.FieldCurrentLevel}
	})
}

// UpdateProfile applies the non-nil fields of update.
func (l *Ledger) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	if update.DailyWordGoal != nil && *update.DailyWordGoal <= 0 {
		return errors.NewValidationError("dailyWordGoal", "must be a positive number")
	}
	if update.Name != nil && *update.Name == "" {
		return errors.NewValidationError("name", "cannot be empty")
	}
	l.mutate(ctx, func(st *State) []string {
		p := &st.Profile
		if update.Name != nil {
			p.Name = *update.Name
		}
		if update.Email != nil {
			p.Email = *update.Email
		}
		if update.ProfilePicture != nil {
			p.ProfilePicture = *update.ProfilePicture
		}
		if update.DailyWordGoal != nil {
			p.DailyWordGoal = *update.DailyWordGoal
		}
		return []string{models.FieldProfile}
	})
	return nil
}

func (l *Ledger) SetCurrentLanguage(ctx context.Context, languageID string) error {
	if languageID == "" {
		return errors.NewValidationError("languageId", "cannot be empty")
	}
	l.mutate(ctx, func(st *State) []string {
		if st.CurrentLanguage == languageID {
			return nil
		}
		st.CurrentLanguage = languageID
		return []string{models.FieldCurrentLanguage}
	})
	return nil
}

func (l *Ledger) SetCurrentLevel(ctx context.Context, level models.ProficiencyLevel) error {
	if !level.Valid() {
		return errors.NewValidationError("level", "must be one of A1, A2, B1, B2, C1, C2")
	}
	l.mutate(ctx, func(st *State) []string {
		if st.CurrentLevel == level {
			return nil
		}
		st.CurrentLevel = level
		return []string{models.FieldCurrentLevel}
	})
	return nil
}

// ToggleLanguageSelection adds or removes languageID from the selection.
// The last selected language cannot be removed. Removing the current
// language switches to the first remaining one, and adding a language
// creates its stat record.
func (l *Ledger) ToggleLanguageSelection(ctx context.Context, languageID string) error {
	if !catalog.IsLanguage(languageID) {
		return errors.NewValidationError("languageId", "unsupported language "+languageID)
	}
	l.mutate(ctx, func(st *State) []string {
		sel := st.Profile.SelectedLanguages
		if st.Profile.HasLanguage(languageID) {
			if len(sel) == 1 {
				l.log(ctx).Debug("refusing to remove last selected language %s", languageID)
				return nil
			}
			next := make([]string, 0, len(sel)-1)
			for _, id := range sel {
				if id != languageID {
					next = append(next, id)
				}
			}
			st.Profile.SelectedLanguages = next
			paths := []string{models.FieldSelectedLanguages}
			if st.CurrentLanguage == languageID {
				st.CurrentLanguage = next[0]
				paths = append(paths, models.FieldCurrentLanguage)
			}
			return paths
		}

		st.Profile.SelectedLanguages = append(append([]string(nil), sel...), languageID)
		paths := []string{models.FieldSelectedLanguages}
		if statIndex(st, languageID) < 0 {
			ensureStat(st, languageID)
			paths = append(paths, models.FieldLanguageStats)
		}
		if advanceSelectionAchievements(st) {
			paths = append(paths, models.FieldAchievements)
		}
		return paths
	})
	return nil
}

// advanceSelectionAchievements raises the achievements that count selected
// languages. It never lowers them, so deselecting keeps earned progress.
func advanceSelectionAchievements(st *State) bool {
	n := len(st.Profile.SelectedLanguages)
	changed := false
	for _, id := range []string{catalog.Polyglot, catalog.LanguageCollector} {
		i := achievementIndex(st, id)
		if i < 0 {
			continue
		}
		a := &st.Profile.Achievements[i]
		next := clamp(n, 0, a.MaxProgress)
		if next <= a.Progress {
			continue
		}
		a.Progress = next
		a.IsUnlocked = a.IsUnlocked || next >= a.MaxProgress
		changed = true
	}
	return changed
}

// ApplyIdentity copies the signed-in identity onto the profile. Empty
// values leave the stored field alone.
func (l *Ledger) ApplyIdentity(ctx context.Context, name, email, picture string) {
	l.mutate(ctx, func(st *State) []string {
		p := &st.Profile
		before := *p
		if name != "" {
			p.Name = name
		}
		if email != "" {
			p.Email = email
		}
		if picture != "" {
			p.ProfilePicture = picture
		}
		if p.Name == before.Name && p.Email == before.Email && p.ProfilePicture == before.ProfilePicture {
			return nil
		}
		return []string{models.FieldProfile}
	})
}

func (l *Ledger) Profile(ctx context.Context) models.Profile {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded(ctx)
	return l.state.Profile.Clone()
}

func (l *Ledger) LanguageStats(ctx context.Context) []models.LanguageStat {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded(ctx)
	return append([]models.LanguageStat(nil), l.state.LanguageStats...)
}

// LanguageStat returns the stat for languageID, zeroed when none exists yet.
func (l *Ledger) LanguageStat(ctx context.Context, languageID string) models.LanguageStat {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded(ctx)
	if i := statIndex(&l.state, languageID); i >= 0 {
		return l.state.LanguageStats[i]
	}
	return models.LanguageStat{LanguageID: languageID}
}

// Achievement returns nil for ids outside the catalog.
func (l *Ledger) Achievement(ctx context.Context, achievementID string) *models.Achievement {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded(ctx)
	if i := achievementIndex(&l.state, achievementID); i >= 0 {
		a := l.state.Profile.Achievements[i]
		return &a
	}
	return nil
}

func (l *Ledger) AchievementProgress(ctx context.Context, achievementID string) int {
	if a := l.Achievement(ctx, achievementID); a != nil {
		return a.Progress
	}
	return 0
}

func (l *Ledger) CurrentLanguage(ctx context.Context) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded(ctx)
	return l.state.CurrentLanguage
}

func (l *Ledger) CurrentLevel(ctx context.Context) models.ProficiencyLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded(ctx)
	return l.state.CurrentLevel
}

// DailyGoalProgress compares a lifetime learned-word count with the daily
// goal. The count is not reset per day.
func (l *Ledger) DailyGoalProgress(ctx context.Context, languageID string, learned int) DailyGoal {
	goal := l.Profile(ctx).DailyWordGoal
	progress := float64(learned) / float64(goal)
	if progress > 1 {
		progress = 1
	}
	return DailyGoal{LanguageID: languageID, Learned: learned, Goal: goal, Progress: progress}
}

// Document builds the remote snapshot of the ledger's fields.
func (l *Ledger) Document(ctx context.Context) models.Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded(ctx)
	return models.Document{
		SchemaVersion:   models.DocumentSchemaVersion,
		Profile:         l.state.Profile.Clone(),
		LanguageStats:   append([]models.LanguageStat(nil), l.state.LanguageStats...),
		CurrentLanguage: l.state.CurrentLanguage,
		CurrentLevel:    l.state.CurrentLevel,
	}
}

// Replace overwrites the ledger with the ledger fields of doc and persists
// the result locally. A document without a profile or stats falls back to
// the first-launch defaults. Nothing is pushed back to the mirror.
func (l *Ledger) Replace(ctx context.Context, doc models.Document) {
	l.mu.Lock()
	defer l.mu.Unlock()
	profile := doc.Profile.Clone()
	if len(profile.SelectedLanguages) == 0 && len(profile.Achievements) == 0 {
		profile = catalog.DefaultProfile()
	}
	stats := append([]models.LanguageStat(nil), doc.LanguageStats...)
	if doc.LanguageStats == nil {
		stats = catalog.DefaultLanguageStats()
	}
	l.state = normalize(State{
		Profile:         profile,
		LanguageStats:   stats,
		CurrentLanguage: doc.CurrentLanguage,
		CurrentLevel:    doc.CurrentLevel,
	})
	l.loaded = true
	l.persist(ctx)
	l.log(ctx).Info("ledger replaced from remote document")
}

// Load rereads the ledger from the local store.
func (l *Ledger) Load(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	l.ensureLoaded(ctx)
}

// Discard drops the in-memory state. The next access reloads it from the local store.
func (l *Ledger) Discard() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	l.state = State{}
}
