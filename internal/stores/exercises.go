package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/snapshot"
)

const ExercisesStoreName = "exercises"

var exercisesSchema = snapshot.Schema{
	Version:    1,
	Migrations: map[int]snapshot.Migration{0: migrateKeyedCompletions},
}

type exerciseState struct {
	CustomExercises []models.Exercise                    `json:"customExercises"`
	Completions     map[string]models.ExerciseCompletion `json:"completions"`
}

// migrateKeyedCompletions upgrades the old layout, where completions were
// two maps keyed by "type-lang-level-n" ids, to completion records that
// carry their language, level and type.
func migrateKeyedCompletions(data json.RawMessage) (json.RawMessage, error) {
	var old struct {
		State *struct {
			CompletedExercises map[string]bool   `json:"completedExercises"`
			ExerciseResults    map[string]bool   `json:"exerciseResults"`
			CustomExercises    []models.Exercise `json:"customExercises"`
		} `json:"state"`
		CompletedExercises map[string]bool   `json:"completedExercises"`
		ExerciseResults    map[string]bool   `json:"exerciseResults"`
		CustomExercises    []models.Exercise `json:"customExercises"`
	}
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, err
	}
	completed, results, custom := old.CompletedExercises, old.ExerciseResults, old.CustomExercises
	if old.State != nil {
		completed, results, custom = old.State.CompletedExercises, old.State.ExerciseResults, old.State.CustomExercises
	}

	st := exerciseState{CustomExercises: custom, Completions: map[string]models.ExerciseCompletion{}}
	for id, done := range completed {
		if !done {
			continue
		}
		c, ok := parseExerciseID(id)
		if !ok {
			continue
		}
		c.IsCorrect = results[id]
		st.Completions[id] = c
	}
	return json.Marshal(st)
}

// parseExerciseID splits ids shaped like "wordTranslation-en-a1-3".
func parseExerciseID(id string) (models.ExerciseCompletion, bool) {
	parts := strings.Split(id, "-")
	if len(parts) < 4 {
		return models.ExerciseCompletion{}, false
	}
	level, ok := models.ParseLevel(parts[2])
	if !ok {
		return models.ExerciseCompletion{}, false
	}
	return models.ExerciseCompletion{
		ExerciseID: id,
		Type:       models.ExerciseType(parts[0]),
		LanguageID: parts[1],
		Level:      level,
	}, true
}

type ExerciseStore struct {
	mu      sync.Mutex
	p       persister
	rec     ledger.Recorder
	opts    options
	builtin []models.Exercise
	loaded  bool
	state   exerciseState
}

// NewExerciseStore serves builtin alongside the user's custom exercises.
func NewExerciseStore(local repository.LocalStore, rec ledger.Recorder, pub ledger.Publisher, builtin []models.Exercise, opts ...Option) *ExerciseStore {
	return &ExerciseStore{
		p:       newPersister(ExercisesStoreName, models.FieldExercises, exercisesSchema, local, pub),
		rec:     rec,
		opts:    newOptions(opts),
		builtin: append([]models.Exercise(nil), builtin...),
	}
}

func emptyExerciseState() exerciseState {
	return exerciseState{CustomExercises: []models.Exercise{}, Completions: map[string]models.ExerciseCompletion{}}
}

func (s *ExerciseStore) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.state = emptyExerciseState()
	var st exerciseState
	if s.p.load(ctx, &st) {
		s.state = fillExerciseState(st)
	}
}

func fillExerciseState(st exerciseState) exerciseState {
	if st.CustomExercises == nil {
		st.CustomExercises = []models.Exercise{}
	}
	if st.Completions == nil {
		st.Completions = map[string]models.ExerciseCompletion{}
	}
	return st
}

func (s *ExerciseStore) commit(ctx context.Context) exerciseState {
	s.p.save(ctx, s.state)
	return s.copyState()
}

func (s *ExerciseStore) copyState() exerciseState {
	out := exerciseState{
		CustomExercises: append([]models.Exercise{}, s.state.CustomExercises...),
		Completions:     make(map[string]models.ExerciseCompletion, len(s.state.Completions)),
	}
	for k, v := range s.state.Completions {
		out.Completions[k] = v
	}
	return out
}

func (s *ExerciseStore) find(id string) (models.Exercise, bool) {
	for _, e := range s.builtin {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range s.state.CustomExercises {
		if e.ID == id {
			return e, true
		}
	}
	return models.Exercise{}, false
}

// exercisesFor must be called with s.mu held. An empty typ matches every type.
func (s *ExerciseStore) exercisesFor(languageID string, level models.ProficiencyLevel, typ models.ExerciseType) []models.Exercise {
	out := []models.Exercise{}
	match := func(e models.Exercise) bool {
		return e.LanguageID == languageID && e.ProficiencyLevel == level && (typ == "" || e.Type == typ)
	}
	for _, e := range s.builtin {
		if match(e) {
			out = append(out, e)
		}
	}
	for _, e := range s.state.CustomExercises {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *ExerciseStore) GetExercisesByLanguageAndLevel(ctx context.Context, languageID string, level models.ProficiencyLevel, typ models.ExerciseType) []models.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.exercisesFor(languageID, level, typ)
}

// AddExercise stores a custom exercise. An empty id gets a generated one.
func (s *ExerciseStore) AddExercise(ctx context.Context, e models.Exercise) (*models.Exercise, error) {
	switch {
	case !e.Type.Valid():
		return nil, errors.NewValidationError("type", fmt.Sprintf("unknown exercise type %q", e.Type))
	case e.LanguageID == "":
		return nil, errors.NewValidationError("languageId", "cannot be empty")
	case !e.ProficiencyLevel.Valid():
		return nil, errors.NewValidationError("proficiencyLevel", fmt.Sprintf("unknown level %q", e.ProficiencyLevel))
	case strings.TrimSpace(e.Question) == "":
		return nil, errors.NewValidationError("question", "cannot be empty")
	case strings.TrimSpace(e.CorrectAnswer) == "":
		return nil, errors.NewValidationError("correctAnswer", "cannot be empty")
	}

	s.mu.Lock()
	s.ensureLoaded(ctx)
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s-%s-%s-%s", e.Type, e.LanguageID, strings.ToLower(string(e.ProficiencyLevel)), s.opts.newID())
	}
	if _, exists := s.find(e.ID); exists {
		s.mu.Unlock()
		return nil, errors.NewValidationError("id", "exercise "+e.ID+" already exists")
	}
	e.Custom = true
	s.state.CustomExercises = append(s.state.CustomExercises, e)
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return &e, nil
}

// MarkExerciseCompleted records the latest attempt at an exercise and
// reports it to the ledger. Unknown exercises return nil.
func (s *ExerciseStore) MarkExerciseCompleted(ctx context.Context, exerciseID string, correct bool) *models.ExerciseCompletion {
	log := s.p.log(ctx)

	s.mu.Lock()
	s.ensureLoaded(ctx)
	ex, ok := s.find(exerciseID)
	if !ok {
		s.mu.Unlock()
		log.Debug("completion of unknown exercise %s ignored", exerciseID)
		return nil
	}

	c := models.ExerciseCompletion{
		ExerciseID:  ex.ID,
		LanguageID:  ex.LanguageID,
		Level:       ex.ProficiencyLevel,
		Type:        ex.Type,
		IsCorrect:   correct,
		CompletedAt: s.opts.now(),
	}
	s.state.Completions[ex.ID] = c

	stat := s.rec.LanguageStat(ctx, ex.LanguageID)
	s.rec.UpdateLanguageStat(ctx, ex.LanguageID, models.LanguageStatUpdate{
		ExercisesCompleted: models.Int(stat.ExercisesCompleted + 1),
		SuccessRate:        models.Float(s.successRate(ex.LanguageID)),
	})
	s.rec.UnlockAchievement(ctx, catalog.FirstExercise)
	s.rec.AdvanceAchievement(ctx, catalog.ExerciseLover, len(s.state.Completions))
	if correct && s.allCorrect(ex.LanguageID, ex.ProficiencyLevel, ex.Type) {
		log.Info("every %s exercise for %s/%s answered correctly", ex.Type, ex.LanguageID, ex.ProficiencyLevel)
		s.rec.UnlockAchievement(ctx, catalog.PerfectScore)
	}

	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return &c
}

// allCorrect reports whether a set of more than one exercise has every
// latest result correct. Must be called with s.mu held.
func (s *ExerciseStore) allCorrect(languageID string, level models.ProficiencyLevel, typ models.ExerciseType) bool {
	set := s.exercisesFor(languageID, level, typ)
	if len(set) <= 1 {
		return false
	}
	for _, e := range set {
		c, ok := s.state.Completions[e.ID]
		if !ok || !c.IsCorrect {
			return false
		}
	}
	return true
}

// successRate is recomputed from every completion record of the language.
// Must be called with s.mu held.
func (s *ExerciseStore) successRate(languageID string) float64 {
	var total, correct int
	for _, c := range s.state.Completions {
		if c.LanguageID != languageID {
			continue
		}
		total++
		if c.IsCorrect {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func (s *ExerciseStore) IsExerciseCompleted(ctx context.Context, exerciseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	_, ok := s.state.Completions[exerciseID]
	return ok
}

// GetExerciseResult returns nil when the exercise was never completed.
func (s *ExerciseStore) GetExerciseResult(ctx context.Context, exerciseID string) *bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	c, ok := s.state.Completions[exerciseID]
	if !ok {
		return nil
	}
	return models.Bool(c.IsCorrect)
}

func (s *ExerciseStore) GetCompletedExercisesCount(ctx context.Context, languageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	n := 0
	for _, c := range s.state.Completions {
		if c.LanguageID == languageID {
			n++
		}
	}
	return n
}

func (s *ExerciseStore) GetSuccessRate(ctx context.Context, languageID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.successRate(languageID)
}

// Completions lists completion records ordered by exercise id.
func (s *ExerciseStore) Completions(ctx context.Context, languageID string) []models.ExerciseCompletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	out := []models.ExerciseCompletion{}
	for _, c := range s.state.Completions {
		if languageID == "" || c.LanguageID == languageID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseID < out[j].ExerciseID })
	return out
}

// ResetProgress forgets completions for one language and level and returns
// how many were removed. Ledger statistics are left alone.
func (s *ExerciseStore) ResetProgress(ctx context.Context, languageID string, level models.ProficiencyLevel) int {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	removed := 0
	for id, c := range s.state.Completions {
		if c.LanguageID == languageID && c.Level == level {
			delete(s.state.Completions, id)
			removed++
		}
	}
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return removed
}

func (s *ExerciseStore) Field() string { return models.FieldExercises }

func (s *ExerciseStore) Snapshot(ctx context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	st := s.copyState()
	s.mu.Unlock()
	return json.Marshal(st)
}

func (s *ExerciseStore) Replace(ctx context.Context, raw json.RawMessage) error {
	st := emptyExerciseState()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &st); err != nil {
			return fmt.Errorf("decode remote exercises: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fillExerciseState(st)
	s.loaded = true
	s.p.save(ctx, s.state)
	return nil
}

func (s *ExerciseStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.ensureLoaded(ctx)
}

func (s *ExerciseStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.state = exerciseState{}
}
