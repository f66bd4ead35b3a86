package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/snapshot"
)

const WordsStoreName = "words"

var wordsSchema = snapshot.Schema{
	Version:    1,
	Migrations: map[int]snapshot.Migration{0: legacyCollection("words", "createdAt", "lastReviewedAt")},
}

type WordStore struct {
	mu     sync.Mutex
	p      persister
	rec    ledger.Recorder
	opts   options
	loaded bool
	words  []models.Word
}

func NewWordStore(local repository.LocalStore, rec ledger.Recorder, pub ledger.Publisher, opts ...Option) *WordStore {
	return &WordStore{
		p:    newPersister(WordsStoreName, models.FieldWords, wordsSchema, local, pub),
		rec:  rec,
		opts: newOptions(opts),
	}
}

func (s *WordStore) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.words = nil
	var words []models.Word
	if s.p.load(ctx, &words) {
		s.words = words
	}
}

// commit persists the collection and returns a copy for the mirror push.
// Must be called with s.mu held.
func (s *WordStore) commit(ctx context.Context) []models.Word {
	s.p.save(ctx, s.words)
	return append([]models.Word{}, s.words...)
}

func (s *WordStore) indexOf(id string) int {
	for i, w := range s.words {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func validateWordInput(in models.WordInput) error {
	if strings.TrimSpace(in.Word) == "" {
		return errors.NewValidationError("word", "cannot be empty")
	}
	if strings.TrimSpace(in.Translation) == "" {
		return errors.NewValidationError("translation", "cannot be empty")
	}
	if in.LanguageID == "" {
		return errors.NewValidationError("languageId", "cannot be empty")
	}
	if !in.ProficiencyLevel.Valid() {
		return errors.NewValidationError("proficiencyLevel", fmt.Sprintf("unknown level %q", in.ProficiencyLevel))
	}
	return nil
}

// AddWord stores a new word and records it with the ledger: the language's
// wordsLearned goes up by one, first-word unlocks when the collection was
// empty, and the word-count achievements move to the new total.
func (s *WordStore) AddWord(ctx context.Context, in models.WordInput) (*models.Word, error) {
	if err := validateWordInput(in); err != nil {
		return nil, err
	}
	log := s.p.log(ctx)

	s.mu.Lock()
	s.ensureLoaded(ctx)
	wasEmpty := len(s.words) == 0
	w := models.Word{
		ID:               s.opts.newID(),
		Word:             strings.TrimSpace(in.Word),
		Translation:      strings.TrimSpace(in.Translation),
		LanguageID:       in.LanguageID,
		ProficiencyLevel: in.ProficiencyLevel,
		ExampleSentence:  in.ExampleSentence,
		Context:          in.Context,
		CreatedAt:        s.opts.now(),
		IsLearned:        in.IsLearned,
	}
	s.words = append(s.words, w)
	total := len(s.words)

	stat := s.rec.LanguageStat(ctx, w.LanguageID)
	s.rec.UpdateLanguageStat(ctx, w.LanguageID, models.LanguageStatUpdate{WordsLearned: models.Int(stat.WordsLearned + 1)})
	if wasEmpty {
		s.rec.UnlockAchievement(ctx, catalog.FirstWord)
	}
	s.rec.AdvanceAchievement(ctx, catalog.VocabularyBuilder, total)
	s.rec.AdvanceAchievement(ctx, catalog.WordMaster, total)

	remote := s.commit(ctx)
	s.mu.Unlock()

	log.Debug("added word %s (%s)", w.ID, w.LanguageID)
	s.p.push(ctx, remote)
	return &w, nil
}

// UpdateWord applies update to the word. It returns nil, nil when the word does not exist.
func (s *WordStore) UpdateWord(ctx context.Context, id string, update models.WordUpdate) (*models.Word, error) {
	if update.Word != nil && strings.TrimSpace(*update.Word) == "" {
		return nil, errors.NewValidationError("word", "cannot be empty")
	}
	if update.Translation != nil && strings.TrimSpace(*update.Translation) == "" {
		return nil, errors.NewValidationError("translation", "cannot be empty")
	}
	if update.ProficiencyLevel != nil && !update.ProficiencyLevel.Valid() {
		return nil, errors.NewValidationError("proficiencyLevel", fmt.Sprintf("unknown level %q", *update.ProficiencyLevel))
	}

	s.mu.Lock()
	s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.p.log(ctx).Debug("update of unknown word %s ignored", id)
		return nil, nil
	}
	s.words[i] = update.Apply(s.words[i])
	w := s.words[i]
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return &w, nil
}

// DeleteWord reports whether a word was removed.
func (s *WordStore) DeleteWord(ctx context.Context, id string) bool {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.words = append(s.words[:i:i], s.words[i+1:]...)
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return true
}

// ReviewWord counts one more review and recomputes the word's success rate.
func (s *WordStore) ReviewWord(ctx context.Context, id string, correct bool) *models.Word {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	w := &s.words[i]
	successes := w.SuccessRate * float64(w.ReviewCount)
	if correct {
		successes++
	}
	w.ReviewCount++
	w.SuccessRate = successes / float64(w.ReviewCount)
	now := s.opts.now()
	w.LastReviewedAt = &now
	out := *w
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return &out
}

func (s *WordStore) filter(ctx context.Context, keep func(models.Word) bool) []models.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	out := []models.Word{}
	for _, w := range s.words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func (s *WordStore) Words(ctx context.Context) []models.Word {
	return s.filter(ctx, func(models.Word) bool { return true })
}

func (s *WordStore) GetWord(ctx context.Context, id string) *models.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	if i := s.indexOf(id); i >= 0 {
		w := s.words[i]
		return &w
	}
	return nil
}

func (s *WordStore) GetWordsByLanguage(ctx context.Context, languageID string) []models.Word {
	return s.filter(ctx, func(w models.Word) bool { return w.LanguageID == languageID })
}

func (s *WordStore) GetWordsByLanguageAndLevel(ctx context.Context, languageID string, level models.ProficiencyLevel) []models.Word {
	return s.filter(ctx, func(w models.Word) bool {
		return w.LanguageID == languageID && w.ProficiencyLevel == level
	})
}

// SearchWords matches query case-insensitively against the word and its translation.
func (s *WordStore) SearchWords(ctx context.Context, query, languageID string) []models.Word {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.filter(ctx, func(w models.Word) bool {
		if w.LanguageID != languageID {
			return false
		}
		return strings.Contains(strings.ToLower(w.Word), q) || strings.Contains(strings.ToLower(w.Translation), q)
	})
}

// GetLearnedWordsCount counts words flagged as learned. It is a lifetime
// count, not reset per day.
func (s *WordStore) GetLearnedWordsCount(ctx context.Context, languageID string) int {
	return len(s.filter(ctx, func(w models.Word) bool {
		return w.LanguageID == languageID && w.IsLearned
	}))
}

func (s *WordStore) Field() string { return models.FieldWords }

func (s *WordStore) Snapshot(ctx context.Context) (json.RawMessage, error) {
	return json.Marshal(s.Words(ctx))
}

// Replace overwrites the collection with raw from the remote document and
// persists it locally without pushing it back.
func (s *WordStore) Replace(ctx context.Context, raw json.RawMessage) error {
	var words []models.Word
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &words); err != nil {
			return fmt.Errorf("decode remote words: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = words
	s.loaded = true
	s.p.save(ctx, s.words)
	return nil
}

func (s *WordStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.ensureLoaded(ctx)
}

func (s *WordStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.words = nil
}
