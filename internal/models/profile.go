package models

// Profile is the user-facing part of the ledger document.
type Profile struct {
	Name              string        `json:"name"`
	Email             string        `json:"email,omitempty"`
	ProfilePicture    string        `json:"profilePicture,omitempty"`
	SelectedLanguages []string      `json:"selectedLanguages"`
	DailyWordGoal     int           `json:"dailyWordGoal"`
	Achievements      []Achievement `json:"achievements"`
}

// ProfileUpdate carries the identity fields a user may change. Nil fields are left untouched.
type ProfileUpdate struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	DailyWordGoal  *int    `json:"dailyWordGoal,omitempty"`
}

// HasLanguage reports whether languageID is part of the selection.
func (p Profile) HasLanguage(languageID string) bool {
	for _, id := range p.SelectedLanguages {
		if id == languageID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate ledger state through slices.
func (p Profile) Clone() Profile {
	out := p
	out.SelectedLanguages = append([]string(nil), p.SelectedLanguages...)
	out.Achievements = append([]Achievement(nil), p.Achievements...)
	return out
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Progress    int    `json:"progress"`
	MaxProgress int    `json:"maxProgress"`
	IsUnlocked  bool   `json:"isUnlocked"`
}

type LanguageStat struct {
	LanguageID         string  `json:"languageId"`
	WordsLearned       int     `json:"wordsLearned"`
	ExercisesCompleted int     `json:"exercisesCompleted"`
	GamesPlayed        int     `json:"gamesPlayed"`
	SuccessRate        float64 `json:"successRate"`
}

// LanguageStatUpdate is a partial stat. Only non-nil fields are merged.
type LanguageStatUpdate struct {
	WordsLearned       *int     `json:"wordsLearned,omitempty"`
	ExercisesCompleted *int     `json:"exercisesCompleted,omitempty"`
	GamesPlayed        *int     `json:"gamesPlayed,omitempty"`
	SuccessRate        *float64 `json:"successRate,omitempty"`
}

// Apply merges u into s field by field. Counters never drop below zero and
// the success rate is kept within [0,1].
func (u LanguageStatUpdate) Apply(s LanguageStat) LanguageStat {
	if u.WordsLearned != nil {
		s.WordsLearned = max(*u.WordsLearned, 0)
	}
	if u.ExercisesCompleted != nil {
		s.ExercisesCompleted = max(*u.ExercisesCompleted, 0)
	}
	if u.GamesPlayed != nil {
		s.GamesPlayed = max(*u.GamesPlayed, 0)
	}
	if u.SuccessRate != nil {
		s.SuccessRate = min(max(*u.SuccessRate, 0), 1)
	}
	return s
}

// Int and Float are small helpers for building partial updates.
func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

func String(v string) *string { return &v }

func Bool(v bool) *bool { return &v }
