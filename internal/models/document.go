package models

import "encoding/json"

// Remote document field paths. They double as the keys of UpdateFields calls.
const (
	FieldProfile           = "profile"
	FieldSelectedLanguages = "profile.selectedLanguages"
	FieldAchievements      = "profile.achievements"
	FieldLanguageStats     = "languageStats"
	FieldCurrentLanguage   = "currentLanguage"
	FieldCurrentLevel      = "currentLevel"
	FieldWords             = "words"
	FieldExercises         = "exercises"
	FieldGames             = "games"
	FieldCalendar          = "calendar"
)

// DocumentSchemaVersion is written into every remote document.
const DocumentSchemaVersion = 1

// Document is the per-user remote snapshot. Domain collections are kept as
// raw JSON so each store owns the decoding of its own slice.
type Document struct {
	SchemaVersion   int              `json:"schemaVersion"`
	UserID          string           `json:"userId"`
	Profile         Profile          `json:"profile"`
	LanguageStats   []LanguageStat   `json:"languageStats"`
	CurrentLanguage string           `json:"currentLanguage"`
	CurrentLevel    ProficiencyLevel `json:"currentLevel"`
	Words           json.RawMessage  `json:"words,omitempty"`
	Exercises       json.RawMessage  `json:"exercises,omitempty"`
	Games           json.RawMessage  `json:"games,omitempty"`
	Calendar        json.RawMessage  `json:"calendar,omitempty"`
}

// Collection returns the raw collection stored under a top-level field.
func (d *Document) Collection(field string) json.RawMessage {
	switch field {
	case FieldWords:
		return d.Words
	case FieldExercises:
		return d.Exercises
	case FieldGames:
		return d.Games
	case FieldCalendar:
		return d.Calendar
	}
	return nil
}

// SetCollection stores raw under a top-level collection field.
func (d *Document) SetCollection(field string, raw json.RawMessage) {
	switch field {
	case FieldWords:
		d.Words = raw
	case FieldExercises:
		d.Exercises = raw
	case FieldGames:
		d.Games = raw
	case FieldCalendar:
		d.Calendar = raw
	}
}
