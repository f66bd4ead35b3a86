package models

import "time"

type ExerciseType string

const (
	ExerciseWordTranslation ExerciseType = "wordTranslation"
	ExerciseFillInBlank     ExerciseType = "fillInBlank"
	ExerciseMultipleChoice  ExerciseType = "multipleChoice"
	ExerciseSentenceOrder   ExerciseType = "sentenceOrder"
)

var exerciseTypes = []ExerciseType{ExerciseWordTranslation, ExerciseFillInBlank, ExerciseMultipleChoice, ExerciseSentenceOrder}

func ExerciseTypes() []ExerciseType {
	return append([]ExerciseType(nil), exerciseTypes...)
}

func (t ExerciseType) Valid() bool {
	for _, v := range exerciseTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Exercise struct {
	ID               string           `json:"id"`
	Type             ExerciseType     `json:"type"`
	LanguageID       string           `json:"languageId"`
	ProficiencyLevel ProficiencyLevel `json:"proficiencyLevel"`
	Question         string           `json:"question"`
	Options          []string         `json:"options,omitempty"`
	CorrectAnswer    string           `json:"correctAnswer"`
	Explanation      string           `json:"explanation,omitempty"`
	Custom           bool             `json:"custom,omitempty"`
}

// ExerciseCompletion records the latest attempt at one exercise. Language,
// level and type are stored on the record instead of being parsed from the id.
type ExerciseCompletion struct {
	ExerciseID  string           `json:"exerciseId"`
	LanguageID  string           `json:"languageId"`
	Level       ProficiencyLevel `json:"level"`
	Type        ExerciseType     `json:"type"`
	IsCorrect   bool             `json:"isCorrect"`
	CompletedAt time.Time        `json:"completedAt"`
}
