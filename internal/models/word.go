package models

import "time"

type Word struct {
	ID               string           `json:"id"`
	Word             string           `json:"word"`
	Translation      string           `json:"translation"`
	LanguageID       string           `json:"languageId"`
	ProficiencyLevel ProficiencyLevel `json:"proficiencyLevel"`
	ExampleSentence  string           `json:"exampleSentence,omitempty"`
	Context          string           `json:"context,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	LastReviewedAt   *time.Time       `json:"lastReviewedAt,omitempty"`
	ReviewCount      int              `json:"reviewCount"`
	SuccessRate      float64          `json:"successRate"`
	IsLearned        bool             `json:"isLearned"`
}

type WordInput struct {
	Word             string           `json:"word"`
	Translation      string           `json:"translation"`
	LanguageID       string           `json:"languageId"`
	ProficiencyLevel ProficiencyLevel `json:"proficiencyLevel"`
	ExampleSentence  string           `json:"exampleSentence,omitempty"`
	Context          string           `json:"context,omitempty"`
	IsLearned        bool             `json:"isLearned"`
}

// WordUpdate is a partial edit; nil fields are kept.
type WordUpdate struct {
	Word             *string           `json:"word,omitempty"`
	Translation      *string           `json:"translation,omitempty"`
	ProficiencyLevel *ProficiencyLevel `json:"proficiencyLevel,omitempty"`
	ExampleSentence  *string           `json:"exampleSentence,omitempty"`
	Context          *string           `json:"context,omitempty"`
	IsLearned        *bool             `json:"isLearned,omitempty"`
}

func (u WordUpdate) Apply(w Word) Word {
	if u.Word != nil {
		w.Word = *u.Word
	}
	if u.Translation != nil {
		w.Translation = *u.Translation
	}
	if u.ProficiencyLevel != nil {
		w.ProficiencyLevel = *u.ProficiencyLevel
	}
	if u.ExampleSentence != nil {
		w.ExampleSentence = *u.ExampleSentence
	}
	if u.Context != nil {
		w.Context = *u.Context
	}
	if u.IsLearned != nil {
		w.IsLearned = *u.IsLearned
	}
	return w
}
