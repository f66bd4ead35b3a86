package models

import "time"

type GameType string

const (
	GameWordMatching   GameType = "wordMatching"
	GameWordWriting    GameType = "wordWriting"
	GameWordSelection  GameType = "wordSelection"
	GameJumbledLetters GameType = "jumbledLetters"
	GameTimedChallenge GameType = "timedChallenge"
)

var gameTypes = []GameType{GameWordMatching, GameWordWriting, GameWordSelection, GameJumbledLetters, GameTimedChallenge}

func GameTypes() []GameType {
	return append([]GameType(nil), gameTypes...)
}

func (g GameType) Valid() bool {
	for _, t := range gameTypes {
		if t == g {
			return true
		}
	}
	return false
}

// GameResult is append-only.
type GameResult struct {
	ID             string    `json:"id"`
	GameType       GameType  `json:"gameType"`
	LanguageID     string    `json:"languageId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeSpent      int       `json:"timeSpent"` // seconds
	Date           time.Time `json:"date"`
}

// GameResultInput is a finished game. Date is optional and defaults to now,
// so results played offline can be recorded with the time they were played.
type GameResultInput struct {
	GameType       GameType   `json:"gameType"`
	LanguageID     string     `json:"languageId"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	TimeSpent      int        `json:"timeSpent"`
	Date           *time.Time `json:"date,omitempty"`
}

// Ratio is score/totalQuestions, 0 when there were no questions.
func (r GameResult) Ratio() float64 {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions)
}
