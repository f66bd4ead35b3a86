package models

import "strings"

// ProficiencyLevel is one of the six CEFR levels, ordered A1 < ... < C2.
type ProficiencyLevel string

const (
	LevelA1 ProficiencyLevel = "A1"
	LevelA2 ProficiencyLevel = "A2"
	LevelB1 ProficiencyLevel = "B1"
	LevelB2 ProficiencyLevel = "B2"
	LevelC1 ProficiencyLevel = "C1"
	LevelC2 ProficiencyLevel = "C2"
)

var levels = []ProficiencyLevel{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Levels returns all proficiency levels in ascending order.
func Levels() []ProficiencyLevel {
	return append([]ProficiencyLevel(nil), levels...)
}

// ParseLevel accepts "a1", "A1", " b2 " and so on.
func ParseLevel(s string) (ProficiencyLevel, bool) {
	l := ProficiencyLevel(strings.ToUpper(strings.TrimSpace(s)))
	return l, l.Valid()
}

func (l ProficiencyLevel) Valid() bool {
	return l.Rank() >= 0
}

// Rank is the zero-based position of the level, -1 when unknown.
func (l ProficiencyLevel) Rank() int {
	for i, v := range levels {
		if v == l {
			return i
		}
	}
	return -1
}
