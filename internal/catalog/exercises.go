package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/vocabuddy/progress/internal/models"
)

//go:embed exercises.json
var exercisesJSON []byte

// Exercises decodes the built-in exercise set.
func Exercises() ([]models.Exercise, error) {
	var out []models.Exercise
	if err := json.Unmarshal(exercisesJSON, &out); err != nil {
		return nil, fmt.Errorf("decode exercise catalog: %w", err)
	}
	return out, nil
}
