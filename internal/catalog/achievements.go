package catalog

import "github.com/vocabuddy/progress/internal/models"

// Achievement ids referenced by the domain stores.
const (
	FirstWord         = "first-word"
	VocabularyBuilder = "vocabulary-builder"
	WordMaster        = "word-master"
	FirstExercise     = "first-exercise"
	ExerciseLover     = "exercise-lover"
	PerfectScore      = "perfect-score"
	FirstGame         = "first-game"
	GameChampion      = "game-champion"
	DailyGoal         = "daily-goal"
	ConsistentLearner = "consistent-learner"
	Polyglot          = "polyglot"
	LanguageCollector = "language-collector"
)

var achievements = []models.Achievement{
	{ID: FirstWord, Title: "First Word", Description: "Learned your first word", Icon: "BookOpen", MaxProgress: 1},
	{ID: VocabularyBuilder, Title: "Vocabulary Builder", Description: "Learned 10 words", Icon: "Book", MaxProgress: 10},
	{ID: WordMaster, Title: "Word Master", Description: "Learned 50 words", Icon: "BookMarked", MaxProgress: 50},
	{ID: FirstExercise, Title: "First Exercise", Description: "Completed your first exercise", Icon: "FileText", MaxProgress: 1},
	{ID: ExerciseLover, Title: "Exercise Lover", Description: "Completed 10 exercises", Icon: "Files", MaxProgress: 10},
	{ID: PerfectScore, Title: "Perfect Score", Description: "Answered every exercise of a set correctly", Icon: "Star", MaxProgress: 1},
	{ID: FirstGame, Title: "First Game", Description: "Finished your first game", Icon: "Gamepad", MaxProgress: 1},
	{ID: GameChampion, Title: "Game Champion", Description: "Finished 10 games", Icon: "Trophy", MaxProgress: 10},
	{ID: DailyGoal, Title: "Daily Goal", Description: "Reached your daily word goal", Icon: "Target", MaxProgress: 1},
	{ID: ConsistentLearner, Title: "Consistent Learner", Description: "Completed study sessions on 7 days in a week", Icon: "CalendarCheck", MaxProgress: 7},
	{ID: Polyglot, Title: "Polyglot", Description: "Started learning more than one language", Icon: "Languages", MaxProgress: 2},
	{ID: LanguageCollector, Title: "Language Collector", Description: "Started learning 5 languages", Icon: "Globe", MaxProgress: 5},
}

// Achievements returns a fresh, locked copy of the fixed catalog.
func Achievements() []models.Achievement {
	return append([]models.Achievement(nil), achievements...)
}

// IsAchievement reports whether id belongs to the catalog.
func IsAchievement(id string) bool {
	for _, a := range achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}
