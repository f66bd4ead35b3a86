package catalog

import "github.com/vocabuddy/progress/internal/models"

type Language struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Flag       string `json:"flag"`
}

// DefaultLanguage is the language that a fresh profile starts on.
const DefaultLanguage = "en"

const DefaultDailyWordGoal = 10

var languages = []Language{
	{ID: "en", Name: "English", NativeName: "English", Flag: "🇬🇧"},
	{ID: "de", Name: "German", NativeName: "Deutsch", Flag: "🇩🇪"},
	{ID: "fr", Name: "French", NativeName: "Français", Flag: "🇫🇷"},
	{ID: "es", Name: "Spanish", NativeName: "Español", Flag: "🇪🇸"},
	{ID: "it", Name: "Italian", NativeName: "Italiano", Flag: "🇮🇹"},
}

func Languages() []Language {
	return append([]Language(nil), languages...)
}

func IsLanguage(id string) bool {
	for _, l := range languages {
		if l.ID == id {
			return true
		}
	}
	return false
}

// DefaultSelection is the selection of a profile created at first launch.
func DefaultSelection() []string {
	return []string{"en", "fr", "de", "es", "it"}
}

// DefaultProfile builds the profile written on first launch.
func DefaultProfile() models.Profile {
	return models.Profile{
		Name:              "User",
		SelectedLanguages: DefaultSelection(),
		DailyWordGoal:     DefaultDailyWordGoal,
		Achievements:      Achievements(),
	}
}

// DefaultLanguageStats returns one zeroed stat per default language.
func DefaultLanguageStats() []models.LanguageStat {
	sel := DefaultSelection()
	out := make([]models.LanguageStat, 0, len(sel))
	for _, id := range sel {
		out = append(out, models.LanguageStat{LanguageID: id})
	}
	return out
}

// LanguageName returns the English name of a catalog language, or id itself
// for anything outside the catalog.
func LanguageName(id string) string {
	for _, l := range languages {
		if l.ID == id {
			return l.Name
		}
	}
	return id
}
