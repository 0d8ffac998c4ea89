package content

import (
	"kodbot/internal/domain"
	"math/rand/v2"
)

const genericTheme = "general_programming"

// Picker returns a uniformly distributed index in [0, n).
type Picker func(n int) int

type ThemeSet map[domain.DayPart][]string

//nolint:gochecknoglobals // Static configuration data.
var DefaultThemes = ThemeSet{
	domain.Morning:   {"motivation", "tip_of_the_day", "morning_routine", "code_quality"},
	domain.Midday:    {"simple_explanation", "concept_introduction", "best_practices", "framework_introduction"},
	domain.Afternoon: {"problem_solving", "debugging", "refactoring", "sharing_experience"},
	domain.Evening:   {"career", "learning_resources", "personal_growth", "future_goals"},
}

// SelectTheme picks a topic for the day-part. A nil picker uses the
// process-wide random source.
func SelectTheme(dayPart domain.DayPart, themes ThemeSet, pick Picker) string {
	topics := themes[dayPart]
	if len(topics) == 0 {
		topics = []string{genericTheme}
	}

	return topics[orDefault(pick)(len(topics))]
}

func orDefault(pick Picker) Picker {
	if pick == nil {
		return rand.IntN
	}
	return pick
}
