package analysis

import "strings"

// FallbackProfile is used when an exercise name matches no profile.
const FallbackProfile = "pushup"

// aliases are checked in order, so more specific phrases come first. Each
// phrase must start at a word boundary in the exercise name.
var aliases = []struct {
	key     string
	phrases []string
}{
	{"benchPress", []string{"bench press", "benchpress", "chest press"}},
	{"lunge", []string{"lunge", "split squat", "step up"}},
	{"deadlift", []string{"deadlift", "dead lift", "rdl", "romanian", "good morning", "hip hinge"}},
	{"squat", []string{"squat", "wall sit"}},
	{"plank", []string{"plank", "hollow hold", "bear hold"}},
	{"pushup", []string{"push up", "pushup", "press up", "burpee"}},
}

// MatchProfile maps a free-form exercise name, e.g. "Goblet Squat" or
// "Push-ups", to a profile key. When nothing matches it returns
// FallbackProfile and false.
func MatchProfile(name string) (string, bool) {
	n := normalizeName(name)
	if n == "" {
		return FallbackProfile, false
	}

	for _, a := range aliases {
		if strings.EqualFold(strings.TrimSpace(name), a.key) {
			return a.key, true
		}
	}
	for _, a := range aliases {
		for _, p := range a.phrases {
			if strings.Contains(n, " "+p) {
				return a.key, true
			}
		}
	}
	return FallbackProfile, false
}

// normalizeName lowercases, turns punctuation into spaces and prefixes a
// space so every word starts after one.
func normalizeName(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ")
}
