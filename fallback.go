package wordsync

import "sort"

// fallbackBank is the bundled word bank used only when the cache is empty
// and a sync attempt has produced nothing. Each theme carries exactly
// fifteen lowercase words, version 1 implied. It is read-only seed
// content for gameplay: never merged into the cache, never written back
// as if it were synced.
var fallbackBank = map[string][]string{
	"animals": {
		"tiger", "zebra", "horse", "eagle", "shark",
		"whale", "otter", "camel", "rhino", "lemur",
		"bison", "koala", "gecko", "moose", "llama",
	},
	"food": {
		"bread", "apple", "mango", "pasta", "cheese",
		"olive", "honey", "grape", "lemon", "onion",
		"salad", "butter", "garlic", "pepper", "noodle",
	},
	"space": {
		"planet", "comet", "galaxy", "meteor", "rocket",
		"orbit", "lunar", "solar", "cosmos", "nebula",
		"saturn", "gravity", "eclipse", "asteroid", "craters",
	},
	"sports": {
		"soccer", "tennis", "hockey", "boxing", "rowing",
		"skiing", "karate", "rugby", "golf", "cricket",
		"cycling", "archery", "fencing", "bowling", "surfing",
	},
	"nature": {
		"river", "forest", "meadow", "canyon", "valley",
		"desert", "island", "glacier", "prairie", "lagoon",
		"summit", "breeze", "pebble", "willow", "fern",
	},
	"music": {
		"piano", "drums", "flute", "cello", "chord",
		"tempo", "rhythm", "melody", "violin", "guitar",
		"trumpet", "singer", "octave", "ballad", "encore",
	},
}

// FallbackThemes returns the bundled theme names, sorted for UI stability.
func FallbackThemes() []string {
	themes := make([]string, 0, len(fallbackBank))
	for theme := range fallbackBank {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}

// FallbackBank returns a deep copy of the bundled bank, so callers can
// never mutate the seed content.
func FallbackBank() map[string][]string {
	out := make(map[string][]string, len(fallbackBank))
	for theme, words := range fallbackBank {
		out[theme] = append([]string(nil), words...)
	}
	return out
}

// FallbackWords returns the bundled word list for one theme.
func FallbackWords(theme string) ([]string, bool) {
	words, ok := fallbackBank[theme]
	if !ok {
		return nil, false
	}
	return append([]string(nil), words...), true
}
