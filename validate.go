package wordsync

import (
	"fmt"
	"regexp"

	syncErrors "github.com/tapwords/wordsync/errors"
)

// WordsPerSet is the number of words a committed stage or challenge carries.
const WordsPerSet = 15

var wordPattern = regexp.MustCompile(`^[a-z]{3,12}$`)

// ValidateWords checks a word list against the committed-item shape:
// exactly fifteen non-empty, lowercase, alphabetic (a-z), 3-12 character,
// pairwise-distinct entries. Validation belongs to the editing surface;
// the cache layer itself accepts any word sequence (see Service.SaveTheme).
// This helper exists so every editing surface enforces the same rule.
func ValidateWords(words []string) error {
	if len(words) != WordsPerSet {
		return syncErrors.NewValidationError(syncErrors.OpValidate,
			fmt.Errorf("expected %d words, got %d", WordsPerSet, len(words)))
	}

	seen := make(map[string]struct{}, len(words))
	for i, word := range words {
		if !wordPattern.MatchString(word) {
			return syncErrors.NewValidationError(syncErrors.OpValidate,
				fmt.Errorf("word %d (%q) must be 3-12 lowercase letters a-z", i, word))
		}
		if _, dup := seen[word]; dup {
			return syncErrors.NewValidationError(syncErrors.OpValidate,
				fmt.Errorf("duplicate word %q", word))
		}
		seen[word] = struct{}{}
	}
	return nil
}
