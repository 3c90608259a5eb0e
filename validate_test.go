package wordsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	syncErrors "github.com/tapwords/wordsync/errors"
)

func TestValidateWords(t *testing.T) {
	valid := stageWords("")

	tests := []struct {
		name    string
		mutate  func([]string) []string
		wantErr bool
	}{
		{name: "valid set", mutate: func(w []string) []string { return w }},
		{name: "too few", mutate: func(w []string) []string { return w[:WordsPerSet-1] }, wantErr: true},
		{name: "too many", mutate: func(w []string) []string { return append(w, "extra") }, wantErr: true},
		{name: "empty word", mutate: func(w []string) []string { w[3] = ""; return w }, wantErr: true},
		{name: "too short", mutate: func(w []string) []string { w[3] = "ab"; return w }, wantErr: true},
		{name: "too long", mutate: func(w []string) []string { w[3] = "thirteenchars"; return w }, wantErr: true},
		{name: "uppercase", mutate: func(w []string) []string { w[3] = "Tiger"; return w }, wantErr: true},
		{name: "digits", mutate: func(w []string) []string { w[3] = "word2"; return w }, wantErr: true},
		{name: "hyphen", mutate: func(w []string) []string { w[3] = "ice-cream"; return w }, wantErr: true},
		{name: "duplicate", mutate: func(w []string) []string { w[3] = w[4]; return w }, wantErr: true},
		{name: "boundary lengths", mutate: func(w []string) []string {
			w[0] = "abc"
			w[1] = "abcdefghijkl"
			return w
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := tt.mutate(append([]string(nil), valid...))
			err := ValidateWords(words)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, syncErrors.IsCode(err, syncErrors.CodeValidationFailure))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
