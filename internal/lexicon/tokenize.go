package lexicon

import (
	"strings"
	"unicode"
)

// Tokenize case-folds text and splits it on word boundaries. Apostrophes
// inside a word are dropped so "I'm" becomes "im".
func Tokenize(text string) []string {
	var (
		tokens []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '\'' || r == '’':
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Normalize returns the token sequence joined by single spaces.
func Normalize(text string) string {
	return strings.Join(Tokenize(text), " ")
}

// IndexPhrase returns the first token index where phrase occurs as a run of
// whole words, or -1.
func IndexPhrase(tokens, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return -1
	}
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for j, p := range phrase {
			if tokens[i+j] != p {
				continue outer
			}
		}
		return i
	}
	return -1
}

// HasPrefix reports whether tokens start with prefix.
func HasPrefix(tokens, prefix []string) bool {
	if len(prefix) > len(tokens) {
		return false
	}
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}
