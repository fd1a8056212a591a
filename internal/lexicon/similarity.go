package lexicon

import "github.com/xrash/smetrics"

// Similarity is the normalized edit similarity of a and b in [0,1]:
// (maxLen - levenshtein) / maxLen. Identical strings score 1.
func Similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	d := smetrics.WagnerFischer(a, b, 1, 1, 1)
	if d > maxLen {
		d = maxLen
	}
	return float64(maxLen-d) / float64(maxLen)
}
