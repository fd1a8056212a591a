// Package lexicon holds the static vocabulary consulted by intent extraction
// and catalog loading: category synonyms, occasion cues, known places and
// stop words. A Lexicon is read-only once built.
package lexicon

import "strings"

// CategoryEntry is one canonical category and the phrases that select it.
type CategoryEntry struct {
	Name     string
	Synonyms []string
}

// OccasionEntry is one occasion tag, the cue phrases that select it and the
// categories a composite request for that occasion expands to.
type OccasionEntry struct {
	Tag    string
	Cues   []string
	Bundle []string
}

// Lexicon groups the static tables. Categories and Occasions are ordered:
// earlier entries win ties during extraction.
type Lexicon struct {
	Categories   []CategoryEntry
	Occasions    []OccasionEntry
	NearbyPlaces []string
	LocationCues []string
	BundleCues   []string
	stopWords    map[string]struct{}
}

// New builds a Lexicon from explicit tables.
func New(categories []CategoryEntry, occasions []OccasionEntry, places, stopWords []string) *Lexicon {
	sw := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		sw[w] = struct{}{}
	}
	return &Lexicon{
		Categories:   categories,
		Occasions:    occasions,
		NearbyPlaces: places,
		LocationCues: defaultLocationCues,
		BundleCues:   defaultBundleCues,
		stopWords:    sw,
	}
}

// Default returns the production lexicon.
func Default() *Lexicon {
	return New(defaultCategories, defaultOccasions, defaultNearbyPlaces, defaultStopWords)
}

// IsStopWord reports whether w carries no intent on its own.
func (l *Lexicon) IsStopWord(w string) bool {
	_, ok := l.stopWords[w]
	return ok
}

// ContentTerms drops stop words and one-letter tokens.
func (l *Lexicon) ContentTerms(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) < 2 || l.IsStopWord(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Occasion returns the entry for tag.
func (l *Lexicon) Occasion(tag string) (OccasionEntry, bool) {
	for _, o := range l.Occasions {
		if o.Tag == tag {
			return o, true
		}
	}
	return OccasionEntry{}, false
}

// CanonicalCategory maps a free-form category cell to its canonical name.
// Exact names win, then whole-phrase synonym matches in table order. Unknown
// values are returned lower-cased so the catalog still indexes them.
func (l *Lexicon) CanonicalCategory(raw string) string {
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return ""
	}
	joined := strings.Join(tokens, " ")
	for _, c := range l.Categories {
		if c.Name == joined {
			return c.Name
		}
	}
	for _, c := range l.Categories {
		for _, syn := range c.Synonyms {
			if IndexPhrase(tokens, Tokenize(syn)) >= 0 {
				return c.Name
			}
		}
	}
	return joined
}

// CanonicalOccasion maps a free-form occasion tag to a lexicon tag when one
// of its cues matches; otherwise the normalized text is returned.
func (l *Lexicon) CanonicalOccasion(raw string) string {
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return ""
	}
	joined := strings.Join(tokens, " ")
	for _, o := range l.Occasions {
		if o.Tag == joined {
			return o.Tag
		}
	}
	for _, o := range l.Occasions {
		for _, cue := range o.Cues {
			if IndexPhrase(tokens, Tokenize(cue)) >= 0 {
				return o.Tag
			}
		}
	}
	return joined
}
