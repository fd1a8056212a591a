// Package intent turns a free-text message into structured signals.
package intent

import (
	"strings"

	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
)

// DefaultFuzzyThreshold is the minimum similarity for a fuzzy category hit.
const DefaultFuzzyThreshold = 0.70

// maxFreeLocationWords bounds a location taken after a cue word when it is
// not a known place.
const maxFreeLocationWords = 2

// PlaceMatcher finds gazetteer names in a token stream.
type PlaceMatcher interface {
	MatchPlace(tokens []string, i int) (string, int)
}

// assertionPatterns introduce an explicit statement of where the user is.
var assertionPatterns = [][]string{
	{"i", "am", "located", "in"},
	{"im", "located", "in"},
	{"i", "am", "in"},
	{"i", "am", "near"},
	{"i", "am", "around"},
	{"i", "am", "at"},
	{"im", "in"},
	{"im", "near"},
	{"im", "around"},
	{"im", "at"},
	{"i", "live", "in"},
	{"i", "live", "near"},
	{"i", "live", "around"},
	{"we", "are", "in"},
	{"we", "live", "in"},
	{"were", "in"},
	{"my", "city", "is"},
	{"my", "town", "is"},
	{"my", "location", "is"},
	{"my", "area", "is"},
}

type compiledCategory struct {
	name    string
	phrases [][]string
	targets []string
}

type compiledOccasion struct {
	tag  string
	cues [][]string
}

// Extractor is immutable after New and safe for concurrent use.
type Extractor struct {
	lex        *lexicon.Lexicon
	places     PlaceMatcher
	threshold  float64
	similarity func(a, b string) float64

	categories []compiledCategory
	occasions  []compiledOccasion
	bundleCues [][]string
	cueWords   map[string]struct{}
	vocabulary map[string]struct{}
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithThreshold sets the fuzzy category threshold.
func WithThreshold(t float64) Option {
	return func(e *Extractor) {
		if t > 0 {
			e.threshold = t
		}
	}
}

// WithSimilarity replaces the edit-similarity function.
func WithSimilarity(fn func(a, b string) float64) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.similarity = fn
		}
	}
}

func New(lex *lexicon.Lexicon, places PlaceMatcher, opts ...Option) *Extractor {
	e := &Extractor{
		lex:        lex,
		places:     places,
		threshold:  DefaultFuzzyThreshold,
		similarity: lexicon.Similarity,
		cueWords:   make(map[string]struct{}),
		vocabulary: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, c := range lex.Categories {
		cc := compiledCategory{name: c.Name, targets: []string{c.Name}}
		e.vocabulary[c.Name] = struct{}{}
		for _, syn := range c.Synonyms {
			phrase := lexicon.Tokenize(syn)
			cc.phrases = append(cc.phrases, phrase)
			cc.targets = append(cc.targets, strings.Join(phrase, " "))
			for _, w := range phrase {
				e.vocabulary[w] = struct{}{}
			}
		}
		e.categories = append(e.categories, cc)
	}
	for _, o := range lex.Occasions {
		co := compiledOccasion{tag: o.Tag}
		for _, cue := range o.Cues {
			phrase := lexicon.Tokenize(cue)
			co.cues = append(co.cues, phrase)
			for _, w := range phrase {
				e.vocabulary[w] = struct{}{}
			}
		}
		e.occasions = append(e.occasions, co)
	}
	for _, cue := range lex.BundleCues {
		e.bundleCues = append(e.bundleCues, lexicon.Tokenize(cue))
	}
	for _, w := range lex.LocationCues {
		e.cueWords[w] = struct{}{}
	}
	return e
}

// Extract derives signals from text. sessionLocation is the remembered
// location; it is reported as SessionLocation unless the message itself
// names a known location. Extract has no side effects.
func (e *Extractor) Extract(text, sessionLocation string) models.Signals {
	tokens := lexicon.Tokenize(text)
	var sig models.Signals

	// consumed marks tokens that belong to the location.
	consumed := make([]bool, len(tokens))

	if loc, start, n, known, ok := e.assertedLocation(tokens); ok {
		sig.Location = loc
		sig.LocationAssertion = true
		sig.LocationKnown = known
		markRange(consumed, start, n)
	} else if loc, start, n, ok := e.cuedLocation(tokens, true); ok {
		sig.Location = loc
		sig.LocationKnown = true
		markRange(consumed, start, n)
	} else if loc, start, n, ok := e.gazetteerLocation(tokens); ok {
		sig.Location = loc
		sig.LocationKnown = true
		markRange(consumed, start, n)
	} else if loc, _, _, ok := e.cuedLocation(tokens, false); ok {
		// Guessed words stay in the free tokens so they still count
		// towards category and fuzzy matching.
		sig.Location = loc
	}

	var free []string
	for i, t := range tokens {
		if !consumed[i] {
			free = append(free, t)
		}
	}
	sig.Terms = e.lex.ContentTerms(free)

	sig.Category = e.exactCategory(free)
	if sig.Category == "" {
		sig.Category = e.fuzzyCategory(sig.Terms)
	}

	sig.Occasion = e.occasion(tokens)
	if sig.Occasion != "" && e.hasBundleCue(tokens) {
		if o, ok := e.lex.Occasion(sig.Occasion); ok {
			sig.Bundle = append([]string(nil), o.Bundle...)
		}
	}

	// "I am in love with cupcakes": an assertion of an unknown place is
	// only trusted when the message asks for nothing else.
	if sig.LocationAssertion && !sig.LocationKnown {
		if sig.HasCategory() || len(sig.Bundle) > 0 {
			sig.LocationAssertion = false
		} else {
			sig.LocationKnown = true
		}
	}

	if !sig.LocationKnown {
		sig.SessionLocation = sessionLocation
	}
	return sig
}

// Category returns the canonical category for text, or "".
func (e *Extractor) Category(text string) string {
	tokens := lexicon.Tokenize(text)
	if c := e.exactCategory(tokens); c != "" {
		return c
	}
	return e.fuzzyCategory(e.lex.ContentTerms(tokens))
}

func (e *Extractor) exactCategory(tokens []string) string {
	for _, c := range e.categories {
		for _, phrase := range c.phrases {
			if lexicon.IndexPhrase(tokens, phrase) >= 0 {
				return c.name
			}
		}
	}
	return ""
}

// fuzzyCategory picks the category with the highest similarity between any
// term and any of its names. Earlier categories win ties.
func (e *Extractor) fuzzyCategory(terms []string) string {
	best, bestScore := "", 0.0
	for _, c := range e.categories {
		for _, target := range c.targets {
			for _, term := range terms {
				if len(term) < 3 {
					continue
				}
				if s := e.similarity(term, target); s > bestScore {
					best, bestScore = c.name, s
				}
			}
		}
	}
	if bestScore >= e.threshold {
		return best
	}
	return ""
}

func (e *Extractor) occasion(tokens []string) string {
	for _, o := range e.occasions {
		for _, cue := range o.cues {
			if lexicon.IndexPhrase(tokens, cue) >= 0 {
				return o.tag
			}
		}
	}
	return ""
}

func (e *Extractor) hasBundleCue(tokens []string) bool {
	for _, cue := range e.bundleCues {
		if lexicon.IndexPhrase(tokens, cue) >= 0 {
			return true
		}
	}
	return false
}

func (e *Extractor) assertedLocation(tokens []string) (loc string, start, n int, known, ok bool) {
	for i := range tokens {
		for _, p := range assertionPatterns {
			if !lexicon.HasPrefix(tokens[i:], p) {
				continue
			}
			if loc, start, n, known, ok := e.locationAfter(tokens, i+len(p)); ok {
				return loc, start, n, known, true
			}
		}
	}
	return "", 0, 0, false, false
}

// cuedLocation reads the location after "in", "near" or "around". With
// knownOnly set, only gazetteer places are accepted.
func (e *Extractor) cuedLocation(tokens []string, knownOnly bool) (string, int, int, bool) {
	for i, t := range tokens {
		if _, ok := e.cueWords[t]; !ok {
			continue
		}
		loc, start, n, known, ok := e.locationAfter(tokens, i+1)
		if ok && (known || !knownOnly) {
			return loc, start, n, true
		}
	}
	return "", 0, 0, false
}

// gazetteerLocation returns the leftmost known place, preferring the
// longest name at that position.
func (e *Extractor) gazetteerLocation(tokens []string) (string, int, int, bool) {
	if e.places == nil {
		return "", 0, 0, false
	}
	for i := range tokens {
		if place, n := e.places.MatchPlace(tokens, i); n > 0 {
			return place, i, n, true
		}
	}
	return "", 0, 0, false
}

// locationAfter reads the place that follows a cue at tokens[j]. A known
// place within the next few tokens wins; otherwise up to two plain words
// are taken, stopping at stop words and intent vocabulary.
func (e *Extractor) locationAfter(tokens []string, j int) (loc string, start, n int, known, ok bool) {
	if e.places != nil {
		for k := j; k < len(tokens) && k < j+3; k++ {
			if place, n := e.places.MatchPlace(tokens, k); n > 0 {
				return place, k, n, true, true
			}
		}
	}

	var words []string
	for k := j; k < len(tokens) && len(words) < maxFreeLocationWords; k++ {
		t := tokens[k]
		if e.lex.IsStopWord(t) || len(t) < 2 {
			break
		}
		if _, ok := e.vocabulary[t]; ok {
			break
		}
		if _, ok := e.cueWords[t]; ok {
			break
		}
		words = append(words, t)
	}
	if len(words) == 0 {
		return "", 0, 0, false, false
	}
	return strings.Join(words, " "), j, len(words), false, true
}

func markRange(marks []bool, start, n int) {
	for i := start; i < start+n && i < len(marks); i++ {
		marks[i] = true
	}
}
