// Package ranking scores catalog records against extracted signals.
package ranking

import (
	"sort"
	"strings"

	"partyplnr/internal/catalog"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
)

// Score weights added on top of a record's BaseScore.
const (
	CategoryWeight = 4.0
	LocationWeight = 3.0
	OccasionWeight = 2.0
)

const (
	DefaultTopK           = 3
	DefaultRelaxThreshold = 0.70
)

// Match is a scored record. Index is the record's catalog position.
type Match struct {
	Record *models.VendorRecord
	Index  int
	Score  float64
}

// Options tune a single ranking call.
type Options struct {
	// Relax ranks the whole catalog by fuzzy proximity when no record has
	// the requested category. Otherwise an empty result is returned.
	Relax bool
	// TopK caps the result length; zero means DefaultTopK.
	TopK int
	// UseSessionLocation lets the remembered location earn the location
	// bonus when the message names none.
	UseSessionLocation bool
}

// Engine ranks records of one catalog. It holds no mutable state.
type Engine struct {
	catalog        *catalog.Catalog
	similarity     func(a, b string) float64
	relaxThreshold float64
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRelaxThreshold sets the minimum fuzzy bonus for relaxed candidates.
func WithRelaxThreshold(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.relaxThreshold = t
		}
	}
}

// WithSimilarity replaces the edit-similarity function.
func WithSimilarity(fn func(a, b string) float64) Option {
	return func(e *Engine) {
		if fn != nil {
			e.similarity = fn
		}
	}
}

func New(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:        c,
		similarity:     lexicon.Similarity,
		relaxThreshold: DefaultRelaxThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank returns up to TopK records of the signal's category, best first.
// Equal scores keep catalog order. Only positive scores are returned and
// the result is never nil. Callers ask for a category before ranking; a
// signal without one yields an empty list.
func (e *Engine) Rank(sig models.Signals, opts Options) []Match {
	matches := []Match{}
	if !sig.HasCategory() {
		return matches
	}

	candidates := e.catalog.ByCategory(sig.Category)
	if len(candidates) == 0 {
		if !opts.Relax {
			return matches
		}
		return e.rankRelaxed(sig, opts)
	}

	for _, i := range candidates {
		rec := e.catalog.Record(i)
		score := rec.BaseScore + CategoryWeight +
			e.contextBonus(i, sig, opts) +
			e.fuzzyBonus(rec, sig.Terms)
		if score > 0 {
			matches = append(matches, Match{Record: rec, Index: i, Score: score})
		}
	}
	return truncate(sortMatches(matches), opts.TopK)
}

// RankDiverse picks the best record of each category in order, skipping
// categories with no candidate. It is used for composite requests.
func (e *Engine) RankDiverse(sig models.Signals, categories []string, opts Options) []Match {
	out := []Match{}
	seen := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}

		s := sig
		s.Category = category
		best := e.Rank(s, Options{TopK: 1, UseSessionLocation: opts.UseSessionLocation})
		if len(best) > 0 {
			out = append(out, best[0])
		}
	}
	return out
}

// rankRelaxed scores every record by how close it is to the requested
// category and terms. Records below the relax threshold are dropped.
func (e *Engine) rankRelaxed(sig models.Signals, opts Options) []Match {
	terms := append([]string{sig.Category}, sig.Terms...)
	matches := []Match{}
	for i := 0; i < e.catalog.Len(); i++ {
		rec := e.catalog.Record(i)
		bonus := e.fuzzyBonus(rec, terms)
		if bonus < e.relaxThreshold {
			continue
		}
		score := rec.BaseScore + e.contextBonus(i, sig, opts) + bonus
		if score > 0 {
			matches = append(matches, Match{Record: rec, Index: i, Score: score})
		}
	}
	return truncate(sortMatches(matches), opts.TopK)
}

func (e *Engine) contextBonus(i int, sig models.Signals, opts Options) float64 {
	var bonus float64
	if loc := sig.EffectiveLocation(opts.UseSessionLocation); loc != "" && e.catalog.InPlace(i, loc) {
		bonus += LocationWeight
	}
	if sig.Occasion != "" && e.catalog.Record(i).HasOccasion(sig.Occasion) {
		bonus += OccasionWeight
	}
	return bonus
}

// fuzzyBonus is the best similarity between any term and the record's
// title words, category or keywords.
func (e *Engine) fuzzyBonus(rec *models.VendorRecord, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	targets := make([]string, 0, 8+len(rec.Keywords))
	targets = append(targets, lexicon.Tokenize(rec.Title)...)
	if rec.Category != "" {
		targets = append(targets, rec.Category)
	}
	targets = append(targets, rec.Keywords...)

	best := 0.0
	for _, term := range terms {
		for _, target := range targets {
			if s := e.similarity(term, strings.ToLower(target)); s > best {
				best = s
				if best >= 1 {
					return 1
				}
			}
		}
	}
	return best
}

// sortMatches orders by score, descending. The input is in catalog order
// and the sort is stable, so ties keep catalog order.
func sortMatches(matches []Match) []Match {
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches
}

func truncate(matches []Match, topK int) []Match {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(matches) > topK {
		return matches[:topK]
	}
	return matches
}
