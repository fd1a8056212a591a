// Package catalog holds the immutable vendor catalog and the indices built
// over it at load time.
package catalog

import (
	"strings"

	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
)

// Catalog is a read-only set of vendor records indexed by canonical
// category and by place. It is safe for concurrent use.
type Catalog struct {
	records    []models.VendorRecord
	categories []string
	byCategory map[string][]int
	byPlace    map[string][]int
	gazetteer  map[string]struct{}
	maxPlace   int
}

// New indexes records. The slice is owned by the catalog afterwards. Place
// names come from each record's city and metro tags plus the lexicon's fixed
// list of nearby places.
func New(records []models.VendorRecord, lex *lexicon.Lexicon) *Catalog {
	c := &Catalog{
		records:    records,
		byCategory: make(map[string][]int),
		byPlace:    make(map[string][]int),
		gazetteer:  make(map[string]struct{}),
	}

	for _, p := range lex.NearbyPlaces {
		c.addPlace(lexicon.Normalize(p))
	}
	for i := range records {
		if city := lexicon.Normalize(records[i].City()); city != "" {
			c.addPlace(city)
		}
	}

	for i := range records {
		rec := &records[i]
		if _, seen := c.byCategory[rec.Category]; !seen {
			c.categories = append(c.categories, rec.Category)
		}
		c.byCategory[rec.Category] = append(c.byCategory[rec.Category], i)

		for place := range c.placesOf(rec) {
			c.byPlace[place] = append(c.byPlace[place], i)
		}
	}
	return c
}

func (c *Catalog) addPlace(p string) {
	if p == "" {
		return
	}
	c.gazetteer[p] = struct{}{}
	if n := len(strings.Fields(p)); n > c.maxPlace {
		c.maxPlace = n
	}
}

// placesOf collects every gazetteer place mentioned by the record's
// location plus its metro tags.
func (c *Catalog) placesOf(rec *models.VendorRecord) map[string]struct{} {
	out := make(map[string]struct{})
	if city := lexicon.Normalize(rec.City()); city != "" {
		out[city] = struct{}{}
	}
	for _, m := range rec.MetroTags {
		out[m] = struct{}{}
	}
	tokens := lexicon.Tokenize(rec.Location)
	for i := range tokens {
		if place, n := c.MatchPlace(tokens, i); n > 0 {
			out[place] = struct{}{}
		}
	}
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Record returns the record at catalog position i.
func (c *Catalog) Record(i int) *models.VendorRecord { return &c.records[i] }

// Records returns all records in catalog order. Callers must not modify it.
func (c *Catalog) Records() []models.VendorRecord { return c.records }

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string { return c.categories }

// ByCategory returns catalog positions of records in category, ascending.
func (c *Catalog) ByCategory(category string) []int { return c.byCategory[category] }

// ByPlace returns catalog positions of records located in or tagged with
// place, ascending.
func (c *Catalog) ByPlace(place string) []int { return c.byPlace[place] }

// IsPlace reports whether place is in the gazetteer.
func (c *Catalog) IsPlace(place string) bool {
	_, ok := c.gazetteer[place]
	return ok
}

// Gazetteer returns the known place names.
func (c *Catalog) Gazetteer() []string {
	out := make([]string, 0, len(c.gazetteer))
	for p := range c.gazetteer {
		out = append(out, p)
	}
	return out
}

// MatchPlace returns the longest gazetteer name starting at tokens[i] and
// the number of tokens it spans, or ("", 0).
func (c *Catalog) MatchPlace(tokens []string, i int) (string, int) {
	for n := c.maxPlace; n > 0; n-- {
		if i+n > len(tokens) {
			continue
		}
		candidate := strings.Join(tokens[i:i+n], " ")
		if _, ok := c.gazetteer[candidate]; ok {
			return candidate, n
		}
	}
	return "", 0
}

// InPlace reports whether the record at position i is located in place,
// either through the place index or a whole-word match on its location.
func (c *Catalog) InPlace(i int, place string) bool {
	if place == "" {
		return false
	}
	for _, idx := range c.byPlace[place] {
		if idx == i {
			return true
		}
		if idx > i {
			break
		}
	}
	rec := &c.records[i]
	if rec.HasMetro(place) {
		return true
	}
	return lexicon.IndexPhrase(lexicon.Tokenize(rec.Location), strings.Fields(place)) >= 0
}
