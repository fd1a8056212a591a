package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"partyplnr/internal/catalog"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func testCatalog() *catalog.Catalog {
	return catalog.New([]models.VendorRecord{
		{Title: "Sky High Balloons", Category: "balloons", Location: "Pearland, TX"},
		{Title: "Sweet Layers", Category: "bakery", Location: "Katy, TX"},
		{Title: "Bayou Beats", Category: "dj", Location: "Houston, TX"},
		{Title: "Hill Country Blooms", Category: "florist", Location: "Dripping Springs, TX"},
	}, lexicon.Default())
}

func newTestExtractor(opts ...Option) *Extractor {
	return New(lexicon.Default(), testCatalog(), opts...)
}

// ==========================
// Category Detection
// ==========================

func TestExtract_CategorySynonyms(t *testing.T) {
	e := newTestExtractor()
	tests := []struct {
		text string
		want string
	}{
		{"Need a balloon arch", "balloons"},
		{"who does custom CAKES?", "bakery"},
		{"looking for a disc jockey", "dj"},
		{"wedding photographer please", "photography"},
		{"bouquets for the tables", "florist"},
		{"a bounce house for the kids", "rentals"},
		{"balloon decor for a shower", "balloons"},
		{"cake and a dj", "bakery"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text, "").Category)
		})
	}
}

func TestExtract_FuzzyCategory(t *testing.T) {
	e := newTestExtractor()

	assert.Equal(t, "balloons", e.Extract("need ballons asap", "").Category)
	assert.Equal(t, "photography", e.Extract("photograper for saturday", "").Category)
	assert.Equal(t, "", e.Extract("something nice", "").Category)
}

func TestExtract_FuzzyThresholdBoundary(t *testing.T) {
	sim := func(score float64) func(a, b string) float64 {
		return func(a, b string) float64 {
			if a == "blorp" && b == "bakery" {
				return score
			}
			return 0
		}
	}

	atThreshold := newTestExtractor(WithSimilarity(sim(0.70)))
	assert.Equal(t, "bakery", atThreshold.Extract("blorp", "").Category)

	below := newTestExtractor(WithSimilarity(sim(0.699)))
	assert.Equal(t, "", below.Extract("blorp", "").Category)

	stricter := newTestExtractor(WithSimilarity(sim(0.75)), WithThreshold(0.8))
	assert.Equal(t, "", stricter.Extract("blorp", "").Category)
}

func TestExtract_FuzzyTieUsesLexiconOrder(t *testing.T) {
	e := newTestExtractor(WithSimilarity(func(a, b string) float64 {
		if a == "zzz" && (b == "florist" || b == "dj") {
			return 0.9
		}
		return 0
	}))
	assert.Equal(t, "dj", e.Extract("zzz", "").Category)
}

// ==========================
// Location Detection
// ==========================

func TestExtract_Location(t *testing.T) {
	e := newTestExtractor()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"cue with known place", "Need a balloon arch in Pearland", "pearland"},
		{"near cue", "dj near Sugar Land", "sugar land"},
		{"gazetteer without cue", "katy bakery", "katy"},
		{"multi word catalog city", "florist dripping springs", "dripping springs"},
		{"longest match wins", "cakes in the woodlands", "the woodlands"},
		{"leftmost place wins", "houston or katy cakes", "houston"},
		{"cue with unknown place", "florist in Austin", "austin"},
		{"known place beats free cue word", "balloons in gold for katy", "katy"},
		{"near me is not a place", "dj near me", ""},
		{"no location", "bakery", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text, "").Location)
		})
	}
}

func TestExtract_SessionLocationIsSoft(t *testing.T) {
	e := newTestExtractor()

	sig := e.Extract("bakery", "houston")
	assert.Equal(t, "", sig.Location)
	assert.Equal(t, "houston", sig.SessionLocation)
	assert.Equal(t, "houston", sig.EffectiveLocation(true))
	assert.Equal(t, "", sig.EffectiveLocation(false))

	sig = e.Extract("bakery in katy", "houston")
	assert.Equal(t, "katy", sig.Location)
	assert.Equal(t, "", sig.SessionLocation)
}

func TestExtract_LocationAssertion(t *testing.T) {
	e := newTestExtractor()
	tests := []struct {
		text     string
		location string
		pure     bool
	}{
		{"I am in Houston", "houston", true},
		{"I'm near Pearland", "pearland", true},
		{"my city is Katy", "katy", true},
		{"hi! we live in the woodlands", "the woodlands", true},
		{"I live in Austin", "austin", true},
		{"I'm in Katy and need a DJ", "katy", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sig := e.Extract(tt.text, "")
			assert.True(t, sig.LocationAssertion)
			assert.Equal(t, tt.location, sig.Location)
			assert.Equal(t, tt.pure, sig.IsPureAssertion())
		})
	}

	sig := e.Extract("I'm in the mood for cake", "")
	assert.False(t, sig.LocationAssertion)
	assert.Equal(t, "bakery", sig.Category)

	sig = e.Extract("I am in love with cupcakes", "katy")
	assert.False(t, sig.LocationAssertion, "unknown place next to a request is not an assertion")
	assert.False(t, sig.LocationKnown)
	assert.Equal(t, "bakery", sig.Category)
	assert.Equal(t, "katy", sig.SessionLocation)

	sig = e.Extract("I live in Austin", "")
	assert.True(t, sig.LocationKnown, "a pure assertion is trusted")
}

func TestExtract_GuessedLocation(t *testing.T) {
	e := newTestExtractor()
	tests := []struct {
		text  string
		guess string
	}{
		{"balloons in pink and gold", "pink"},
		{"cupcakes in bulk", "bulk"},
		{"dj in spanish", "spanish"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sig := e.Extract(tt.text, "katy")
			assert.Equal(t, tt.guess, sig.Location)
			assert.False(t, sig.LocationKnown)
			assert.False(t, sig.LocationAssertion)
			assert.Equal(t, "katy", sig.SessionLocation)
			assert.Equal(t, "katy", sig.EffectiveLocation(true))
			assert.Equal(t, "katy", sig.ScopeLocation())
			assert.Contains(t, sig.Terms, tt.guess)
		})
	}

	sig := e.Extract("florist in Austin", "")
	assert.Equal(t, "austin", sig.EffectiveLocation(true), "a guess is used when nothing else is known")

	sig = e.Extract("bakery in katy", "houston")
	assert.True(t, sig.LocationKnown)
	assert.Equal(t, "katy", sig.ScopeLocation())
}

// ==========================
// Occasion & Bundles
// ==========================

func TestExtract_Occasion(t *testing.T) {
	e := newTestExtractor()

	assert.Equal(t, "birthday", e.Extract("my son is turning 6", "").Occasion)
	assert.Equal(t, "bridal shower", e.Extract("flowers for a bridal brunch", "").Occasion)
	assert.Equal(t, "baby shower", e.Extract("baby shower cake", "").Occasion)
	assert.Equal(t, "", e.Extract("cake", "").Occasion)
}

func TestExtract_Bundle(t *testing.T) {
	e := newTestExtractor()

	sig := e.Extract("everything for a birthday party in Katy", "")
	assert.Equal(t, "birthday", sig.Occasion)
	assert.Equal(t, []string{"balloons", "bakery", "entertainment", "rentals"}, sig.Bundle)
	assert.Equal(t, "katy", sig.Location)

	sig = e.Extract("birthday cake", "")
	assert.Empty(t, sig.Bundle)
}

// ==========================
// Scenarios
// ==========================

func TestExtract_Scenarios(t *testing.T) {
	e := newTestExtractor()

	sig := e.Extract("Need a balloon arch in Pearland", "")
	assert.Equal(t, "balloons", sig.Category)
	assert.Equal(t, "pearland", sig.Location)
	assert.False(t, sig.LocationAssertion)

	sig = e.Extract("hello there", "")
	assert.False(t, sig.HasCategory())
	assert.Equal(t, "", sig.Location)

	sig = e.Extract("bakery", "")
	assert.Equal(t, "bakery", sig.Category)
	assert.Equal(t, "", sig.EffectiveLocation(true))
	assert.Equal(t, []string{"bakery"}, sig.Terms)
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor()
	first := e.Extract("cupcakes near Spring for a graduation", "katy")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract("cupcakes near Spring for a graduation", "katy"))
	}
}

func TestCategory(t *testing.T) {
	e := newTestExtractor()
	assert.Equal(t, "venue", e.Category("Banquet Hall"))
	assert.Equal(t, "", e.Category(""))
}
