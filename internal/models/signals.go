// internal/models/signals.go
package models

// Signals are the intent signals extracted from a single message. Empty
// strings mean the signal is absent.
type Signals struct {
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
	Occasion string `json:"occasion,omitempty"`

	// SessionLocation is the remembered location offered as a soft
	// preference. It is never copied into Location.
	SessionLocation string `json:"sessionLocation,omitempty"`

	// Terms are the content tokens of the message used for fuzzy scoring.
	Terms []string `json:"terms,omitempty"`

	// Bundle lists the categories of a composite occasion request.
	Bundle []string `json:"bundle,omitempty"`

	// LocationAssertion is true when the message states where the user is
	// ("I am in Houston"). Location then holds the stated place.
	LocationAssertion bool `json:"locationAssertion,omitempty"`

	// LocationKnown is true when Location is a gazetteer place or was
	// stated by a location assertion. Otherwise Location is a guess read
	// from the words after a cue ("in pink and gold") and is never
	// remembered.
	LocationKnown bool `json:"locationKnown,omitempty"`
}

// HasCategory reports whether a category was detected.
func (s Signals) HasCategory() bool {
	return s.Category != ""
}

// IsPureAssertion reports a location statement with nothing to search for.
func (s Signals) IsPureAssertion() bool {
	return s.LocationAssertion && s.Category == "" && len(s.Bundle) == 0
}

// EffectiveLocation returns the known location, then the session location
// when soft preferences are allowed, then a guessed location.
func (s Signals) EffectiveLocation(useSession bool) string {
	if s.Location != "" && s.LocationKnown {
		return s.Location
	}
	if useSession && s.SessionLocation != "" {
		return s.SessionLocation
	}
	return s.Location
}

// ScopeLocation is the location a reply depends on: the known location,
// else the remembered one. Guessed locations are excluded.
func (s Signals) ScopeLocation() string {
	if s.LocationKnown {
		return s.Location
	}
	return s.SessionLocation
}
