// Package compose renders chat outcomes into reply text.
package compose

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"partyplnr/internal/ranking"
)

// Kind identifies what a reply has to say.
type Kind int

const (
	KindNeedCategory Kind = iota
	KindNeedLocation
	KindLocationAcknowledged
	KindMatches
)

func (k Kind) String() string {
	switch k {
	case KindNeedCategory:
		return "need_category"
	case KindNeedLocation:
		return "need_location"
	case KindLocationAcknowledged:
		return "location_acknowledged"
	case KindMatches:
		return "matches"
	default:
		return "unknown"
	}
}

// Outcome is the result of handling one message.
type Outcome struct {
	Kind         Kind
	Location     string
	Matches      []ranking.Match
	FallbackText string
}

func NeedCategory() Outcome { return Outcome{Kind: KindNeedCategory} }

func NeedLocation() Outcome { return Outcome{Kind: KindNeedLocation} }

func LocationAcknowledged(location string) Outcome {
	return Outcome{Kind: KindLocationAcknowledged, Location: location}
}

func Matches(list []ranking.Match, fallbackText string) Outcome {
	return Outcome{Kind: KindMatches, Matches: list, FallbackText: fallbackText}
}

// IsFollowUp reports whether the reply asks the user for more detail.
func (o Outcome) IsFollowUp() bool {
	return o.Kind != KindMatches
}

// Composer renders outcomes. The zero value is not usable; call New.
type Composer struct {
	picker Picker
}

func New(picker Picker) *Composer {
	if picker == nil {
		picker = NewRandomPicker(nil)
	}
	return &Composer{picker: picker}
}

func (c *Composer) Compose(o Outcome) string {
	switch o.Kind {
	case KindNeedCategory:
		return c.picker.Pick(CategoryPrompts)
	case KindNeedLocation:
		return c.picker.Pick(LocationPrompts)
	case KindLocationAcknowledged:
		return fmt.Sprintf(acknowledgement, displayPlace(o.Location))
	case KindMatches:
		return c.matches(o)
	default:
		return Apology
	}
}

func (c *Composer) matches(o Outcome) string {
	if len(o.Matches) == 0 {
		if text := strings.TrimSpace(o.FallbackText); text != "" {
			return text
		}
		return Apology
	}
	return c.picker.Pick(Greetings) + "\n\n" + Blocks(o.Matches)
}

// Blocks renders matches as field blocks joined by Separator.
func Blocks(list []ranking.Match) string {
	blocks := make([]string, 0, len(list))
	for _, m := range list {
		if b := Block(m); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, Separator)
}

// Block renders one record. Fields empty after trimming are left out.
func Block(m ranking.Match) string {
	if m.Record == nil {
		return ""
	}
	r := m.Record
	fields := []struct{ label, value string }{
		{"", r.Title},
		{"Category", r.Category},
		{"Offers", r.Offerings},
		{"Location", r.Location},
		{"Contact", r.Contact},
		{"Link", r.Link},
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		if f.label == "" {
			lines = append(lines, v)
			continue
		}
		lines = append(lines, f.label+": "+v)
	}
	return strings.Join(lines, "\n")
}

func displayPlace(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return "your area"
	}
	// Casers keep state, so build one per call.
	return cases.Title(language.English).String(loc)
}
