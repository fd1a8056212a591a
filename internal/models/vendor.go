// internal/models/vendor.go
package models

import "strings"

// VendorRecord is one catalog entry. Loaders normalize every field so that
// absent source cells become empty strings or empty slices.
type VendorRecord struct {
	Title        string   `json:"title" db:"title"`
	Category     string   `json:"category" db:"category"`
	Keywords     []string `json:"keywords" db:"keywords"`
	Offerings    string   `json:"offerings" db:"offers"`
	Location     string   `json:"location" db:"location"`
	MetroTags    []string `json:"metroTags" db:"metro"`
	OccasionTags []string `json:"occasionTags" db:"party_tags"`
	Contact      string   `json:"contact,omitempty" db:"contact"`
	Link         string   `json:"link,omitempty" db:"link"`
	BaseScore    float64  `json:"baseScore" db:"score"`
}

// City returns the first comma-separated component of Location, lower-cased.
func (v *VendorRecord) City() string {
	city, _, _ := strings.Cut(v.Location, ",")
	return strings.ToLower(strings.TrimSpace(city))
}

// HasOccasion reports whether tag is one of the record's occasion tags.
func (v *VendorRecord) HasOccasion(tag string) bool {
	for _, t := range v.OccasionTags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasMetro reports whether place is one of the record's metro tags.
func (v *VendorRecord) HasMetro(place string) bool {
	for _, t := range v.MetroTags {
		if t == place {
			return true
		}
	}
	return false
}

// RawVendorRow is a catalog row before normalization, as read from any
// tabular source. Multi-valued columns are still delimited strings.
type RawVendorRow struct {
	Title     string
	Category  string
	Offers    string
	Location  string
	Contact   string
	Link      string
	Score     string
	Keywords  string
	Metro     string
	PartyTags string
	AreaTags  string
	Vibes     string
}
