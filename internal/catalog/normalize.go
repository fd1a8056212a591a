package catalog

import (
	"strconv"
	"strings"

	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
)

// NormalizeOptions control how raw rows become records.
type NormalizeOptions struct {
	DefaultBaseScore float64
	MaxRecords       int
}

// RowIssue records a row that was dropped during normalization.
type RowIssue struct {
	Row int
	Err *apperrors.StandardError
}

// Normalize converts raw rows into records. Rows without a title are
// reported as issues and skipped; every other field degrades to empty.
func Normalize(rows []models.RawVendorRow, lex *lexicon.Lexicon, opts NormalizeOptions) ([]models.VendorRecord, []RowIssue) {
	if opts.DefaultBaseScore == 0 {
		opts.DefaultBaseScore = 1.0
	}

	records := make([]models.VendorRecord, 0, len(rows))
	var issues []RowIssue
	for i, row := range rows {
		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			break
		}
		title := strings.TrimSpace(row.Title)
		if title == "" {
			issues = append(issues, RowIssue{
				Row: i + 1,
				Err: apperrors.NewMalformedCatalogRowError(i+1, "missing title"),
			})
			continue
		}

		rec := models.VendorRecord{
			Title:        title,
			Category:     lex.CanonicalCategory(row.Category),
			Keywords:     lowerSet(splitList(row.Keywords), splitList(row.Vibes)),
			Offerings:    strings.TrimSpace(row.Offers),
			Location:     strings.TrimSpace(row.Location),
			MetroTags:    placeSet(splitList(row.Metro), splitList(row.AreaTags)),
			OccasionTags: occasionSet(lex, splitList(row.PartyTags)),
			Contact:      strings.TrimSpace(row.Contact),
			Link:         strings.TrimSpace(row.Link),
			BaseScore:    parseScore(row.Score, opts.DefaultBaseScore),
		}
		records = append(records, rec)
	}
	return records, issues
}

// splitList splits a multi-valued cell on commas, semicolons or pipes.
func splitList(cell string) []string {
	return strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
}

func lowerSet(lists ...[]string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, v := range list {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func placeSet(lists ...[]string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, v := range list {
			v = lexicon.Normalize(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func occasionSet(lex *lexicon.Lexicon, tags []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, t := range tags {
		tag := lex.CanonicalOccasion(t)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func parseScore(cell string, fallback float64) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return fallback
	}
	score, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return fallback
	}
	return score
}
