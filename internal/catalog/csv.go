package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"partyplnr/internal/models"
)

// headerAliases maps a folded header (lower case, no spaces, underscores or
// slashes) to the raw row field it fills.
var headerAliases = map[string]string{
	"title":        "title",
	"businessname": "title",
	"name":         "title",
	"category":     "category",
	"offers":       "offers",
	"offerings":    "offers",
	"description":  "offers",
	"location":     "location",
	"contactinfo":  "contact",
	"phonenumber":  "contact",
	"contact":      "contact",
	"phone":        "contact",
	"link":         "link",
	"website":      "link",
	"url":          "link",
	"score":        "score",
	"keywords":     "keywords",
	"metro":        "metro",
	"partytags":    "partytags",
	"partytypes":   "partytags",
	"areatags":     "areatags",
	"vibes":        "vibes",
}

func foldHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "/", "", "-", "").Replace(h)
}

// CSVSource reads vendor rows from a CSV file with a header row.
type CSVSource struct {
	Path string
}

func (s CSVSource) Name() string { return "csv:" + s.Path }

func (s CSVSource) Rows(ctx context.Context) ([]models.RawVendorRow, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses CSV data. Header matching is case-insensitive, unknown
// columns are ignored and short rows leave the missing cells empty.
func ReadCSV(r io.Reader) ([]models.RawVendorRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int)
	for i, h := range header {
		field, ok := headerAliases[foldHeader(h)]
		if !ok {
			continue
		}
		if _, dup := columns[field]; !dup {
			columns[field] = i
		}
	}
	if _, ok := columns["title"]; !ok {
		return nil, errors.New("catalog csv has no Title column")
	}

	var rows []models.RawVendorRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", len(rows)+2, err)
		}
		cell := func(field string) string {
			i, ok := columns[field]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		rows = append(rows, models.RawVendorRow{
			Title:     cell("title"),
			Category:  cell("category"),
			Offers:    cell("offers"),
			Location:  cell("location"),
			Contact:   cell("contact"),
			Link:      cell("link"),
			Score:     cell("score"),
			Keywords:  cell("keywords"),
			Metro:     cell("metro"),
			PartyTags: cell("partytags"),
			AreaTags:  cell("areatags"),
			Vibes:     cell("vibes"),
		})
	}
	return rows, nil
}
