package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"partyplnr/internal/models"
)

// PostgresSource reads vendor rows from a table with one text column per
// catalog field. Rows are read in primary key order so catalog order is
// stable across restarts.
type PostgresSource struct {
	DB    *sql.DB
	Table string
	Limit int
}

func (s PostgresSource) Name() string { return "postgres:" + s.Table }

func (s PostgresSource) query() string {
	parts := strings.Split(s.Table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	q := fmt.Sprintf(`SELECT title, category, offers, location, contact, link,
		score::text, keywords, metro, party_tags, area_tags, vibes
		FROM %s ORDER BY id`, strings.Join(parts, "."))
	if s.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", s.Limit)
	}
	return q
}

func (s PostgresSource) Rows(ctx context.Context) ([]models.RawVendorRow, error) {
	rows, err := s.DB.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	defer rows.Close()

	var out []models.RawVendorRow
	for rows.Next() {
		var cols [12]sql.NullString
		dest := make([]interface{}, len(cols))
		for i := range cols {
			dest[i] = &cols[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan vendor row: %w", err)
		}
		out = append(out, models.RawVendorRow{
			Title:     cols[0].String,
			Category:  cols[1].String,
			Offers:    cols[2].String,
			Location:  cols[3].String,
			Contact:   cols[4].String,
			Link:      cols[5].String,
			Score:     cols[6].String,
			Keywords:  cols[7].String,
			Metro:     cols[8].String,
			PartyTags: cols[9].String,
			AreaTags:  cols[10].String,
			Vibes:     cols[11].String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor rows: %w", err)
	}
	return out, nil
}
