package catalog

import (
	"context"

	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/metrics"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
)

// Source yields raw vendor rows in catalog order.
type Source interface {
	Name() string
	Rows(ctx context.Context) ([]models.RawVendorRow, error)
}

// Load reads src once, normalizes its rows and builds the catalog.
// Malformed rows are logged and skipped; only a source failure is an error.
func Load(ctx context.Context, src Source, lex *lexicon.Lexicon, opts NormalizeOptions, log logger.Logger) (*Catalog, error) {
	log = log.WithFields(map[string]interface{}{
		"component": "catalog",
		"source":    src.Name(),
	})

	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(src.Name(), err)
	}

	records, issues := Normalize(rows, lex, opts)
	for _, issue := range issues {
		log.Warn("catalog row skipped", map[string]interface{}{
			"row":       issue.Row,
			"errorCode": string(issue.Err.Code),
			"details":   issue.Err.Details,
		})
	}
	metrics.CatalogRows.WithLabelValues("loaded").Add(float64(len(records)))
	metrics.CatalogRows.WithLabelValues("skipped").Add(float64(len(issues)))

	c := New(records, lex)
	log.Info("catalog loaded", map[string]interface{}{
		"records":    c.Len(),
		"skipped":    len(issues),
		"categories": len(c.Categories()),
		"places":     len(c.gazetteer),
	})
	return c, nil
}
