package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

const sampleCSV = `Title,Category,Offers,Location,Contact Info,link,Score,Keywords,Metro,PartyTags,AreaTags,Vibes
Sky High Balloons,Balloon Decor,"Arches, garlands","Pearland, TX",281-555-0101,https://skyhigh.example,4.5,arch;garland,Houston,Birthday|Baby Shower,Clear Lake,playful
Sweet Layers Bakery,Bakery,Custom cakes,"Katy, TX",,https://sweetlayers.example,,cakes,Houston,Birthday,,
,Bakery,Nameless,"Houston, TX",,,,,,,,
Bayou Beats,DJ,Sound and lights,"Houston, TX",713-555-0199,,3,,,Wedding,,
Woodlands Blooms,Florist,Bouquets,"The Woodlands, TX",,,2,,,Bridal,,elegant
`

type stubSource struct {
	rows []models.RawVendorRow
	err  error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Rows(context.Context) ([]models.RawVendorRow, error) {
	return s.rows, s.err
}

func loadSample(t *testing.T) *Catalog {
	t.Helper()
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	c, err := Load(context.Background(), stubSource{rows: rows}, lexicon.Default(), NormalizeOptions{DefaultBaseScore: 1.0}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return c
}

// ==========================
// CSV Parsing
// ==========================

func TestReadCSV_HeadersCaseInsensitive(t *testing.T) {
	data := "\ufefftitle,CATEGORY,Phone Number,LINK,party types\nA,dj,555,http://a,wedding\nB,bakery\n"
	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "A", rows[0].Title)
	assert.Equal(t, "555", rows[0].Contact)
	assert.Equal(t, "http://a", rows[0].Link)
	assert.Equal(t, "wedding", rows[0].PartyTags)
	assert.Equal(t, "", rows[1].Contact, "short rows leave cells empty")
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("Category,Location\ndj,Houston\n"))
	assert.ErrorContains(t, err, "Title")
}

// ==========================
// Normalization
// ==========================

func TestNormalize(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	records, issues := Normalize(rows, lexicon.Default(), NormalizeOptions{DefaultBaseScore: 1.0})
	require.Len(t, records, 4)
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Row)
	assert.True(t, errors.Is(issues[0].Err, apperrors.ErrMalformedRow))

	balloons := records[0]
	assert.Equal(t, "balloons", balloons.Category)
	assert.Equal(t, 4.5, balloons.BaseScore)
	assert.Equal(t, []string{"arch", "garland", "playful"}, balloons.Keywords)
	assert.Equal(t, []string{"houston", "clear lake"}, balloons.MetroTags)
	assert.Equal(t, []string{"birthday", "baby shower"}, balloons.OccasionTags)

	bakery := records[1]
	assert.Equal(t, 1.0, bakery.BaseScore, "missing score uses the default")
	assert.Equal(t, "", bakery.Contact)
	assert.NotNil(t, bakery.Keywords)
	assert.NotNil(t, bakery.OccasionTags)

	assert.Equal(t, []string{"bridal shower"}, records[3].OccasionTags)
}

func TestNormalize_MaxRecords(t *testing.T) {
	rows := []models.RawVendorRow{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	records, _ := Normalize(rows, lexicon.Default(), NormalizeOptions{MaxRecords: 2})
	assert.Len(t, records, 2)
	assert.Equal(t, 1.0, records[0].BaseScore)
}

// ==========================
// Indices
// ==========================

func TestCatalog_Indices(t *testing.T) {
	c := loadSample(t)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"balloons", "bakery", "dj", "florist"}, c.Categories())
	assert.Equal(t, []int{0}, c.ByCategory("balloons"))
	assert.Empty(t, c.ByCategory("venue"))

	assert.Equal(t, []int{0}, c.ByPlace("pearland"))
	assert.Equal(t, []int{0, 1, 2}, c.ByPlace("houston"))
	assert.Equal(t, []int{3}, c.ByPlace("the woodlands"))
	assert.Equal(t, []int{0}, c.ByPlace("clear lake"))
}

func TestCatalog_Gazetteer(t *testing.T) {
	c := loadSample(t)

	assert.True(t, c.IsPlace("pearland"))
	assert.True(t, c.IsPlace("sugar land"), "fixed nearby places are included")
	assert.False(t, c.IsPlace("dallas"))

	tokens := lexicon.Tokenize("cakes in the woodlands please")
	place, n := c.MatchPlace(tokens, 2)
	assert.Equal(t, "the woodlands", place)
	assert.Equal(t, 2, n)

	place, n = c.MatchPlace(tokens, 0)
	assert.Equal(t, "", place)
	assert.Equal(t, 0, n)
}

func TestCatalog_InPlace(t *testing.T) {
	c := loadSample(t)

	assert.True(t, c.InPlace(0, "pearland"))
	assert.True(t, c.InPlace(0, "houston"), "metro tag")
	assert.False(t, c.InPlace(3, "houston"))
	assert.True(t, c.InPlace(2, "tx"), "whole word of location")
	assert.False(t, c.InPlace(2, ""))
}

func TestLoad_SourceFailure(t *testing.T) {
	_, err := Load(context.Background(), stubSource{err: errors.New("disk gone")}, lexicon.Default(), NormalizeOptions{}, logger.NewNoOpLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrCatalogLoadFailed))
}

// ==========================
// Postgres Source
// ==========================

func TestPostgresSource_Rows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cols := []string{"title", "category", "offers", "location", "contact", "link", "score", "keywords", "metro", "party_tags", "area_tags", "vibes"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "public"."vendors" ORDER BY id LIMIT 50`)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("Bayou Beats", "DJ", "Sound", "Houston, TX", nil, nil, "3.5", nil, "houston", "wedding", nil, nil).
			AddRow("Sweet Layers", "Bakery", nil, "Katy, TX", nil, nil, nil, nil, nil, nil, nil, nil))

	src := PostgresSource{DB: db, Table: "public.vendors", Limit: 50}
	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bayou Beats", rows[0].Title)
	assert.Equal(t, "3.5", rows[0].Score)
	assert.Equal(t, "", rows[0].Contact)
	assert.Equal(t, "Katy, TX", rows[1].Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err = PostgresSource{DB: db, Table: "vendors"}.Rows(context.Background())
	assert.ErrorContains(t, err, "relation does not exist")
}

// ==========================
// Elasticsearch Source
// ==========================

func newESClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchSource_Rows(t *testing.T) {
	client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vendors/_search", r.URL.Path)
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"title":"Sky High Balloons","category":"balloons","location":"Pearland, TX","score":4.5,"keywords":["arch","garland"],"party_tags":"birthday"}},
			{"_source":{"title":"Bayou Beats","category":"dj","location":"Houston, TX"}}
		]}}`))
	})

	rows, err := ElasticsearchSource{Client: client, Index: "vendors"}.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sky High Balloons", rows[0].Title)
	assert.Equal(t, "4.5", rows[0].Score)
	assert.Equal(t, "arch,garland", rows[0].Keywords)
	assert.Equal(t, "", rows[1].Score)
}

func TestElasticsearchSource_ErrorStatus(t *testing.T) {
	client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"index_not_found_exception"}`))
	})

	_, err := ElasticsearchSource{Client: client, Index: "missing"}.Rows(context.Background())
	assert.ErrorContains(t, err, "404")
}
