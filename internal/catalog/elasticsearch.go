package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"partyplnr/internal/models"
)

// ElasticsearchSource reads vendor documents from an index in _doc order.
type ElasticsearchSource struct {
	Client *elasticsearch.Client
	Index  string
	Size   int
}

func (s ElasticsearchSource) Name() string { return "elasticsearch:" + s.Index }

// flexString accepts a JSON string, number, bool or array of those. Arrays
// are joined with commas so they split like a CSV cell.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = flexString(flatten(raw))
	return nil
}

func flatten(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

type vendorDocument struct {
	Title     flexString `json:"title"`
	Category  flexString `json:"category"`
	Offers    flexString `json:"offers"`
	Location  flexString `json:"location"`
	Contact   flexString `json:"contact"`
	Link      flexString `json:"link"`
	Score     flexString `json:"score"`
	Keywords  flexString `json:"keywords"`
	Metro     flexString `json:"metro"`
	PartyTags flexString `json:"party_tags"`
	AreaTags  flexString `json:"area_tags"`
	Vibes     flexString `json:"vibes"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source vendorDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s ElasticsearchSource) Rows(ctx context.Context) ([]models.RawVendorRow, error) {
	size := s.Size
	if size <= 0 {
		size = 10000
	}
	body, err := json.Marshal(map[string]interface{}{
		"size":  size,
		"sort":  []string{"_doc"},
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	})
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.Index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.Client)
	if err != nil {
		return nil, fmt.Errorf("search vendors: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search vendors: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode vendor hits: %w", err)
	}

	out := make([]models.RawVendorRow, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		d := hit.Source
		out = append(out, models.RawVendorRow{
			Title:     string(d.Title),
			Category:  string(d.Category),
			Offers:    string(d.Offers),
			Location:  string(d.Location),
			Contact:   string(d.Contact),
			Link:      string(d.Link),
			Score:     string(d.Score),
			Keywords:  string(d.Keywords),
			Metro:     string(d.Metro),
			PartyTags: string(d.PartyTags),
			AreaTags:  string(d.AreaTags),
			Vibes:     string(d.Vibes),
		})
	}
	return out, nil
}
