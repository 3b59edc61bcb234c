package papersearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
)

// Facet names accepted in SearchOptions.Facets.
const (
	FacetVenue = "venue"
	FacetYear  = "year"
)

// SearchOptions describes one search. Zero values mean "not supplied".
type SearchOptions struct {
	Query  string
	Venues []string
	Years  []int
	Limit  int // 0 uses the server default of 20
	Page   int // 1-based
	Facets []string
}

// Paper is a bibliographic record.
type Paper struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	Venue   string   `json:"venue"`
	Authors []string `json:"authors"`
	EELink  *string  `json:"ee_link"`
}

// SearchResponse is one page of hits with the requested facet counts.
// Facet counts ignore the facet's own filter so every option shows its alternatives.
type SearchResponse struct {
	Hits               []Paper                     `json:"hits"`
	Query              string                      `json:"query"`
	ProcessingTimeMs   int64                       `json:"processingTimeMs"`
	Limit              int                         `json:"limit"`
	Offset             int                         `json:"offset"`
	EstimatedTotalHits int64                       `json:"estimatedTotalHits"`
	FacetDistribution  map[string]map[string]int64 `json:"facetDistribution"`

	// Cached reports whether the response came from the response cache.
	Cached bool `json:"-"`
}

// Search runs a search through the cache and the index.
func (c *Client) Search(ctx context.Context, opts *SearchOptions) (*SearchResponse, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	req := request.Normalize(opts.params())

	res, err := c.search.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var resp SearchResponse
	if err := json.Unmarshal(res.Payload, &resp); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	resp.Cached = res.Cached
	return &resp, nil
}

// params renders the options as the raw parameters the HTTP API would receive.
func (o *SearchOptions) params() []request.Param {
	var ps []request.Param
	if o.Query != "" {
		ps = append(ps, request.Param{Key: request.KeyQuery, Value: o.Query})
	}
	for _, v := range o.Venues {
		ps = append(ps, request.Param{Key: request.KeyVenue, Value: v})
	}
	for _, y := range o.Years {
		ps = append(ps, request.Param{Key: request.KeyYear, Value: strconv.Itoa(y)})
	}
	if o.Limit > 0 {
		ps = append(ps, request.Param{Key: request.KeyLimit, Value: strconv.Itoa(o.Limit)})
	}
	if o.Page > 0 {
		ps = append(ps, request.Param{Key: request.KeyPage, Value: strconv.Itoa(o.Page)})
	}
	if len(o.Facets) > 0 {
		ps = append(ps, request.Param{Key: request.KeyFacets, Value: strings.Join(o.Facets, ",")})
	}
	return ps
}
