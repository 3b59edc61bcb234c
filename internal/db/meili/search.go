package meili

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/kailas-cloud/papersearch/internal/db"
)

// Search runs one search call. Limit 0 asks for facets only.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("limit and offset must be non-negative")
	}

	// The SDK omits a zero limit, which the server reads as its default of 20.
	facetsOnly := q.Limit == 0
	limit := int64(q.Limit)
	if facetsOnly {
		limit = 1
	}

	req := &meilisearch.SearchRequest{
		Limit:  limit,
		Offset: int64(q.Offset),
		Facets: q.Facets,
	}
	if f := q.Filters.String(); f != "" {
		req.Filter = f
	}

	resp, err := s.client.Index(q.IndexName).SearchWithContext(ctx, q.Text, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpMeiliSearch, Err: err}
	}

	hits := make([]json.RawMessage, 0, len(resp.Hits))
	if !facetsOnly {
		for _, h := range resp.Hits {
			raw, err := json.Marshal(h)
			if err != nil {
				return nil, &db.Error{Op: db.OpMeiliSearch, Err: fmt.Errorf("encode hit: %w", err)}
			}
			hits = append(hits, raw)
		}
	}

	facets, err := decodeFacets(resp.FacetDistribution)
	if err != nil {
		return nil, &db.Error{Op: db.OpMeiliSearch, Err: err}
	}

	return &db.SearchResult{
		Hits:             hits,
		Query:            resp.Query,
		Limit:            q.Limit,
		Offset:           int(resp.Offset),
		Total:            resp.EstimatedTotalHits,
		ProcessingTimeMs: resp.ProcessingTimeMs,
		Facets:           facets,
	}, nil
}

// decodeFacets converts the SDK's loosely typed facet distribution into counts per value.
func decodeFacets(dist any) (map[string]map[string]int64, error) {
	raw, err := json.Marshal(dist)
	if err != nil {
		return nil, fmt.Errorf("encode facet distribution: %w", err)
	}
	var facets map[string]map[string]int64
	if err := json.Unmarshal(raw, &facets); err != nil {
		return nil, fmt.Errorf("decode facet distribution: %w", err)
	}
	return facets, nil
}
