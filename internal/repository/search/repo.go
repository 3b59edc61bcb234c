package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/papersearch/internal/db"
	"github.com/kailas-cloud/papersearch/internal/domain"
	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
	"github.com/kailas-cloud/papersearch/internal/domain/search/query"
	"github.com/kailas-cloud/papersearch/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Index over one named index.
type Repo struct {
	store store
	index string
}

// New creates a search repository bound to index.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// Search runs q against the index and decodes the hits into papers.
func (r *Repo) Search(ctx context.Context, q query.Query) (*result.Page, error) {
	facets := make([]string, len(q.Facets))
	for i, f := range q.Facets {
		facets[i] = string(f)
	}

	sr, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName: r.index,
		Text:      q.Text,
		Filters:   q.Filter,
		Limit:     q.Limit,
		Offset:    q.Offset,
		Facets:    facets,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.index, err)
	}

	return toPage(sr)
}

func toPage(sr *db.SearchResult) (*result.Page, error) {
	hits := make([]domain.Paper, 0, len(sr.Hits))
	for i, raw := range sr.Hits {
		var p domain.Paper
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode hit %d: %w", i, err)
		}
		hits = append(hits, p)
	}

	var dist facet.Distribution
	if sr.Facets != nil {
		dist = make(facet.Distribution, len(sr.Facets))
		for name, counts := range sr.Facets {
			dist[name] = counts
		}
	}

	return &result.Page{
		Hits:               hits,
		Query:              sr.Query,
		Limit:              sr.Limit,
		Offset:             sr.Offset,
		EstimatedTotalHits: sr.Total,
		ProcessingTimeMs:   sr.ProcessingTimeMs,
		FacetDistribution:  dist,
	}, nil
}
