package result

import (
	"github.com/kailas-cloud/papersearch/internal/domain"
	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
)

// Page is one index response: hits plus the pagination envelope the index reports.
type Page struct {
	Hits               []domain.Paper
	Query              string
	Limit              int
	Offset             int
	EstimatedTotalHits int64
	ProcessingTimeMs   int64
	FacetDistribution  facet.Distribution
}

// Response is the externally visible search payload.
// Field order and tags are part of the cached byte form.
type Response struct {
	Hits               []domain.Paper     `json:"hits"`
	Query              string             `json:"query"`
	ProcessingTimeMs   int64              `json:"processingTimeMs"`
	Limit              int                `json:"limit"`
	Offset             int                `json:"offset"`
	EstimatedTotalHits int64              `json:"estimatedTotalHits"`
	FacetDistribution  facet.Distribution `json:"facetDistribution"`
}

// FromPage copies the envelope of p, leaving the facet distribution unset.
func FromPage(p *Page) Response {
	hits := p.Hits
	if hits == nil {
		hits = []domain.Paper{}
	}
	return Response{
		Hits:               hits,
		Query:              p.Query,
		ProcessingTimeMs:   p.ProcessingTimeMs,
		Limit:              p.Limit,
		Offset:             p.Offset,
		EstimatedTotalHits: p.EstimatedTotalHits,
	}
}
