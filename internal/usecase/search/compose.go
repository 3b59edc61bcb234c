package search

import (
	"encoding/json"

	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
	"github.com/kailas-cloud/papersearch/internal/domain/search/result"
)

// compose merges the main page with the facet tables that came back and serializes the response.
// The main page's own distribution is discarded; the attached map is never null.
func compose(page *result.Page, facets []facetOutcome) ([]byte, error) {
	resp := result.FromPage(page)

	dist := make(facet.Distribution, len(facets))
	for _, o := range facets {
		if o.err != nil || !o.present {
			continue
		}
		counts := o.counts
		if counts == nil {
			counts = map[string]int64{}
		}
		dist[string(o.field)] = counts
	}
	resp.FacetDistribution = dist

	return json.Marshal(resp)
}
