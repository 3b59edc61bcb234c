// Package query turns a normalized request into the index queries needed to answer it.
package query

import (
	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
	"github.com/kailas-cloud/papersearch/internal/domain/search/filter"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
)

// Query is a single call to the index service.
type Query struct {
	Text   string
	Filter filter.Expression
	Limit  int
	Offset int
	Facets []facet.Field
}

// FacetQuery is a zero-hit query computing one disjunctive facet.
type FacetQuery struct {
	Field facet.Field
	Query Query
}

// Plan is the set of queries for one request: the main query is mandatory,
// facet queries are present only for requested fields.
type Plan struct {
	Main   Query
	Facets []FacetQuery
}

// Build plans the main query and one isolated facet query per requested field, in facet.All() order.
func Build(req *request.SearchRequest) Plan {
	compiled := filter.Compile(req)

	plan := Plan{
		Main: Query{
			Text:   req.Text(),
			Filter: compiled.Main(),
			Limit:  req.Limit(),
			Offset: req.Offset(),
		},
	}

	for _, f := range facet.All() {
		if !req.WantsFacet(f) {
			continue
		}
		plan.Facets = append(plan.Facets, FacetQuery{
			Field: f,
			Query: Query{
				Text:   req.Text(),
				Filter: compiled.Isolated(f),
				Limit:  0,
				Facets: []facet.Field{f},
			},
		})
	}

	return plan
}
