package db

import (
	"encoding/json"

	"github.com/kailas-cloud/papersearch/internal/domain/search/filter"
)

// SearchQuery is the driver-level input for a search. Limit 0 asks for facets only.
type SearchQuery struct {
	IndexName string
	Text      string
	Filters   filter.Expression
	Limit     int
	Offset    int
	Facets    []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Hits             []json.RawMessage
	Query            string
	Limit            int
	Offset           int
	Total            int64
	ProcessingTimeMs int64
	Facets           map[string]map[string]int64
}
