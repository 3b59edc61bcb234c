package search

import (
	"context"

	"github.com/kailas-cloud/papersearch/internal/domain/search/query"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
	"github.com/kailas-cloud/papersearch/internal/domain/search/result"
)

// Index runs one query against the search index.
type Index interface {
	Search(ctx context.Context, q query.Query) (*result.Page, error)
}

// Cache stores composed response payloads keyed by the canonical request.
type Cache interface {
	Key(req *request.SearchRequest) string
	Lookup(ctx context.Context, key string) ([]byte, bool)
	Store(ctx context.Context, key string, payload []byte)
}
