package search

import (
	"context"
	"sync"

	"github.com/kailas-cloud/papersearch/internal/domain/search/query"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
	"github.com/kailas-cloud/papersearch/internal/domain/search/result"
)

// fakeIndex records every query and answers through searchFn.
type fakeIndex struct {
	mu       sync.Mutex
	calls    []query.Query
	searchFn func(ctx context.Context, q query.Query) (*result.Page, error)
}

func (f *fakeIndex) Search(ctx context.Context, q query.Query) (*result.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	if f.searchFn != nil {
		return f.searchFn(ctx, q)
	}
	return &result.Page{}, nil
}

func (f *fakeIndex) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeIndex) snapshot() []query.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]query.Query, len(f.calls))
	copy(out, f.calls)
	return out
}

// memCache is a synchronous in-memory Cache keyed by the canonical request.
type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	stores int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Key(req *request.SearchRequest) string {
	return string(req.Canonical())
}

func (c *memCache) Lookup(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *memCache) Store(_ context.Context, key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores++
	c.data[key] = payload
}

func normalize(pairs ...string) request.SearchRequest {
	params := make([]request.Param, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		params = append(params, request.Param{Key: pairs[i], Value: pairs[i+1]})
	}
	return request.Normalize(params)
}
