package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/papersearch/internal/domain"
)

// Index is the search index facade implemented by every index driver.
//
//nolint:interfacebloat // consumers use narrow sub-interfaces (ISP)
type Index interface {
	Pinger
	Searcher
	SettingsManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Cache is the key-value facade backing the response cache.
type Cache interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Searcher runs filtered, faceted queries against an index.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}

// SettingsManager applies the attribute configuration a search index needs.
type SettingsManager interface {
	ApplySettings(ctx context.Context, index string, settings domain.IndexSettings) error
}
