// Package papersearch embeds the paper search pipeline in-process: request
// normalization, disjunctive facets and the response cache, without the HTTP server.
package papersearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/papersearch/internal/db"
	"github.com/kailas-cloud/papersearch/internal/db/meili"
	dbRedis "github.com/kailas-cloud/papersearch/internal/db/redis"
	"github.com/kailas-cloud/papersearch/internal/domain"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
	"github.com/kailas-cloud/papersearch/internal/repository/respcache"
	searchrepo "github.com/kailas-cloud/papersearch/internal/repository/search"
	searchuc "github.com/kailas-cloud/papersearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// ErrIndexQuery is returned when the main query against the index fails.
var ErrIndexQuery = domain.ErrIndexQuery

type searchUseCase interface {
	Search(ctx context.Context, req *request.SearchRequest) (searchuc.Result, error)
}

// Client is the papersearch SDK entry point.
type Client struct {
	index     db.Index
	cache     db.Cache
	gateway   *respcache.Gateway
	indexName string
	search    searchUseCase
}

// New creates a Client and waits for its backends to become ready.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	index, err := createIndex(cfg)
	if err != nil {
		return nil, err
	}
	if err := index.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		index.Close()
		return nil, fmt.Errorf("papersearch: index not ready: %w", err)
	}

	var cache db.Cache
	if len(cfg.cacheAddrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			index.Close()
			return nil, fmt.Errorf("papersearch: create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			index.Close()
			return nil, fmt.Errorf("papersearch: cache not ready: %w", err)
		}
		cache = store
	}

	return wireClient(index, cache, cfg), nil
}

func createIndex(cfg *clientConfig) (db.Index, error) {
	switch cfg.driver {
	case driverMeilisearch:
		s, err := meili.NewStore(meili.Config{URL: cfg.url, APIKey: cfg.apiKey})
		if err != nil {
			return nil, fmt.Errorf("papersearch: create meilisearch store: %w", err)
		}
		return s, nil
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("papersearch: create redis store: %w", err)
		}
		return s, nil
	case "":
		return nil, errors.New("papersearch: index required (use WithMeilisearch or WithRedisIndex)")
	default:
		return nil, fmt.Errorf("papersearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(index db.Index, cache db.Cache, cfg *clientConfig) *Client {
	c := &Client{index: index, cache: cache, indexName: cfg.indexName}

	var responses searchuc.Cache = noCache{}
	if cache != nil {
		c.gateway = respcache.New(cache, respcache.Config{
			Namespace: cfg.cacheNamespace,
			TTL:       cfg.cacheTTL,
		}, nil, cfg.logger)
		responses = c.gateway
	}

	c.search = searchuc.New(searchrepo.New(index, cfg.indexName), responses, searchuc.Options{
		BranchTimeout: cfg.branchTimeout,
	})
	return c
}

// Close waits for pending cache writes and releases all connections.
func (c *Client) Close() {
	if c.gateway != nil {
		c.gateway.Wait()
	}
	if c.cache != nil {
		c.cache.Close()
	}
	if c.index != nil {
		c.index.Close()
	}
}

// Ping checks index connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.index.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureSettings configures the index for filtering and faceting on venue and year.
// It is a no-op for a RediSearch index that already exists.
func (c *Client) EnsureSettings(ctx context.Context) error {
	if err := c.index.ApplySettings(ctx, c.indexName, domain.PaperIndexSettings()); err != nil {
		return fmt.Errorf("ensure settings: %w", err)
	}
	return nil
}

// noCache is used when no cache is configured: every lookup misses.
type noCache struct{}

func (noCache) Key(*request.SearchRequest) string { return "" }

func (noCache) Lookup(context.Context, string) ([]byte, bool) { return nil, false }

func (noCache) Store(context.Context, string, []byte) {}
