package papersearch

import (
	"time"

	"go.uber.org/zap"
)

const (
	driverMeilisearch = "meilisearch"
	driverRedis       = "redis"
)

// Option configures a Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string
	url      string
	apiKey   string
	addrs    []string
	password string

	indexName     string
	branchTimeout time.Duration

	cacheAddrs     []string
	cachePassword  string
	cacheNamespace string
	cacheTTL       time.Duration

	logger *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		indexName:      "papers",
		cacheNamespace: "papersearch:",
		cacheTTL:       time.Hour,
		logger:         zap.NewNop(),
	}
}

// WithMeilisearch uses a Meilisearch instance as the index.
func WithMeilisearch(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMeilisearch
		c.url = url
		c.apiKey = apiKey
	})
}

// WithRedisIndex uses a RediSearch index on a Redis 8+ server.
func WithRedisIndex(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithIndexName sets the index uid (default "papers").
func WithIndexName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
	})
}

// WithCache enables the response cache on a Redis or Valkey server.
func WithCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithCacheTTL sets how long cached responses live. Zero or negative disables expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithCacheNamespace sets the key prefix shared with other papersearch instances.
func WithCacheNamespace(ns string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheNamespace = ns
	})
}

// WithBranchTimeout bounds each index query of a search.
func WithBranchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.branchTimeout = d
	})
}

// WithLogger sets the logger for cache diagnostics.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
