package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/papersearch/internal/db"
)

// Compile-time checks: Store serves both the index and the response cache.
var (
	_ db.Index = (*Store)(nil)
	_ db.Cache = (*Store)(nil)
)

// DefaultMaxFacetValues caps the buckets returned per facet by FT.AGGREGATE.
const DefaultMaxFacetValues = 100

// DefaultKeyPrefix is where paper documents live when no prefix is configured.
const DefaultKeyPrefix = "paper:"

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int

	// KeyPrefix scopes the documents an index covers. Used by ApplySettings only.
	KeyPrefix string
	// MaxFacetValues caps facet buckets per attribute; 0 means DefaultMaxFacetValues.
	MaxFacetValues int
}

// Store implements db.Index and db.Cache via rueidis for Redis 8+.
type Store struct {
	client         rueidis.Client
	keyPrefix      string
	maxFacetValues int
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client, cfg), nil
}

func newStore(client rueidis.Client, cfg Config) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	maxFacets := cfg.MaxFacetValues
	if maxFacets <= 0 {
		maxFacets = DefaultMaxFacetValues
	}
	return &Store{client: client, keyPrefix: prefix, maxFacetValues: maxFacets}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
