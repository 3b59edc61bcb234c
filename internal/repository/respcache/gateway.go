// Package respcache caches composed search responses keyed by the canonical request.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/papersearch/internal/db"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
)

const keySegment = "search:"

// Cache outcome labels for the "result" dimension of the counter.
const (
	ResultHit        = "hit"
	ResultMiss       = "miss"
	ResultError      = "error"
	ResultStoreError = "store_error"
)

// DefaultWriteTimeout bounds a detached store when none is configured.
const DefaultWriteTimeout = 2 * time.Second

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config tunes key derivation and writes.
type Config struct {
	Namespace    string
	TTL          time.Duration
	WriteTimeout time.Duration
}

// Gateway mediates get/set against the key-value cache.
type Gateway struct {
	store        store
	prefix       string
	ttl          time.Duration
	writeTimeout time.Duration
	cacheTotal   *prometheus.CounterVec
	logger       *zap.Logger
	inflight     sync.WaitGroup
}

// New creates a cache gateway.
// cacheTotal is a counter vec with label "result", passed explicitly; it may be nil.
func New(s store, cfg Config, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Gateway {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = DefaultWriteTimeout
	}
	return &Gateway{
		store:        s,
		prefix:       cfg.Namespace + keySegment,
		ttl:          cfg.TTL,
		writeTimeout: wt,
		cacheTotal:   cacheTotal,
		logger:       logger,
	}
}

// Key derives the cache key from the canonical form of req.
func (g *Gateway) Key(req *request.SearchRequest) string {
	h := sha256.Sum256(req.Canonical())
	return g.prefix + hex.EncodeToString(h[:])
}

// Lookup returns the cached payload. Service errors are reported as a miss.
func (g *Gateway) Lookup(ctx context.Context, key string) ([]byte, bool) {
	data, err := g.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			g.inc(ResultMiss)
		} else {
			g.inc(ResultError)
			g.logger.Warn("Failed to read cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		g.inc(ResultMiss)
		return nil, false
	}

	g.inc(ResultHit)
	return data, true
}

// Store writes payload in the background on a context detached from ctx's cancellation.
// Failures are logged and never reach the caller.
func (g *Gateway) Store(ctx context.Context, key string, payload []byte) {
	detached := context.WithoutCancel(ctx)

	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()

		wctx, cancel := context.WithTimeout(detached, g.writeTimeout)
		defer cancel()

		if err := g.store.SetWithTTL(wctx, key, payload, g.ttl); err != nil {
			g.inc(ResultStoreError)
			g.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
		}
	}()
}

// Wait blocks until every pending Store has finished.
func (g *Gateway) Wait() {
	g.inflight.Wait()
}

func (g *Gateway) inc(result string) {
	if g.cacheTotal != nil {
		g.cacheTotal.WithLabelValues(result).Inc()
	}
}
