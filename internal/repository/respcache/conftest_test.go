package respcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/papersearch/internal/db"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	mu    sync.Mutex
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	sets  int
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.sets++
	m.mu.Unlock()
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_response_cache_total", Help: "test"},
		[]string{"result"},
	)
}

func newTestGateway(t *testing.T) (*Gateway, *mockKVStore, *prometheus.CounterVec) {
	t.Helper()
	ms := &mockKVStore{}
	counter := newCounter()
	g := New(ms, Config{Namespace: "papersearch:", TTL: time.Hour, WriteTimeout: time.Second}, counter, zap.NewNop())
	return g, ms, counter
}
