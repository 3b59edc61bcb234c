package respcache

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
)

func normalize(pairs ...string) request.SearchRequest {
	params := make([]request.Param, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		params = append(params, request.Param{Key: pairs[i], Value: pairs[i+1]})
	}
	return request.Normalize(params)
}

func TestKey_Format(t *testing.T) {
	g, _, _ := newTestGateway(t)
	req := normalize("q", "raft")

	key := g.Key(&req)
	if !regexp.MustCompile(`^papersearch:search:[0-9a-f]{64}$`).MatchString(key) {
		t.Errorf("unexpected key format: %s", key)
	}
}

func TestKey_OrderIndependent(t *testing.T) {
	g, _, _ := newTestGateway(t)
	a := normalize("venue", "SOSP", "venue", "OSDI", "year", "2021", "year", "2020")
	b := normalize("year", "2020", "venue", "OSDI", "year", "2021", "venue", "SOSP")

	if g.Key(&a) != g.Key(&b) {
		t.Error("expected same key regardless of parameter order")
	}
}

func TestKey_DuplicatesChangeKey(t *testing.T) {
	g, _, _ := newTestGateway(t)
	a := normalize("venue", "SOSP")
	b := normalize("venue", "SOSP", "venue", "SOSP")

	if g.Key(&a) == g.Key(&b) {
		t.Error("duplicate values are kept, so keys must differ")
	}
}

func TestKey_AbsentDiffersFromDefault(t *testing.T) {
	g, _, _ := newTestGateway(t)
	a := normalize("q", "raft")
	b := normalize("q", "raft", "limit", "20")

	if g.Key(&a) == g.Key(&b) {
		t.Error("absent limit and explicit default limit are distinct requests")
	}
}

func TestLookup_Hit(t *testing.T) {
	g, ms, counter := newTestGateway(t)
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if key != "k" {
			t.Errorf("unexpected key: %s", key)
		}
		return []byte(`{"hits":[]}`), nil
	}

	data, ok := g.Lookup(context.Background(), "k")
	if !ok || string(data) != `{"hits":[]}` {
		t.Fatalf("expected hit, got %q (%v)", data, ok)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues(ResultHit)); v != 1 {
		t.Errorf("hit counter = %v, want 1", v)
	}
}

func TestLookup_Miss(t *testing.T) {
	g, _, counter := newTestGateway(t)

	if _, ok := g.Lookup(context.Background(), "k"); ok {
		t.Fatal("expected miss")
	}
	if v := testutil.ToFloat64(counter.WithLabelValues(ResultMiss)); v != 1 {
		t.Errorf("miss counter = %v, want 1", v)
	}
}

func TestLookup_ErrorIsMiss(t *testing.T) {
	g, ms, counter := newTestGateway(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}

	if _, ok := g.Lookup(context.Background(), "k"); ok {
		t.Fatal("expected miss on error")
	}
	if v := testutil.ToFloat64(counter.WithLabelValues(ResultError)); v != 1 {
		t.Errorf("error counter = %v, want 1", v)
	}
}

func TestStore_DetachedFromRequest(t *testing.T) {
	g, ms, _ := newTestGateway(t)

	ms.setFn = func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		if err := ctx.Err(); err != nil {
			t.Errorf("store context should not be canceled: %v", err)
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Error("store context should carry the write timeout")
		}
		if key != "k" || string(value) != "payload" || ttl != time.Hour {
			t.Errorf("unexpected set: %s %s %v", key, value, ttl)
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g.Store(ctx, "k", []byte("payload"))
	g.Wait()

	if ms.sets != 1 {
		t.Errorf("expected 1 set, got %d", ms.sets)
	}
}

func TestStore_ErrorSwallowed(t *testing.T) {
	g, ms, counter := newTestGateway(t)
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("readonly replica")
	}

	g.Store(context.Background(), "k", []byte("payload"))
	g.Wait()

	if v := testutil.ToFloat64(counter.WithLabelValues(ResultStoreError)); v != 1 {
		t.Errorf("store_error counter = %v, want 1", v)
	}
}

func TestNew_DefaultWriteTimeout(t *testing.T) {
	g := New(&mockKVStore{}, Config{}, nil, nil)
	if g.writeTimeout != DefaultWriteTimeout {
		t.Errorf("writeTimeout = %v, want %v", g.writeTimeout, DefaultWriteTimeout)
	}
	if g.prefix != keySegment {
		t.Errorf("prefix = %q, want %q", g.prefix, keySegment)
	}
}
