package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[ComponentIndex] != CheckOK {
		t.Errorf("expected index %q, got %q", CheckOK, r.Checks[ComponentIndex])
	}
	if r.Checks[ComponentCache] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks[ComponentCache])
	}
}

func TestCheck_IndexError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentIndex] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks[ComponentIndex])
	}
	if r.Checks[ComponentCache] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks[ComponentCache])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[ComponentCache])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("index down")},
		&mockPinger{err: errors.New("cache down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentIndex] != CheckError || r.Checks[ComponentCache] != CheckError {
		t.Errorf("expected both checks to fail, got %v", r.Checks)
	}
}

func TestCheck_NoCache(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}
