package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the response cache is down; search still works uncached.
	Degraded Status = "degraded"
	// Unhealthy indicates the search index is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as Report.Checks keys.
const (
	ComponentIndex = "index"
	ComponentCache = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index Pinger
	cache Pinger
}

// New creates a Service. cache can be nil.
func New(index, cache Pinger) *Service {
	return &Service{index: index, cache: cache}
}

// Check pings the index and the cache.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	checks[ComponentIndex] = probe(ctx, s.index)
	if s.cache != nil {
		checks[ComponentCache] = probe(ctx, s.cache)
	}

	status := Healthy
	switch {
	case checks[ComponentIndex] == CheckError:
		status = Unhealthy
	case checks[ComponentCache] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func probe(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
