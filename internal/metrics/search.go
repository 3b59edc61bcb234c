package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "response_cache_total",
			Help:      "Response cache lookups and stores by outcome",
		},
		[]string{"result"}, // "hit" / "miss" / "error" / "store_error"
	)

	BranchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_branch_duration_seconds",
			Help:      "Index query duration per search branch",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"branch", "status"}, // branch: main / venue / year; status: ok / error
	)

	FacetDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "facet_degraded_total",
			Help:      "Facet queries that failed and were omitted from the response",
		},
		[]string{"facet"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(ResponseCacheTotal)
	prometheus.MustRegister(BranchDuration)
	prometheus.MustRegister(FacetDegradedTotal)
	searchMetricsRegistered = true
}
