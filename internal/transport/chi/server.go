package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/papersearch/internal/domain"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
	"github.com/kailas-cloud/papersearch/internal/logger"
	healthuc "github.com/kailas-cloud/papersearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/papersearch/internal/usecase/search"
)

// Cache status header values.
const (
	HeaderCache = "X-Cache"
	CacheHit    = "HIT"
	CacheMiss   = "MISS"
)

type searcher interface {
	Search(ctx context.Context, req *request.SearchRequest) (searchuc.Result, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the public search API.
type Server struct {
	search        searcher
	health        healthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewServer creates an HTTP API server.
func NewServer(search searcher, health healthChecker, logger *zap.Logger) *Server {
	return &Server{
		search: search,
		health: health,
		logger: logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrIndexQuery, http.StatusBadGateway),
		},
	}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.SearchPapers)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// SearchPapers handles GET /search.
func (s *Server) SearchPapers(w http.ResponseWriter, r *http.Request) {
	req := request.Normalize(parseRawQuery(r.URL.RawQuery))

	res, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set(HeaderCache, CacheMiss)
	if res.Cached {
		w.Header().Set(HeaderCache, CacheHit)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Payload)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The sentinel text is the client-facing message so driver details stay in the logs.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("search failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
