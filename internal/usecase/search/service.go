package search

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/papersearch/internal/domain"
	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
	"github.com/kailas-cloud/papersearch/internal/domain/search/query"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
	"github.com/kailas-cloud/papersearch/internal/domain/search/result"
	"github.com/kailas-cloud/papersearch/internal/logger"
)

const tracerName = "github.com/kailas-cloud/papersearch/internal/usecase/search"

// BranchMain labels the mandatory hits query; facet branches are labeled by field name.
const BranchMain = "main"

// DefaultBranchTimeout bounds each index query when Options leave it unset.
const DefaultBranchTimeout = 5 * time.Second

// Options tune the orchestrator. Zero values fall back to defaults; metrics may be nil.
type Options struct {
	BranchTimeout  time.Duration
	Tracer         trace.Tracer
	BranchDuration *prometheus.HistogramVec // labels: branch, status
	FacetDegraded  *prometheus.CounterVec   // labels: facet
}

// Result is a composed search response.
type Result struct {
	Payload []byte
	Cached  bool
	// DegradedFacets lists requested facets omitted because their query failed.
	DegradedFacets []facet.Field
}

// Service answers search requests through the response cache and the index.
type Service struct {
	index          Index
	cache          Cache
	branchTimeout  time.Duration
	tracer         trace.Tracer
	branchDuration *prometheus.HistogramVec
	facetDegraded  *prometheus.CounterVec
}

// New creates a search service.
func New(index Index, cache Cache, opts Options) *Service {
	s := &Service{
		index:          index,
		cache:          cache,
		branchTimeout:  opts.BranchTimeout,
		tracer:         opts.Tracer,
		branchDuration: opts.BranchDuration,
		facetDegraded:  opts.FacetDegraded,
	}
	if s.branchTimeout <= 0 {
		s.branchTimeout = DefaultBranchTimeout
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// facetOutcome is the reconciled result of one facet branch.
type facetOutcome struct {
	field   facet.Field
	counts  map[string]int64
	present bool
	err     error
}

// Search returns the cached payload for req or runs the query plan, composes and caches the response.
// A failed main query yields domain.ErrIndexQuery and nothing is cached.
func (s *Service) Search(ctx context.Context, req *request.SearchRequest) (Result, error) {
	key := s.cache.Key(req)
	ctx = logger.WithFields(ctx, zap.String("cache_key", key))
	if payload, ok := s.cache.Lookup(ctx, key); ok {
		return Result{Payload: payload, Cached: true}, nil
	}

	plan := query.Build(req)

	page, facets, err := s.execute(ctx, plan)
	if err != nil {
		return Result{}, err
	}

	var degraded []facet.Field
	for _, o := range facets {
		if o.err == nil {
			continue
		}
		degraded = append(degraded, o.field)
		s.incDegraded(o.field)
		logger.FromContext(ctx).Warn("Facet query failed, omitting facet",
			zap.String("facet", string(o.field)), zap.Error(o.err))
	}

	payload, err := compose(page, facets)
	if err != nil {
		return Result{}, fmt.Errorf("compose response: %w", err)
	}

	s.cache.Store(ctx, key, payload)
	return Result{Payload: payload, DegradedFacets: degraded}, nil
}

// execute runs the main query and every facet query concurrently.
// Only the main branch can fail the group; its failure cancels the facet branches.
func (s *Service) execute(ctx context.Context, plan query.Plan) (*result.Page, []facetOutcome, error) {
	g, gctx := errgroup.WithContext(ctx)

	var main *result.Page
	g.Go(func() error {
		page, err := s.runBranch(gctx, BranchMain, plan.Main)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrIndexQuery, err)
		}
		main = page
		return nil
	})

	outcomes := make([]facetOutcome, len(plan.Facets))
	for i, fq := range plan.Facets {
		g.Go(func() error {
			outcomes[i] = facetOutcome{field: fq.Field}
			page, err := s.runBranch(gctx, string(fq.Field), fq.Query)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].counts, outcomes[i].present = page.FacetDistribution.Counts(fq.Field)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return main, outcomes, nil
}

func (s *Service) runBranch(ctx context.Context, branch string, q query.Query) (*result.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.branchTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "search."+branch, trace.WithAttributes(
		attribute.String("search.branch", branch),
		attribute.Int("search.limit", q.Limit),
		attribute.Int("search.offset", q.Offset),
		attribute.String("search.filter", q.Filter.String()),
	))
	defer span.End()

	start := time.Now()
	page, err := s.index.Search(ctx, q)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int64("search.estimated_total_hits", page.EstimatedTotalHits))
	}
	if s.branchDuration != nil {
		s.branchDuration.WithLabelValues(branch, status).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		return nil, fmt.Errorf("%s query: %w", branch, err)
	}
	return page, nil
}

func (s *Service) incDegraded(f facet.Field) {
	if s.facetDegraded != nil {
		s.facetDegraded.WithLabelValues(string(f)).Inc()
	}
}
