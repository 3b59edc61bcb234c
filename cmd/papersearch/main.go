package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/papersearch/internal/config"
	"github.com/kailas-cloud/papersearch/internal/db"
	"github.com/kailas-cloud/papersearch/internal/db/meili"
	dbRedis "github.com/kailas-cloud/papersearch/internal/db/redis"
	"github.com/kailas-cloud/papersearch/internal/domain"
	logpkg "github.com/kailas-cloud/papersearch/internal/logger"
	"github.com/kailas-cloud/papersearch/internal/metrics"
	"github.com/kailas-cloud/papersearch/internal/repository/respcache"
	searchrepo "github.com/kailas-cloud/papersearch/internal/repository/search"
	"github.com/kailas-cloud/papersearch/internal/tracing"
	chiTransport "github.com/kailas-cloud/papersearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/papersearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/papersearch/internal/usecase/search"
	"github.com/kailas-cloud/papersearch/internal/version"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}

	zap.ReplaceGlobals(logger)

	if err := run(env, cfg, logger); err != nil {
		logger.Error("papersearch exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(env string, cfg config.Config, logger *zap.Logger) error {
	logger.Info("Starting papersearch API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_driver", cfg.Index.Driver),
		zap.String("index_name", cfg.Index.Name),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	index, err := newIndex(cfg.Index)
	if err != nil {
		return fmt.Errorf("create index store: %w", err)
	}
	defer index.Close()

	if err := index.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("index not ready: %w", err)
	}
	logger.Info("Connected to search index")

	if cfg.Index.ApplySettings {
		if err := index.ApplySettings(ctx, cfg.Index.Name, domain.PaperIndexSettings()); err != nil {
			return fmt.Errorf("apply index settings: %w", err)
		}
		logger.Info("Index settings applied", zap.String("index", cfg.Index.Name))
	}

	cacheStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}
	defer cacheStore.Close()

	if err := cacheStore.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("cache not ready: %w", err)
	}
	logger.Info("Connected to response cache")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	gateway := respcache.New(cacheStore, respcache.Config{
		Namespace:    cfg.Cache.KeyPrefix,
		TTL:          cfg.Cache.TTL(),
		WriteTimeout: cfg.Cache.WriteTimeout(),
	}, metrics.ResponseCacheTotal, logger)
	// In-flight cache writes finish before the cache client closes.
	defer gateway.Wait()

	searchSvc := searchuc.New(searchrepo.New(index, cfg.Index.Name), gateway, searchuc.Options{
		BranchTimeout:  cfg.Search.BranchTimeout(),
		BranchDuration: metrics.BranchDuration,
		FacetDegraded:  metrics.FacetDegradedTotal,
	})
	healthSvc := healthuc.New(index, cacheStore)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{chiTransport.HeaderCache, "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-quit:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newIndex builds the configured index driver.
func newIndex(cfg config.IndexConfig) (db.Index, error) {
	switch cfg.Driver {
	case config.DriverMeilisearch:
		return meili.NewStore(meili.Config{
			URL:            cfg.URL,
			APIKey:         cfg.APIKey,
			RequestTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		})
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:          cfg.Addrs,
			Password:       cfg.Password,
			KeyPrefix:      cfg.KeyPrefix,
			MaxFacetValues: cfg.MaxFacetValues,
		})
	default:
		return nil, fmt.Errorf("unknown index driver %q", cfg.Driver)
	}
}
