// Package tracing installs the process-wide OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kailas-cloud/papersearch/internal/version"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Config controls tracer setup.
type Config struct {
	Enabled     bool
	ServiceName string
	SampleRatio float64
}

// Setup installs a tracer provider with the service resource. When tracing is disabled
// the global no-op provider stays in place and the returned shutdown does nothing.
func Setup(ctx context.Context, cfg Config, opts ...sdktrace.TracerProviderOption) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	all := append([]sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(res),
	}, opts...)

	provider := sdktrace.NewTracerProvider(all...)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
