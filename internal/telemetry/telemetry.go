// Package telemetry configures the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects the exporter. An empty Endpoint disables tracing.
type Config struct {
	ServiceName string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Shutdown flushes and stops the provider.
type Shutdown func(context.Context) error

// Setup installs a global tracer provider and returns it with its shutdown
// function. Without an endpoint a no-op provider is installed.
func Setup(ctx context.Context, cfg Config) (trace.TracerProvider, Shutdown, error) {
	if cfg.Endpoint == "" {
		provider := noop.NewTracerProvider()
		otel.SetTracerProvider(provider)
		return provider, func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "memento"
	}
	resource := sdkresource.NewSchemaless(attribute.String("service.name", serviceName))

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource),
		sdktrace.WithSampler(Sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	slog.Info("Tracing enabled", "endpoint", cfg.Endpoint, "service", serviceName, "sample_ratio", cfg.SampleRatio)
	return provider, provider.Shutdown, nil
}

// Sampler samples root spans at ratio and follows the parent otherwise. A
// ratio of 0 samples nothing; ratios outside [0, 1] are clamped.
func Sampler(ratio float64) sdktrace.Sampler {
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(min(max(ratio, 0), 1)))
}
