package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "study-backend"

// InitTracing installs a global tracer provider for the given exporter
// ("stdout" or "otlp"). Any other value leaves the no-op provider in place.
// The returned func flushes and shuts the provider down.
func InitTracing(ctx context.Context, exporter, serviceName, env string) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "stdout":
		exp, err = stdouttrace.New()
	case "otlp":
		// Endpoint, headers and TLS come from the standard OTEL_EXPORTER_OTLP_* variables.
		exp, err = otlptracehttp.New(ctx)
	default:
		return noop, nil
	}
	if err != nil {
		return noop, fmt.Errorf("init trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", env),
	))
	if err != nil {
		Warn("tracing.resource_failed", map[string]any{"error": err})
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Info("tracing.initialized", map[string]any{"exporter": exporter, "service": serviceName})
	return tp.Shutdown, nil
}

// Tracer returns the process tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
