package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps an OpenTelemetry TracerProvider for the runtime's lifecycle.
type Tracer struct {
	provider trace.TracerProvider
	sdk      *sdktrace.TracerProvider
}

// NewTracer builds a Tracer from TracingConfig. The "stdout" exporter writes
// spans as pretty-printed JSON to stdout, useful for local planner/dispatcher debugging
// without standing up a collector; "noop" disables span export entirely.
func NewTracer(ctx context.Context, cfg *TracingConfig) (*Tracer, error) {
	if cfg == nil || !cfg.Enabled {
		return &Tracer{provider: noop.NewTracerProvider()}, nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "", "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "noop":
		return &Tracer{provider: noop.NewTracerProvider()}, nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter %q (supported: stdout, noop)", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s exporter: %w", cfg.Exporter, err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Tracer{provider: tp, sdk: tp}, nil
}

// Shutdown flushes and stops the underlying SDK provider, if any.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.sdk == nil {
		return nil
	}
	return t.sdk.Shutdown(ctx)
}

// GetTracer returns a named tracer from the global OpenTelemetry provider.
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
