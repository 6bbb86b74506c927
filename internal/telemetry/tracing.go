// Package telemetry wires the optional OpenTelemetry trace pipeline. Spans
// cover the kernel pipeline stages; export goes to stderr so stdout stays
// reserved for the IPC envelope.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// serviceName identifies the kernel in exported spans.
const serviceName = "cabinet-kernel"

// Shutdown flushes and stops the trace pipeline.
type Shutdown func(context.Context) error

// InitTracer builds the tracer for the kernel pipeline. Disabled tracing
// returns a no-op tracer and a no-op shutdown.
func InitTracer(enabled bool) (trace.Tracer, Shutdown, error) {
	if !enabled {
		return noop.NewTracerProvider().Tracer(serviceName),
			func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return provider.Tracer(serviceName), provider.Shutdown, nil
}
