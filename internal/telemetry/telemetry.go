// Package telemetry wires OpenTelemetry tracing for the match server.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultServiceName = "go-royale"
	serviceVersion     = "0.1.0"
	tracerPrefix       = "royale/"
)

// Setup installs an OTLP HTTP tracer provider as the global provider.
// Exporter settings come from the standard OTEL_* environment variables.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
			attribute.String("host.name", hostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider. Without Setup the
// global provider is a no-op.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerPrefix + name)
}

// Exporter owns the tracer provider for the lifetime of the application.
type Exporter struct {
	serviceName string
}

func NewExporter(serviceName string) *Exporter {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	return &Exporter{serviceName: serviceName}
}

func (e *Exporter) Start(ctx context.Context) error {
	shutdown, err := Setup(ctx, e.serviceName)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "tracing enabled", "service", e.serviceName)

	<-ctx.Done()

	if err := shutdown(context.WithoutCancel(ctx)); err != nil {
		slog.WarnContext(ctx, "shutting down tracer provider", "error", err)
	}
	return nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
