package telemetry

import (
	"context"
	"fmt"
	"log"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every span the service starts.
const TracerName = "CycleSentinel"

// Tracer returns the service tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Init configures the global tracer provider for provider ("none", "otlp"
// or "honeycomb") and returns its shutdown func. Exporter settings come
// from the standard OTEL_* / HONEYCOMB_* environment variables.
func Init(ctx context.Context, provider string) (func(context.Context) error, error) {
	switch provider {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "otlp":
		tp, err := initOTLP(ctx)
		if err != nil {
			return nil, err
		}
		log.Println("[INFO] OTLP tracing enabled")
		return tp.Shutdown, nil
	case "honeycomb":
		shutdown, err := otelconfig.ConfigureOpenTelemetry()
		if err != nil {
			return nil, fmt.Errorf("configure honeycomb telemetry: %w", err)
		}
		log.Println("[INFO] Honeycomb tracing enabled")
		return func(context.Context) error {
			shutdown()
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown telemetry provider %q", provider)
	}
}

func initOTLP(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient())
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}
