package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"chatrelay/internal/config"
)

// Init sets the global tracer provider with an OTLP HTTP exporter (Jaeger
// accepts OTLP on port 4318). Returns a shutdown func for application exit.
// When tracing is disabled the global provider stays a no-op and span calls
// throughout the services cost nothing.
func Init(ctx context.Context, cfg config.TelemetryConfig) func(context.Context) error {
	if !cfg.Enabled {
		log.Println("tracing disabled (set OTEL_ENABLED=true to enable)")
		return func(context.Context) error { return nil }
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("create otlp exporter failed: %v (tracing disabled)", err)
		return func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Printf("tracer initialized (endpoint: %s)", cfg.OTLPEndpoint)

	return tp.Shutdown
}
