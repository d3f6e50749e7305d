// Package telemetry installs the process-wide OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.uber.org/zap"
)

// Config describes the service and where spans are exported
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// CollectorEndpoint is an OTLP/gRPC host:port. Empty keeps spans in process.
	CollectorEndpoint string
}

// Telemetry owns the installed tracer provider
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	shutdown       func(context.Context) error
}

func (c Config) newResource() *sdkresource.Resource {
	return sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(c.ServiceVersion),
		semconv.DeploymentEnvironmentName(c.Environment),
		semconv.TelemetrySDKLanguageGo,
	)
}

// Initialize builds a tracer provider for cfg and sets it globally
func Initialize(ctx context.Context, cfg Config, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(cfg.newResource())}

	var exporterShutdown func(context.Context) error
	if cfg.CollectorEndpoint == "" {
		logger.Warn("trace export disabled, no collector endpoint configured")
	} else {
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("can't initialize tracer exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		exporterShutdown = exporter.Shutdown
		logger.Info("exporting traces", zap.String("endpoint", cfg.CollectorEndpoint))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Telemetry{
		TracerProvider: tp,
		shutdown: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				return fmt.Errorf("can't shutdown tracer provider: %w", err)
			}
			if exporterShutdown != nil {
				if err := exporterShutdown(ctx); err != nil {
					return fmt.Errorf("can't shutdown tracer exporter: %w", err)
				}
			}
			return nil
		},
	}, nil
}

// Shutdown flushes pending spans and stops the provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}
