package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mrops-br/restyle-storefront/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry holds all OpenTelemetry components
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Logger         *slog.Logger
	// Registry backs the /metrics endpoint
	Registry *prometheus.Registry

	logSink io.Closer
}

// NewTelemetry initializes all OpenTelemetry components
func NewTelemetry(cfg *config.Config) (*Telemetry, error) {
	// Initialize logger first for debugging
	logger, sink := initLogger(&cfg.OTLP, &cfg.Log)

	logger.Info("Initializing OpenTelemetry",
		slog.String("endpoint", cfg.OTLP.Endpoint),
		slog.String("service_name", cfg.OTLP.ServiceName),
	)

	tp, err := initTracerProvider(&cfg.OTLP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	logger.Info("Tracer provider initialized successfully")

	// Dual readers: OTLP push and Prometheus pull
	registry := prometheus.NewRegistry()
	mp, err := initMeterProvider(&cfg.OTLP, registry)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	otel.SetMeterProvider(mp)
	logger.Info("Meter provider initialized successfully (OTLP + Prometheus exporters)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Logger:         logger,
		Registry:       registry,
		logSink:        sink,
	}, nil
}

// NewNoOpTelemetry creates a telemetry instance that exports nothing over
// OTLP. Metrics are still served from the Prometheus registry.
func NewNoOpTelemetry(cfg *config.Config) *Telemetry {
	logger, sink := initLogger(&cfg.OTLP, &cfg.Log)

	tp := sdktrace.NewTracerProvider()

	registry := prometheus.NewRegistry()
	mp, err := initPrometheusMeterProvider(&cfg.OTLP, registry)
	if err != nil {
		logger.Warn("Prometheus exporter unavailable, metrics disabled",
			slog.String("error", err.Error()),
		)
		mp = metric.NewMeterProvider()
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger.Info("Telemetry initialized in no-op mode (export disabled)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Logger:         logger,
		Registry:       registry,
		logSink:        sink,
	}
}

// Shutdown gracefully shuts down all telemetry components
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.Logger.Info("Shutting down OpenTelemetry")

	var errs []error
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown tracer provider", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		t.Logger.Error("Failed to shutdown meter provider", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		t.Logger.Info("OpenTelemetry shutdown successfully")
	}

	if t.logSink != nil {
		errs = append(errs, t.logSink.Close())
	}
	return errors.Join(errs...)
}
