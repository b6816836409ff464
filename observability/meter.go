package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/parmap/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the consuming service.
	ServiceName string
	// ServiceVersion is the version of the consuming service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.NewFromEnv("parmap").Debug("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds OpenTelemetry metric instruments for mapping operations.
type Metrics struct {
	batchTotal       metric.Int64Counter
	batchDuration    metric.Float64Histogram
	elementTotal     metric.Int64Counter
	transformFailure metric.Int64Counter
	operationsActive metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	batchTotal, err := meter.Int64Counter("parmap.batch.total",
		metric.WithDescription("Total number of batches dispatched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.total counter: %w", err)
	}

	batchDuration, err := meter.Float64Histogram("parmap.batch.duration",
		metric.WithDescription("Duration of batch transforms in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.duration histogram: %w", err)
	}

	elementTotal, err := meter.Int64Counter("parmap.element.total",
		metric.WithDescription("Total number of elements transformed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating element.total counter: %w", err)
	}

	transformFailure, err := meter.Int64Counter("parmap.transform.failure.total",
		metric.WithDescription("Total transform failures by element"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transform.failure.total counter: %w", err)
	}

	operationsActive, err := meter.Int64UpDownCounter("parmap.operations.active",
		metric.WithDescription("Number of mapping operations currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operations.active gauge: %w", err)
	}

	return &Metrics{
		batchTotal:       batchTotal,
		batchDuration:    batchDuration,
		elementTotal:     elementTotal,
		transformFailure: transformFailure,
		operationsActive: operationsActive,
	}, nil
}

// RecordOperationStart increments the active operation count.
func (m *Metrics) RecordOperationStart(ctx context.Context) {
	m.operationsActive.Add(ctx, 1)
}

// RecordOperationEnd decrements the active operation count.
func (m *Metrics) RecordOperationEnd(ctx context.Context) {
	m.operationsActive.Add(ctx, -1)
}

// RecordBatch records one completed batch and its element count.
func (m *Metrics) RecordBatch(ctx context.Context, operationID string, elements int, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operationID),
		attribute.String("status", status),
	)
	m.batchTotal.Add(ctx, 1, attrs)
	m.elementTotal.Add(ctx, int64(elements), attrs)
	m.batchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operationID),
	))
}

// RecordTransformFailures records failed elements from one batch.
func (m *Metrics) RecordTransformFailures(ctx context.Context, operationID string, count int) {
	m.transformFailure.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("operation", operationID),
	))
}
