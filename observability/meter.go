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

	"github.com/kbukum/seqkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
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

// InitMeter initializes the OpenTelemetry meter provider with a periodic
// OTLP/HTTP reader and installs it globally.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
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

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
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

// Metrics holds the instruments recorded for sequence iterations and
// provider executions.
type Metrics struct {
	iterationTotal    metric.Int64Counter
	iterationDuration metric.Float64Histogram
	iterationActive   metric.Int64UpDownCounter
	elementsPulled    metric.Int64Counter
	executionTotal    metric.Int64Counter
	executionDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	iterationTotal, err := meter.Int64Counter("seq.iteration.total",
		metric.WithDescription("Total number of finished sequence iterations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating seq.iteration.total counter: %w", err)
	}

	iterationDuration, err := meter.Float64Histogram("seq.iteration.duration",
		metric.WithDescription("Time from first pull to release, in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating seq.iteration.duration histogram: %w", err)
	}

	iterationActive, err := meter.Int64UpDownCounter("seq.iteration.active",
		metric.WithDescription("Number of iterations holding an upstream"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating seq.iteration.active gauge: %w", err)
	}

	elementsPulled, err := meter.Int64Counter("seq.elements.pulled",
		metric.WithDescription("Total number of elements pulled through instrumented sequences"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating seq.elements.pulled counter: %w", err)
	}

	executionTotal, err := meter.Int64Counter("provider.execution.total",
		metric.WithDescription("Total number of provider query executions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider.execution.total counter: %w", err)
	}

	executionDuration, err := meter.Float64Histogram("provider.execution.duration",
		metric.WithDescription("Duration of provider Execute calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider.execution.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		iterationTotal:    iterationTotal,
		iterationDuration: iterationDuration,
		iterationActive:   iterationActive,
		elementsPulled:    elementsPulled,
		executionTotal:    executionTotal,
		executionDuration: executionDuration,
		errorTotal:        errorTotal,
	}, nil
}

// RecordIterationStart increments the active iteration count.
func (m *Metrics) RecordIterationStart(ctx context.Context, sequence string) {
	m.iterationActive.Add(ctx, 1, metric.WithAttributes(attribute.String("sequence", sequence)))
}

// RecordIterationEnd decrements active iterations and records the finished
// iteration with its outcome (exhausted, abandoned or error).
func (m *Metrics) RecordIterationEnd(ctx context.Context, sequence, outcome string, pulled int64, duration time.Duration) {
	seqAttr := attribute.String("sequence", sequence)
	m.iterationActive.Add(ctx, -1, metric.WithAttributes(seqAttr))
	m.iterationTotal.Add(ctx, 1, metric.WithAttributes(seqAttr, attribute.String("outcome", outcome)))
	m.iterationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(seqAttr))
	m.elementsPulled.Add(ctx, pulled, metric.WithAttributes(seqAttr))
}

// RecordExecution records one provider Execute call.
func (m *Metrics) RecordExecution(ctx context.Context, provider, status string, duration time.Duration) {
	m.executionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
	m.executionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
