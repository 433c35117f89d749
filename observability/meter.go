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

	"github.com/kbukum/transducekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	ServiceName    string        `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string        `yaml:"service_version" mapstructure:"service_version"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns development defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The caller must Shutdown the returned provider.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns the module meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Metrics holds the transduction instruments.
type Metrics struct {
	runs     metric.Int64Counter
	items    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runs, err := meter.Int64Counter("transduce.runs",
		metric.WithDescription("Completed transduction runs by pipeline and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transduce.runs counter: %w", err)
	}

	items, err := meter.Int64Counter("transduce.items",
		metric.WithDescription("Items pulled from sources"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transduce.items counter: %w", err)
	}

	duration, err := meter.Float64Histogram("transduce.duration",
		metric.WithDescription("Duration of transduction runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transduce.duration histogram: %w", err)
	}

	errs, err := meter.Int64Counter("transduce.errors",
		metric.WithDescription("Failed runs by pipeline and error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transduce.errors counter: %w", err)
	}

	return &Metrics{runs: runs, items: items, duration: duration, errors: errs}, nil
}

// RecordRun records one finished run.
func (m *Metrics) RecordRun(ctx context.Context, pipeline, status string, items int, d time.Duration) {
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
	m.items.Add(ctx, int64(items), metric.WithAttributes(attribute.String("pipeline", pipeline)))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("pipeline", pipeline)))
}

// RecordError records a failed run by error kind.
func (m *Metrics) RecordError(ctx context.Context, pipeline, kind string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("kind", kind),
	))
}
