package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/webrequest/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string        `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string        `yaml:"service_version" mapstructure:"service_version"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns defaults for a local collector.
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
// The returned provider must be shut down on exit.
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
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ClientMetrics holds the instruments recorded for each outbound request.
type ClientMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	responseBytes   metric.Int64Counter
}

// NewClientMetrics creates the client instruments on meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requestTotal, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Outbound requests by method, host and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Time from dispatch to settlement"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("http.client.request.active",
		metric.WithDescription("Requests dispatched but not yet settled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.request.active gauge: %w", err)
	}

	responseBytes, err := meter.Int64Counter("http.client.response.body.size",
		metric.WithDescription("Response body bytes read"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.client.response.body.size counter: %w", err)
	}

	return &ClientMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		responseBytes:   responseBytes,
	}, nil
}

// RecordStart increments the active request count.
func (m *ClientMetrics) RecordStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordEnd decrements active requests and records the settled request.
// outcome is "ok" or an error classification; status is 0 when no response
// was received.
func (m *ClientMetrics) RecordEnd(ctx context.Context, method, host, outcome string, status int, bytes int64, d time.Duration) {
	if m == nil {
		return
	}
	base := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("host", host),
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(append(base,
		attribute.String("outcome", outcome),
		attribute.String("status", strconv.Itoa(status)),
	)...))
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(base...))
	if bytes > 0 {
		m.responseBytes.Add(ctx, bytes, metric.WithAttributes(base...))
	}
}
