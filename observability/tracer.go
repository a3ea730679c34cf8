package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/webrequest/logger"
)

// InstrumentationName identifies spans and instruments created by webrequest.
const InstrumentationName = "github.com/kbukum/webrequest"

// TracerConfig configures the OpenTelemetry tracer.
type TracerConfig struct {
	ServiceName    string  `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string  `yaml:"service_version" mapstructure:"service_version"`
	Environment    string  `yaml:"environment" mapstructure:"environment"`
	Endpoint       string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// DefaultTracerConfig returns defaults for a local collector.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// InitTracer installs a global tracer provider exporting over OTLP/HTTP.
// The returned provider must be shut down on exit.
func InitTracer(ctx context.Context, config TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Get("observability").Info("tracer initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"sample_rate", config.SampleRate,
	))

	return tp, nil
}

func newResource(serviceName, serviceVersion, environment string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", environment),
		),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartClientSpan starts a client-kind span for an outbound request.
func StartClientSpan(ctx context.Context, tracer trace.Tracer, method, url string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, method),
			attribute.String(AttrHTTPURL, url),
		),
	)
}

// Span attribute keys.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPURL        = "url.full"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrRequestID      = "webrequest.request_id"
	AttrErrorCode      = "error.type"
)
