package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("webreq")
	if tc.ServiceName != "webreq" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 {
		t.Errorf("unexpected tracer defaults: %+v", tc)
	}
	mc := DefaultMeterConfig("webreq")
	if mc.Interval != 15*time.Second || !mc.Insecure {
		t.Errorf("unexpected meter defaults: %+v", mc)
	}
}

func TestClientMetricsNoop(t *testing.T) {
	m, err := NewClientMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	m.RecordStart(ctx)
	m.RecordEnd(ctx, "GET", "example.com", "ok", 200, 10, time.Millisecond)
}

func TestClientMetricsNilReceiver(t *testing.T) {
	var m *ClientMetrics
	m.RecordStart(context.Background())
	m.RecordEnd(context.Background(), "GET", "h", "ok", 200, 0, 0)
}

func TestClientMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	m.RecordStart(ctx)
	m.RecordEnd(ctx, "POST", "api.example.com", "ok", 201, 42, 20*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			found[md.Name] = true
			if md.Name != "http.client.request.total" {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) != 1 {
				t.Fatalf("unexpected data: %#v", md.Data)
			}
			dp := sum.DataPoints[0]
			if dp.Value != 1 {
				t.Errorf("request.total = %d", dp.Value)
			}
			if v, _ := dp.Attributes.Value(attribute.Key("status")); v.AsString() != "201" {
				t.Errorf("status attribute = %v", v.AsString())
			}
		}
	}
	for _, name := range []string{
		"http.client.request.total",
		"http.client.request.duration",
		"http.client.request.active",
		"http.client.response.body.size",
	} {
		if !found[name] {
			t.Errorf("metric %s not collected", name)
		}
	}
}

func TestStartClientSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	_, span := StartClientSpan(context.Background(), tp.Tracer("test"), "GET", "http://example.com/x")
	span.End()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "HTTP GET" {
		t.Errorf("name = %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindClient {
		t.Errorf("kind = %v", s.SpanKind())
	}
}
