// Package observability wires OpenTelemetry tracing and metrics for
// outbound requests.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("webreq"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("webreq"))
//	defer mp.Shutdown(ctx)
//
//	m, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
//
// Without Init* calls the global no-op providers are used, so
// instrumentation costs nothing unless a provider is installed.
package observability
