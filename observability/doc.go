// Package observability wires OpenTelemetry tracing and metrics for
// transduction runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("transduce"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("transduce"))
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(observability.Meter("transduce"))
//
// A Run ties both together for one reduction: it opens a span, and on End
// records transduce.runs, transduce.items, transduce.duration and, on failure,
// transduce.errors.
package observability
