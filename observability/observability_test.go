package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/kbukum/transducekit/errors"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	return rec, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("transduce")
	if tc.ServiceName != "transduce" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 {
		t.Errorf("unexpected tracer defaults %+v", tc)
	}
	mc := DefaultMeterConfig("transduce")
	if mc.Interval != 15*time.Second {
		t.Errorf("got interval %v, want 15s", mc.Interval)
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	m.RecordRun(ctx, "evens", StatusOK, 3, time.Millisecond)
	m.RecordError(ctx, "evens", "callback")
}

func TestRun_RecordsSpanAndMetrics(t *testing.T) {
	rec, tp := newRecorder()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, run := StartRun(context.Background(), tp.Tracer("test"), metrics, "evens", "run-1")
	if TraceID(ctx) == "" {
		t.Error("expected a trace id in the run context")
	}
	run.End(ctx, 5, true, nil)

	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != SpanRun {
		t.Fatalf("got %d spans, want one %s span", len(spans), SpanRun)
	}
	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[AttrPipeline] != "evens" || attrs[AttrItems] != int64(5) || attrs[AttrStatus] != StatusReduced {
		t.Errorf("unexpected span attributes %v", attrs)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = true
			if m.Name == "transduce.items" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 5 {
					t.Errorf("unexpected transduce.items data %+v", m.Data)
				}
			}
		}
	}
	for _, name := range []string{"transduce.runs", "transduce.items", "transduce.duration"} {
		if !got[name] {
			t.Errorf("metric %s not recorded", name)
		}
	}
	if got["transduce.errors"] {
		t.Error("transduce.errors recorded for a successful run")
	}
}

func TestRun_Error(t *testing.T) {
	rec, tp := newRecorder()
	ctx, run := StartRun(context.Background(), tp.Tracer("test"), nil, "evens", "run-2")
	run.End(ctx, 1, false, apperrors.Cardinality("too many items"))

	span := rec.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("got status %v, want Error", span.Status().Code)
	}
	if len(span.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestRun_NoTracer(t *testing.T) {
	ctx, run := StartRun(context.Background(), nil, nil, "p", "id")
	run.End(ctx, 0, false, nil)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apperrors.Cardinality("too few items"), "cardinality_violation"},
		{apperrors.ShapeMismatch("x"), "shape_mismatch"},
		{context.Canceled, "canceled"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "callback"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

type staticChecker Health

func (s staticChecker) CheckHealth(context.Context) Health { return Health(s) }

func TestCheckAll(t *testing.T) {
	sh := CheckAll(context.Background(), "transduce", "dev",
		staticChecker{Name: "a", Status: HealthStatusUp},
		staticChecker{Name: "b", Status: HealthStatusDegraded},
	)
	if sh.Status != HealthStatusDegraded || len(sh.Components) != 2 {
		t.Errorf("got %+v", sh)
	}
	sh.Add(Health{Name: "c", Status: HealthStatusDown})
	sh.Add(Health{Name: "d", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Errorf("got %s, want down", sh.Status)
	}
}
