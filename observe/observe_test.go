package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observability"
	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/async"
)

func jsonLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", buf)
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestInstrument_PassThrough(t *testing.T) {
	var buf bytes.Buffer
	xf := transducer.Compose(
		Logging[[]int, int]("evens", jsonLogger(&buf)),
		transducer.Filtering[[]int](transducer.LiftPredicate(func(n int) bool { return n%2 == 0 })),
	)
	got, err := transducer.Collect(xf, slices.Values([]int{1, 2, 3, 4}))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2, 4}) {
		t.Errorf("got %v, want [2 4]", got)
	}

	lines := logLines(t, &buf)
	last := lines[len(lines)-1]
	if last["message"] != "transduction finished" {
		t.Fatalf("got %v, want completion line", last["message"])
	}
	if last[logger.FieldItems] != float64(4) || last[logger.FieldPipeline] != "evens" {
		t.Errorf("unexpected completion fields %v", last)
	}
	if id, _ := last[logger.FieldRunID].(string); len(id) != 36 {
		t.Errorf("expected uuid run_id, got %v", last[logger.FieldRunID])
	}
}

func TestInstrument_FreshRunIDPerRun(t *testing.T) {
	var buf bytes.Buffer
	xf := Logging[[]int, int]("p", jsonLogger(&buf))
	for range 2 {
		if _, err := transducer.Collect(xf, slices.Values([]int{1})); err != nil {
			t.Fatal(err)
		}
	}
	ids := map[any]bool{}
	for _, l := range logLines(t, &buf) {
		if l["message"] == "transduction finished" {
			ids[l[logger.FieldRunID]] = true
		}
	}
	if len(ids) != 2 {
		t.Errorf("got %d distinct run ids, want 2", len(ids))
	}
}

func TestInstrument_ReducedAndError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	var buf bytes.Buffer

	xf := transducer.Compose(
		Instrument[[]int, int]("take", WithTracer(tp.Tracer("test")), WithLogger(jsonLogger(&buf)), WithRunID(func() string { return "fixed" })),
		transducer.Take[[]int, int](2),
	)
	if _, err := transducer.Collect(xf, slices.Values([]int{1, 2, 3})); err != nil {
		t.Fatal(err)
	}
	span := rec.Ended()[0]
	var status string
	for _, kv := range span.Attributes() {
		if string(kv.Key) == observability.AttrStatus {
			status = kv.Value.AsString()
		}
	}
	if status != observability.StatusReduced {
		t.Errorf("got status %q, want reduced", status)
	}

	boom := errors.New("boom")
	failing := transducer.Compose(
		Instrument[[]int, int]("fail", WithLogger(jsonLogger(&buf)), WithMetrics(mustMetrics(t))),
		transducer.Mapping[[]int](func(int) (int, error) { return 0, boom }),
	)
	if _, err := transducer.Collect(failing, slices.Values([]int{1})); err != boom {
		t.Fatalf("got %v, want boom unchanged", err)
	}
	lines := logLines(t, &buf)
	last := lines[len(lines)-1]
	if last["message"] != "transduction failed" || last[logger.FieldError] != "boom" {
		t.Errorf("unexpected failure line %v", last)
	}
}

func mustMetrics(t *testing.T) *observability.Metrics {
	t.Helper()
	m, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestInstrumentAsync_PropagatesRunContext(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	var seenRunID string
	var seenSpan bool
	xf := async.Compose(
		InstrumentAsync[[]int, int]("async", WithTracer(tp.Tracer("test")), WithRunID(func() string { return "run-42" })),
		async.Mapping[[]int](func(ctx context.Context, n int) (int, error) {
			seenRunID = logger.RunIDFromContext(ctx)
			seenSpan = trace.SpanContextFromContext(ctx).IsValid()
			return n, nil
		}),
	)
	got, err := async.Collect(context.Background(), xf, source.Range(0, 3))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %v", got)
	}
	if seenRunID != "run-42" || !seenSpan {
		t.Errorf("callback saw run_id=%q span=%v", seenRunID, seenSpan)
	}
	if len(rec.Ended()) != 1 {
		t.Errorf("got %d spans, want 1", len(rec.Ended()))
	}
}

func TestInstrumentAsync_Cancellation(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := async.Collect(ctx, InstrumentAsync[[]int, int]("c", WithLogger(jsonLogger(&buf))), source.Range(0, 3))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if !strings.Contains(buf.String(), "transduction failed") {
		t.Errorf("expected failure log, got %q", buf.String())
	}
}

func TestInstrumentAsync_ReusesContextRunID(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.ContextWithRunID(context.Background(), "from-request")
	if _, err := async.Collect(ctx, InstrumentAsync[[]int, int]("r", WithLogger(jsonLogger(&buf))), source.Range(0, 2)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"run_id":"from-request"`) {
		t.Errorf("expected the caller's run id in %q", buf.String())
	}
}

// refusingSink fails to acquire its resources in Enter.
type refusingSink struct{ err error }

func (s refusingSink) Enter() error            { return s.err }
func (s refusingSink) Exit(error) error        { return nil }
func (s refusingSink) Initial() ([]int, error) { return nil, nil }
func (s refusingSink) Step(acc []int, n int) (transducer.Result[[]int], error) {
	return transducer.Continue(append(acc, n)), nil
}
func (s refusingSink) Complete(acc []int) ([]int, error) { return acc, nil }

func (s refusingSink) async() async.Reducer[[]int, int] { return asyncRefusingSink{s} }

type asyncRefusingSink struct{ s refusingSink }

func (a asyncRefusingSink) Enter(context.Context) error       { return a.s.err }
func (a asyncRefusingSink) Exit(context.Context, error) error { return nil }
func (a asyncRefusingSink) Initial(context.Context) ([]int, error) {
	return nil, nil
}
func (a asyncRefusingSink) Step(_ context.Context, acc []int, n int) (transducer.Result[[]int], error) {
	return transducer.Continue(append(acc, n)), nil
}
func (a asyncRefusingSink) Complete(_ context.Context, acc []int) ([]int, error) { return acc, nil }

func TestInstrument_EnterFailureEndsRun(t *testing.T) {
	enterErr := errors.New("enter failed")
	sink := refusingSink{err: enterErr}

	for _, tc := range []struct {
		name string
		run  func(opts ...Option) error
	}{
		{"sync", func(opts ...Option) error {
			_, err := transducer.Transduce(Instrument[[]int, int]("p", opts...), slices.Values([]int{1}), sink)
			return err
		}},
		{"async", func(opts ...Option) error {
			_, err := async.Transduce(context.Background(), InstrumentAsync[[]int, int]("p", opts...), source.FromSlice([]int{1}), sink.async())
			return err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
			var buf bytes.Buffer

			err := tc.run(WithTracer(tp.Tracer("test")), WithLogger(jsonLogger(&buf)))
			if err != enterErr {
				t.Fatalf("got %v, want enter error", err)
			}
			if len(rec.Started()) != 1 || len(rec.Ended()) != 1 {
				t.Fatalf("started %d ended %d spans, want 1 and 1", len(rec.Started()), len(rec.Ended()))
			}
			if rec.Ended()[0].Status().Code != codes.Error {
				t.Errorf("got span status %v, want Error", rec.Ended()[0].Status())
			}
			lines := logLines(t, &buf)
			if last := lines[len(lines)-1]; last["message"] != "transduction failed" {
				t.Errorf("got %v, want failure line", last["message"])
			}
		})
	}
}

func TestInstrument_PanicMarksRunFailed(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	var buf bytes.Buffer

	xf := transducer.Compose(
		Instrument[[]int, int]("p", WithTracer(tp.Tracer("test")), WithLogger(jsonLogger(&buf))),
		transducer.Mapping[[]int](transducer.Lift(func(int) int { panic("bad item") })),
	)
	func() {
		defer func() { _ = recover() }()
		_, _ = transducer.Collect(xf, slices.Values([]int{1}))
	}()

	if len(rec.Ended()) != 1 {
		t.Fatalf("got %d ended spans, want 1", len(rec.Ended()))
	}
	if rec.Ended()[0].Status().Code != codes.Error {
		t.Errorf("got span status %v, want Error", rec.Ended()[0].Status())
	}
	lines := logLines(t, &buf)
	if last := lines[len(lines)-1]; last["message"] != "transduction failed" {
		t.Errorf("got %v, want failure line", last["message"])
	}
}
