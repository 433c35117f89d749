// Package observe provides pass-through operators that instrument a
// transduction without changing its items.
//
// Place Instrument (or one of Tracing, Metrics, Logging) first in a chain so
// it sees every pulled item. Each run gets a run_id (the one already in the
// context, or a fresh uuid), a span as a child of the caller's span, run
// metrics and a completion log line.
//
//	xf := transducer.Compose(
//	    observe.Instrument[[]int, int]("evens", observe.WithLogger(log), observe.WithMetrics(m)),
//	    transducer.Filtering[[]int](isEven),
//	)
package observe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observability"
)

// Option configures an instrumenting operator.
type Option func(*settings)

type settings struct {
	tracer  trace.Tracer
	metrics *observability.Metrics
	log     *logger.Logger
	parent  context.Context
	newID   func() string
}

// WithTracer emits one span per run.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

// WithMetrics records run metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithLogger logs run start at debug level and completion at info, or error
// on failure.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithParent sets the context sync runs derive their span from. Async runs
// use the context passed to Enter.
func WithParent(ctx context.Context) Option {
	return func(s *settings) { s.parent = ctx }
}

// WithRunID overrides run id generation.
func WithRunID(fn func() string) Option {
	return func(s *settings) { s.newID = fn }
}

func newSettings(opts []Option) settings {
	s := settings{parent: context.Background(), newID: uuid.NewString}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// probe is the per-run state shared by the sync and async reducers.
type probe struct {
	pipeline string
	settings
	ctx     context.Context
	run     *observability.Run
	items   int
	reduced bool
}

func (p *probe) start(ctx context.Context) {
	p.items, p.reduced = 0, false
	id := logger.RunIDFromContext(ctx)
	if id == "" {
		id = p.newID()
		ctx = logger.ContextWithRunID(ctx, id)
	}
	p.ctx, p.run = observability.StartRun(ctx, p.tracer, p.metrics, p.pipeline, id)
	if tid := observability.TraceID(p.ctx); tid != "" {
		p.ctx = logger.ContextWithTraceID(p.ctx, tid)
	}
	if p.log != nil {
		p.log.WithContext(p.ctx).Debug("transduction started", logger.Fields(logger.FieldPipeline, p.pipeline))
	}
}

func (p *probe) finish(err error) {
	if p.run == nil {
		return
	}
	p.run.End(p.ctx, p.items, p.reduced, err)
	if p.log != nil {
		fields := logger.RunFields(p.pipeline, p.items, p.reduced, time.Since(p.run.Start))
		l := p.log.WithContext(p.ctx)
		if err != nil {
			l.Error("transduction failed", logger.MergeWithError(fields, err))
		} else {
			l.Info("transduction finished", fields)
		}
	}
	p.run = nil
}
