package observe

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observability"
	"github.com/kbukum/transducekit/transducer"
)

// Instrument returns a pass-through transducer observing each run.
func Instrument[A, T any](pipeline string, opts ...Option) transducer.Transducer[A, T, T] {
	s := newSettings(opts)
	return func(next transducer.Reducer[A, T]) transducer.Reducer[A, T] {
		return &syncProbe[A, T]{probe: probe{pipeline: pipeline, settings: s}, next: next}
	}
}

// Tracing instruments runs with a span only.
func Tracing[A, T any](pipeline string, tracer trace.Tracer) transducer.Transducer[A, T, T] {
	return Instrument[A, T](pipeline, WithTracer(tracer))
}

// Metrics instruments runs with metrics only.
func Metrics[A, T any](pipeline string, m *observability.Metrics) transducer.Transducer[A, T, T] {
	return Instrument[A, T](pipeline, WithMetrics(m))
}

// Logging instruments runs with log lines only.
func Logging[A, T any](pipeline string, l *logger.Logger) transducer.Transducer[A, T, T] {
	return Instrument[A, T](pipeline, WithLogger(l))
}

type syncProbe[A, T any] struct {
	probe
	next transducer.Reducer[A, T]
}

func (p *syncProbe[A, T]) Enter() error {
	p.start(p.parent)
	if sc, ok := p.next.(transducer.Scoped); ok {
		if err := sc.Enter(); err != nil {
			p.finish(err)
			return err
		}
	}
	return nil
}

func (p *syncProbe[A, T]) Exit(err error) error {
	var exitErr error
	if sc, ok := p.next.(transducer.Scoped); ok {
		exitErr = sc.Exit(err)
	}
	if err == nil {
		err = exitErr
	}
	p.finish(err)
	return exitErr
}

func (p *syncProbe[A, T]) Initial() (A, error) {
	p.items, p.reduced = 0, false
	return p.next.Initial()
}

func (p *syncProbe[A, T]) Step(acc A, item T) (transducer.Result[A], error) {
	p.items++
	res, err := p.next.Step(acc, item)
	if res.IsReduced() {
		p.reduced = true
	}
	return res, err
}

func (p *syncProbe[A, T]) Complete(acc A) (A, error) {
	return p.next.Complete(acc)
}
