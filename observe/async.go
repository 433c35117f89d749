package observe

import (
	"context"

	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/async"
)

// InstrumentAsync is Instrument for async pipelines. Downstream stages and
// their callbacks receive a context carrying the run span and run_id.
func InstrumentAsync[A, T any](pipeline string, opts ...Option) async.Transducer[A, T, T] {
	s := newSettings(opts)
	return func(next async.Reducer[A, T]) async.Reducer[A, T] {
		return &asyncProbe[A, T]{probe: probe{pipeline: pipeline, settings: s}, next: next}
	}
}

type asyncProbe[A, T any] struct {
	probe
	next async.Reducer[A, T]
}

// runCtx keeps cancellation of the caller's ctx while carrying run values.
func (p *asyncProbe[A, T]) runCtx(ctx context.Context) context.Context {
	if p.ctx == nil {
		return ctx
	}
	return mergeValues{Context: ctx, values: p.ctx}
}

func (p *asyncProbe[A, T]) Enter(ctx context.Context) error {
	p.start(ctx)
	if sc, ok := p.next.(async.Scoped); ok {
		if err := sc.Enter(p.runCtx(ctx)); err != nil {
			p.finish(err)
			return err
		}
	}
	return nil
}

func (p *asyncProbe[A, T]) Exit(ctx context.Context, err error) error {
	var exitErr error
	if sc, ok := p.next.(async.Scoped); ok {
		exitErr = sc.Exit(p.runCtx(ctx), err)
	}
	if err == nil {
		err = exitErr
	}
	p.finish(err)
	return exitErr
}

func (p *asyncProbe[A, T]) Initial(ctx context.Context) (A, error) {
	p.items, p.reduced = 0, false
	return p.next.Initial(p.runCtx(ctx))
}

func (p *asyncProbe[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	p.items++
	res, err := p.next.Step(p.runCtx(ctx), acc, item)
	if res.IsReduced() {
		p.reduced = true
	}
	return res, err
}

func (p *asyncProbe[A, T]) Complete(ctx context.Context, acc A) (A, error) {
	return p.next.Complete(p.runCtx(ctx), acc)
}

// mergeValues answers Value from values first, everything else from the
// embedded context.
type mergeValues struct {
	context.Context
	values context.Context
}

func (m mergeValues) Value(key any) any {
	if v := m.values.Value(key); v != nil {
		return v
	}
	return m.Context.Value(key)
}
