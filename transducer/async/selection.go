package async

import (
	"context"

	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/internal/check"
)

// Take passes the first limit items and then requests termination.
func Take[A, T any](limit int) Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &take[A, T]{link: newLink(next), limit: limit}
	}
}

type take[A, T any] struct {
	link[A, T]
	limit int
	seen  int
}

func (t *take[A, T]) Initial(ctx context.Context) (A, error) {
	t.seen = 0
	return t.next.Initial(ctx)
}

func (t *take[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	if t.limit <= 0 {
		return transducer.Reduced(acc), nil
	}
	t.seen++
	res, err := t.next.Step(ctx, acc, item)
	if err != nil || t.seen < t.limit {
		return res, err
	}
	return ensureReduced(res), nil
}

// Drop skips the first limit items.
func Drop[A, T any](limit int) Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &drop[A, T]{link: newLink(next), limit: limit}
	}
}

type drop[A, T any] struct {
	link[A, T]
	limit   int
	dropped int
}

func (d *drop[A, T]) Initial(ctx context.Context) (A, error) {
	d.dropped = 0
	return d.next.Initial(ctx)
}

func (d *drop[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	if d.dropped < d.limit {
		d.dropped++
		return transducer.Continue(acc), nil
	}
	return d.next.Step(ctx, acc, item)
}

// FirstTrue passes the first item satisfying pred, or the first truthy item
// when pred is nil, and then terminates.
func FirstTrue[A, T any](pred func(context.Context, T) (bool, error)) Transducer[A, T, T] {
	if pred == nil {
		pred = func(_ context.Context, item T) (bool, error) { return transducer.Truthy(item), nil }
	}
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &firstTrue[A, T]{link: newLink(next), pred: pred}
	}
}

type firstTrue[A, T any] struct {
	link[A, T]
	pred func(context.Context, T) (bool, error)
}

func (f *firstTrue[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	ok, err := f.pred(ctx, item)
	if err != nil || !ok {
		return transducer.Continue(acc), err
	}
	res, err := f.next.Step(ctx, acc, item)
	if err != nil {
		return res, err
	}
	return ensureReduced(res), nil
}

// Nth passes only the n-th item (1-indexed), or def if the source is shorter.
//
// Positions below one are rejected with INVALID_CONFIG rather than accepted
// as a position that never matches; such a pipeline would always yield an
// empty result and never step def.
func Nth[A, T any](n int, def T) (Transducer[A, T, T], error) {
	if err := check.Position(n); err != nil {
		return nil, err
	}
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &nth[A, T]{link: newLink(next), n: n, def: def}
	}, nil
}

type nth[A, T any] struct {
	link[A, T]
	n    int
	def  T
	seen int
}

func (x *nth[A, T]) Initial(ctx context.Context) (A, error) {
	x.seen = 0
	return x.next.Initial(ctx)
}

func (x *nth[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	x.seen++
	if x.seen < x.n {
		return transducer.Continue(acc), nil
	}
	res, err := x.next.Step(ctx, acc, item)
	if err != nil {
		return res, err
	}
	return ensureReduced(res), nil
}

func (x *nth[A, T]) Complete(ctx context.Context, acc A) (A, error) {
	if x.seen < x.n {
		res, err := x.next.Step(ctx, acc, x.def)
		if err != nil {
			return acc, err
		}
		acc = res.Value()
	}
	return x.next.Complete(ctx, acc)
}

// ExpectingSingle fails unless the source yields exactly one item.
func ExpectingSingle[A, T any]() Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &expectingSingle[A, T]{link: newLink(next)}
	}
}

type expectingSingle[A, T any] struct {
	link[A, T]
	seen int
}

func (e *expectingSingle[A, T]) Initial(ctx context.Context) (A, error) {
	e.seen = 0
	return e.next.Initial(ctx)
}

func (e *expectingSingle[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	e.seen++
	if e.seen > 1 {
		return transducer.Continue(acc), transducer.TooManyItems(e.seen)
	}
	return e.next.Step(ctx, acc, item)
}

func (e *expectingSingle[A, T]) Complete(ctx context.Context, acc A) (A, error) {
	if e.seen == 0 {
		return acc, transducer.TooFewItems()
	}
	return e.next.Complete(ctx, acc)
}
