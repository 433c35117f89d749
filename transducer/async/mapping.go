package async

import (
	"context"

	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/internal/check"
)

// Mapping applies fn to every item before passing it downstream.
func Mapping[A, I, O any](fn func(context.Context, I) (O, error)) Transducer[A, I, O] {
	return func(next Reducer[A, O]) Reducer[A, I] {
		return &mapping[A, I, O]{link: newLink(next), fn: fn}
	}
}

type mapping[A, I, O any] struct {
	link[A, O]
	fn func(context.Context, I) (O, error)
}

func (m *mapping[A, I, O]) Step(ctx context.Context, acc A, item I) (transducer.Result[A], error) {
	out, err := m.fn(ctx, item)
	if err != nil {
		return transducer.Continue(acc), err
	}
	return m.next.Step(ctx, acc, out)
}

// Filtering passes downstream only the items for which pred holds.
func Filtering[A, T any](pred func(context.Context, T) (bool, error)) Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &filtering[A, T]{link: newLink(next), pred: pred}
	}
}

type filtering[A, T any] struct {
	link[A, T]
	pred func(context.Context, T) (bool, error)
}

func (f *filtering[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	ok, err := f.pred(ctx, item)
	if err != nil || !ok {
		return transducer.Continue(acc), err
	}
	return f.next.Step(ctx, acc, item)
}

// Enumerating tags each item with a running index starting at start.
func Enumerating[A, T any](start int) Transducer[A, T, transducer.Indexed[T]] {
	return func(next Reducer[A, transducer.Indexed[T]]) Reducer[A, T] {
		return &enumerating[A, T]{link: newLink(next), start: start, index: start}
	}
}

type enumerating[A, T any] struct {
	link[A, transducer.Indexed[T]]
	start int
	index int
}

func (e *enumerating[A, T]) Initial(ctx context.Context) (A, error) {
	e.index = e.start
	return e.next.Initial(ctx)
}

func (e *enumerating[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	idx := e.index
	e.index++
	return e.next.Step(ctx, acc, transducer.Indexed[T]{Index: idx, Value: item})
}

// Repeating passes every item downstream count times.
func Repeating[A, T any](count int) (Transducer[A, T, T], error) {
	if err := check.RepeatCount(count); err != nil {
		return nil, err
	}
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &repeating[A, T]{link: newLink(next), count: count}
	}, nil
}

type repeating[A, T any] struct {
	link[A, T]
	count int
}

func (r *repeating[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	res := transducer.Continue(acc)
	for range r.count {
		var err error
		res, err = r.next.Step(ctx, res.Value(), item)
		if err != nil || res.IsReduced() {
			return res, err
		}
	}
	return res, nil
}
