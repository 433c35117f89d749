package async

import (
	"context"

	"github.com/kbukum/transducekit/transducer"
)

// Reducer is the context-aware reducing contract.
type Reducer[A, T any] interface {
	Initial(ctx context.Context) (A, error)
	Step(ctx context.Context, acc A, item T) (transducer.Result[A], error)
	Complete(ctx context.Context, acc A) (A, error)
}

// Scoped is implemented by reducers holding resources for the length of a
// run. Transduce calls Enter before Initial and Exit on every exit path.
type Scoped interface {
	Enter(ctx context.Context) error
	Exit(ctx context.Context, err error) error
}

// Transducer wraps a downstream reducer consuming Out into one consuming In.
type Transducer[A, In, Out any] func(Reducer[A, Out]) Reducer[A, In]

type scope struct {
	next any
}

func (s scope) Enter(ctx context.Context) error {
	if sc, ok := s.next.(Scoped); ok {
		return sc.Enter(ctx)
	}
	return nil
}

func (s scope) Exit(ctx context.Context, err error) error {
	if sc, ok := s.next.(Scoped); ok {
		return sc.Exit(ctx, err)
	}
	return nil
}

type link[A, T any] struct {
	scope
	next Reducer[A, T]
}

func newLink[A, T any](next Reducer[A, T]) link[A, T] {
	return link[A, T]{scope: scope{next: next}, next: next}
}

func (l *link[A, T]) Initial(ctx context.Context) (A, error) { return l.next.Initial(ctx) }

func (l *link[A, T]) Complete(ctx context.Context, acc A) (A, error) {
	return l.next.Complete(ctx, acc)
}

// ReducerFuncs builds a Reducer from plain functions. Nil InitialFn and
// CompleteFn default to the zero accumulator and identity.
type ReducerFuncs[A, T any] struct {
	InitialFn  func(ctx context.Context) (A, error)
	StepFn     func(ctx context.Context, acc A, item T) (transducer.Result[A], error)
	CompleteFn func(ctx context.Context, acc A) (A, error)
}

func (f ReducerFuncs[A, T]) Initial(ctx context.Context) (A, error) {
	if f.InitialFn == nil {
		var zero A
		return zero, nil
	}
	return f.InitialFn(ctx)
}

func (f ReducerFuncs[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	return f.StepFn(ctx, acc, item)
}

func (f ReducerFuncs[A, T]) Complete(ctx context.Context, acc A) (A, error) {
	if f.CompleteFn == nil {
		return acc, nil
	}
	return f.CompleteFn(ctx, acc)
}

func ensureReduced[A any](r transducer.Result[A]) transducer.Result[A] {
	if r.IsReduced() {
		return r
	}
	return transducer.Reduced(r.Value())
}
