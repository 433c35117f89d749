package async

import (
	"context"

	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/transducer"
)

// Option configures a Transduce call.
type Option[A any] func(*runOptions[A])

type runOptions[A any] struct {
	init    A
	hasInit bool
}

// WithInit starts the reduction from acc instead of Initial's value.
// Initial is still called so stages reset.
func WithInit[A any](acc A) Option[A] {
	return func(o *runOptions[A]) {
		o.init = acc
		o.hasInit = true
	}
}

// Transduce builds xf(r) and reduces src through it, one item at a time.
//
// src is always closed before returning. A cancelled ctx surfaces through the
// source's Next and is returned after Exit has run. A Close error is reported
// only when the run itself succeeded.
func Transduce[A, T, U any](ctx context.Context, xf Transducer[A, T, U], src source.Iterator[T], r Reducer[A, U], opts ...Option[A]) (result A, err error) {
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var o runOptions[A]
	for _, opt := range opts {
		opt(&o)
	}

	p := xf(r)
	if sc, ok := p.(Scoped); ok {
		if err = sc.Enter(ctx); err != nil {
			return result, err
		}
		defer func() {
			if v := recover(); v != nil {
				_ = sc.Exit(ctx, transducer.Panicked(v))
				panic(v)
			}
			if exitErr := sc.Exit(ctx, err); exitErr != nil && err == nil {
				err = exitErr
			}
		}()
	}

	acc, err := p.Initial(ctx)
	if err != nil {
		return acc, err
	}
	if o.hasInit {
		acc = o.init
	}

	for {
		item, ok, nextErr := src.Next(ctx)
		if nextErr != nil {
			return acc, nextErr
		}
		if !ok {
			break
		}
		res, stepErr := p.Step(ctx, acc, item)
		acc = res.Value()
		if stepErr != nil {
			return acc, stepErr
		}
		if res.IsReduced() {
			break
		}
	}

	return p.Complete(ctx, acc)
}

// Collect reduces src through xf into a slice using Appending.
func Collect[T, U any](ctx context.Context, xf Transducer[[]U, T, U], src source.Iterator[T], opts ...Option[[]U]) ([]U, error) {
	return Transduce(ctx, xf, src, Appending[U](), opts...)
}
