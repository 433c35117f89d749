package transducer

import "iter"

// Option configures a Transduce call.
type Option[A any] func(*runOptions[A])

type runOptions[A any] struct {
	init    A
	hasInit bool
}

// WithInit starts the reduction from acc instead of the value returned by
// Initial. Initial is still called so every stage resets its state.
func WithInit[A any](acc A) Option[A] {
	return func(o *runOptions[A]) {
		o.init = acc
		o.hasInit = true
	}
}

// Transduce builds xf(r) and reduces src through it.
//
// Items are pulled one at a time. The first Reduced result stops the pull and
// the unwrapped accumulator is completed. Errors from any stage end the run
// and are returned unchanged. When the pipeline is Scoped, Enter runs before
// Initial and Exit runs on every exit path.
func Transduce[A, T, U any](xf Transducer[A, T, U], src iter.Seq[T], r Reducer[A, U], opts ...Option[A]) (result A, err error) {
	var o runOptions[A]
	for _, opt := range opts {
		opt(&o)
	}

	p := xf(r)
	if sc, ok := p.(Scoped); ok {
		if err = sc.Enter(); err != nil {
			return result, err
		}
		defer func() {
			if v := recover(); v != nil {
				_ = sc.Exit(Panicked(v))
				panic(v)
			}
			if exitErr := sc.Exit(err); exitErr != nil && err == nil {
				err = exitErr
			}
		}()
	}

	acc, err := p.Initial()
	if err != nil {
		return acc, err
	}
	if o.hasInit {
		acc = o.init
	}

	for item := range src {
		res, stepErr := p.Step(acc, item)
		acc = res.Value()
		if stepErr != nil {
			return acc, stepErr
		}
		if res.IsReduced() {
			break
		}
	}

	return p.Complete(acc)
}

// Collect reduces src through xf into a slice using Appending.
func Collect[T, U any](xf Transducer[[]U, T, U], src iter.Seq[T], opts ...Option[[]U]) ([]U, error) {
	return Transduce(xf, src, Appending[U](), opts...)
}
