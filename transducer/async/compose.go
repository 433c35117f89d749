package async

import "context"

// Identity returns a transducer that leaves the downstream reducer as is.
func Identity[A, T any]() Transducer[A, T, T] {
	return func(r Reducer[A, T]) Reducer[A, T] { return r }
}

// Compose joins two transducers so that Compose(f, g)(r) == f(g(r)).
func Compose[A, T, U, V any](f Transducer[A, T, U], g Transducer[A, U, V]) Transducer[A, T, V] {
	return func(r Reducer[A, V]) Reducer[A, T] {
		return f(g(r))
	}
}

// Chain composes type-preserving transducers in order.
func Chain[A, T any](xfs ...Transducer[A, T, T]) Transducer[A, T, T] {
	return func(r Reducer[A, T]) Reducer[A, T] {
		for i := len(xfs) - 1; i >= 0; i-- {
			r = xfs[i](r)
		}
		return r
	}
}

// Must panics on a configuration error.
func Must[A, T, U any](xf Transducer[A, T, U], err error) Transducer[A, T, U] {
	if err != nil {
		panic(err)
	}
	return xf
}

// Lift adapts a plain function to the async mapping callback shape.
func Lift[I, O any](fn func(I) O) func(context.Context, I) (O, error) {
	return func(_ context.Context, item I) (O, error) { return fn(item), nil }
}

// LiftPredicate adapts a plain predicate to the async predicate shape.
func LiftPredicate[T any](fn func(T) bool) func(context.Context, T) (bool, error) {
	return func(_ context.Context, item T) (bool, error) { return fn(item), nil }
}

// FromSync adapts a fallible sync callback so it can be shared with the
// sync operators.
func FromSync[I, O any](fn func(I) (O, error)) func(context.Context, I) (O, error) {
	return func(_ context.Context, item I) (O, error) { return fn(item) }
}
