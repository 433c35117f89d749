package transducer

// Identity returns a transducer that hands the downstream reducer back
// unchanged.
func Identity[A, T any]() Transducer[A, T, T] {
	return func(r Reducer[A, T]) Reducer[A, T] { return r }
}

// Compose joins two transducers so that Compose(f, g)(r) == f(g(r)).
// Items flow through f first, then g.
func Compose[A, T, U, V any](f Transducer[A, T, U], g Transducer[A, U, V]) Transducer[A, T, V] {
	return func(r Reducer[A, V]) Reducer[A, T] {
		return f(g(r))
	}
}

// Chain composes any number of type-preserving transducers in order.
// With no arguments it returns Identity.
func Chain[A, T any](xfs ...Transducer[A, T, T]) Transducer[A, T, T] {
	return func(r Reducer[A, T]) Reducer[A, T] {
		for i := len(xfs) - 1; i >= 0; i-- {
			r = xfs[i](r)
		}
		return r
	}
}

// Must unwraps a factory result and panics on a configuration error.
// Intended for pipelines built from constants.
func Must[A, T, U any](xf Transducer[A, T, U], err error) Transducer[A, T, U] {
	if err != nil {
		panic(err)
	}
	return xf
}

// Lift adapts an infallible function to the callback shape used by Mapping.
func Lift[I, O any](fn func(I) O) func(I) (O, error) {
	return func(item I) (O, error) { return fn(item), nil }
}

// LiftPredicate adapts a plain predicate for Filtering and FirstTrue.
func LiftPredicate[T any](fn func(T) bool) func(T) (bool, error) {
	return func(item T) (bool, error) { return fn(item), nil }
}
