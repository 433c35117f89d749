package transducer

// Result is the value returned by Reducer.Step: an accumulator plus a flag
// telling the driver whether the reduction should stop.
type Result[A any] struct {
	acc     A
	reduced bool
}

// Continue wraps acc without requesting termination.
func Continue[A any](acc A) Result[A] {
	return Result[A]{acc: acc}
}

// Reduced wraps acc and requests that no further items be fed.
func Reduced[A any](acc A) Result[A] {
	return Result[A]{acc: acc, reduced: true}
}

// Value returns the wrapped accumulator.
func (r Result[A]) Value() A { return r.acc }

// IsReduced reports whether early termination was requested.
func (r Result[A]) IsReduced() bool { return r.reduced }

// Unreduced returns the same accumulator with the termination flag cleared.
func (r Result[A]) Unreduced() Result[A] {
	return Result[A]{acc: r.acc}
}

// ensureReduced marks r as reduced, keeping the downstream accumulator.
func ensureReduced[A any](r Result[A]) Result[A] {
	if r.reduced {
		return r
	}
	return Reduced(r.acc)
}
