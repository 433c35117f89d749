package transducer

// Reducer is the three-phase reducing contract every pipeline stage follows.
//
// Initial produces the starting accumulator and resets any per-run state, so
// a reducer value can be reused across runs. Step folds one item into the
// accumulator. Complete finalizes it, for example by flushing a buffer.
type Reducer[A, T any] interface {
	Initial() (A, error)
	Step(acc A, item T) (Result[A], error)
	Complete(acc A) (A, error)
}

// Scoped is implemented by reducers that acquire resources for the duration
// of a run. Transduce calls Enter before Initial and Exit on every exit path
// with the error the run is about to return.
type Scoped interface {
	Enter() error
	Exit(err error) error
}

// Transducer wraps a downstream reducer consuming Out into an upstream
// reducer consuming In. A is the accumulator type chosen by the terminal.
type Transducer[A, In, Out any] func(Reducer[A, Out]) Reducer[A, In]

// scope forwards the Scoped hooks to the wrapped reducer when it has them.
type scope struct {
	next any
}

func (s scope) Enter() error {
	if sc, ok := s.next.(Scoped); ok {
		return sc.Enter()
	}
	return nil
}

func (s scope) Exit(err error) error {
	if sc, ok := s.next.(Scoped); ok {
		return sc.Exit(err)
	}
	return nil
}

// link is embedded by every operator: it holds the downstream reducer and
// delegates the phases the operator does not override.
type link[A, T any] struct {
	scope
	next Reducer[A, T]
}

func newLink[A, T any](next Reducer[A, T]) link[A, T] {
	return link[A, T]{scope: scope{next: next}, next: next}
}

func (l *link[A, T]) Initial() (A, error) { return l.next.Initial() }

func (l *link[A, T]) Complete(acc A) (A, error) { return l.next.Complete(acc) }

// ReducerFuncs builds a Reducer from plain functions. A nil InitialFn yields
// the zero accumulator and a nil CompleteFn returns the accumulator as is.
type ReducerFuncs[A, T any] struct {
	InitialFn  func() (A, error)
	StepFn     func(acc A, item T) (Result[A], error)
	CompleteFn func(acc A) (A, error)
}

func (f ReducerFuncs[A, T]) Initial() (A, error) {
	if f.InitialFn == nil {
		var zero A
		return zero, nil
	}
	return f.InitialFn()
}

func (f ReducerFuncs[A, T]) Step(acc A, item T) (Result[A], error) {
	return f.StepFn(acc, item)
}

func (f ReducerFuncs[A, T]) Complete(acc A) (A, error) {
	if f.CompleteFn == nil {
		return acc, nil
	}
	return f.CompleteFn(acc)
}
