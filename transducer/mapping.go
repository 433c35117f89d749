package transducer

import "github.com/kbukum/transducekit/transducer/internal/check"

// Mapping applies fn to every item before passing it downstream.
// An error from fn stops the run and is returned unchanged.
func Mapping[A, I, O any](fn func(I) (O, error)) Transducer[A, I, O] {
	return func(next Reducer[A, O]) Reducer[A, I] {
		return &mapping[A, I, O]{link: newLink(next), fn: fn}
	}
}

type mapping[A, I, O any] struct {
	link[A, O]
	fn func(I) (O, error)
}

func (m *mapping[A, I, O]) Step(acc A, item I) (Result[A], error) {
	out, err := m.fn(item)
	if err != nil {
		return Continue(acc), err
	}
	return m.next.Step(acc, out)
}

// Filtering passes downstream only the items for which pred holds.
func Filtering[A, T any](pred func(T) (bool, error)) Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &filtering[A, T]{link: newLink(next), pred: pred}
	}
}

type filtering[A, T any] struct {
	link[A, T]
	pred func(T) (bool, error)
}

func (f *filtering[A, T]) Step(acc A, item T) (Result[A], error) {
	ok, err := f.pred(item)
	if err != nil {
		return Continue(acc), err
	}
	if !ok {
		return Continue(acc), nil
	}
	return f.next.Step(acc, item)
}

// Indexed pairs an item with its position, as emitted by Enumerating.
type Indexed[T any] struct {
	Index int `json:"index"`
	Value T   `json:"value"`
}

// Enumerating tags each item with a running index beginning at start.
// The index restarts on every Initial.
func Enumerating[A, T any](start int) Transducer[A, T, Indexed[T]] {
	return func(next Reducer[A, Indexed[T]]) Reducer[A, T] {
		return &enumerating[A, T]{link: newLink(next), start: start, index: start}
	}
}

type enumerating[A, T any] struct {
	link[A, Indexed[T]]
	start int
	index int
}

func (e *enumerating[A, T]) Initial() (A, error) {
	e.index = e.start
	return e.next.Initial()
}

func (e *enumerating[A, T]) Step(acc A, item T) (Result[A], error) {
	idx := e.index
	e.index++
	return e.next.Step(acc, Indexed[T]{Index: idx, Value: item})
}

// Repeating passes every item downstream count times. A zero count drops all
// items; a negative count is a configuration error.
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

func (r *repeating[A, T]) Step(acc A, item T) (Result[A], error) {
	res := Continue(acc)
	for range r.count {
		var err error
		res, err = r.next.Step(res.Value(), item)
		if err != nil || res.IsReduced() {
			return res, err
		}
	}
	return res, nil
}
