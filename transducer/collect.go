package transducer

// Appending returns a terminal reducer that appends each item to a slice.
// The accumulator is extended in place.
func Appending[T any]() Reducer[[]T, T] {
	return appending[T]{}
}

type appending[T any] struct{}

func (appending[T]) Initial() ([]T, error) { return []T{}, nil }

func (appending[T]) Step(acc []T, item T) (Result[[]T], error) {
	return Continue(append(acc, item)), nil
}

func (appending[T]) Complete(acc []T) ([]T, error) { return acc, nil }

// Conjoining returns a terminal reducer that builds a fresh slice on every
// step. Earlier accumulators are never mutated or aliased.
func Conjoining[T any]() Reducer[[]T, T] {
	return conjoining[T]{}
}

type conjoining[T any] struct{}

func (conjoining[T]) Initial() ([]T, error) { return []T{}, nil }

func (conjoining[T]) Step(acc []T, item T) (Result[[]T], error) {
	next := make([]T, len(acc)+1)
	copy(next, acc)
	next[len(acc)] = item
	return Continue(next), nil
}

func (conjoining[T]) Complete(acc []T) ([]T, error) { return acc, nil }
