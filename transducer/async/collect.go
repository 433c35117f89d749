package async

import (
	"context"

	"github.com/kbukum/transducekit/transducer"
)

// Appending returns a terminal that appends each item to a slice in place.
func Appending[T any]() Reducer[[]T, T] {
	return appending[T]{}
}

type appending[T any] struct{}

func (appending[T]) Initial(context.Context) ([]T, error) { return []T{}, nil }

func (appending[T]) Step(_ context.Context, acc []T, item T) (transducer.Result[[]T], error) {
	return transducer.Continue(append(acc, item)), nil
}

func (appending[T]) Complete(_ context.Context, acc []T) ([]T, error) { return acc, nil }

// Conjoining returns a terminal that builds a new slice on every step.
func Conjoining[T any]() Reducer[[]T, T] {
	return conjoining[T]{}
}

type conjoining[T any] struct{}

func (conjoining[T]) Initial(context.Context) ([]T, error) { return []T{}, nil }

func (conjoining[T]) Step(_ context.Context, acc []T, item T) (transducer.Result[[]T], error) {
	next := make([]T, len(acc)+1)
	copy(next, acc)
	next[len(acc)] = item
	return transducer.Continue(next), nil
}

func (conjoining[T]) Complete(_ context.Context, acc []T) ([]T, error) { return acc, nil }
