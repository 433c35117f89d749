package transducer

import "github.com/kbukum/transducekit/transducer/internal/check"

// Batching groups consecutive items into slices of size items. A trailing
// partial batch is flushed on Complete. Size must be at least 1.
func Batching[A, T any](size int) (Transducer[A, T, []T], error) {
	if err := check.BatchSize(size); err != nil {
		return nil, err
	}
	return func(next Reducer[A, []T]) Reducer[A, T] {
		return &batching[A, T]{link: newLink(next), size: size}
	}, nil
}

type batching[A, T any] struct {
	link[A, []T]
	size  int
	batch []T
}

func (b *batching[A, T]) Initial() (A, error) {
	b.batch = make([]T, 0, b.size)
	return b.next.Initial()
}

func (b *batching[A, T]) Step(acc A, item T) (Result[A], error) {
	b.batch = append(b.batch, item)
	if len(b.batch) < b.size {
		return Continue(acc), nil
	}
	full := b.batch
	b.batch = make([]T, 0, b.size)
	return b.next.Step(acc, full)
}

func (b *batching[A, T]) Complete(acc A) (A, error) {
	if len(b.batch) > 0 {
		partial := b.batch
		b.batch = nil
		res, err := b.next.Step(acc, partial)
		if err != nil {
			return acc, err
		}
		acc = res.Value()
	}
	return b.next.Complete(acc)
}
