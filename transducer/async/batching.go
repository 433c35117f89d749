package async

import (
	"context"

	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/internal/check"
)

// Batching groups consecutive items into slices of size items and flushes a
// trailing partial batch on Complete.
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

func (b *batching[A, T]) Initial(ctx context.Context) (A, error) {
	b.batch = make([]T, 0, b.size)
	return b.next.Initial(ctx)
}

func (b *batching[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	b.batch = append(b.batch, item)
	if len(b.batch) < b.size {
		return transducer.Continue(acc), nil
	}
	full := b.batch
	b.batch = make([]T, 0, b.size)
	return b.next.Step(ctx, acc, full)
}

func (b *batching[A, T]) Complete(ctx context.Context, acc A) (A, error) {
	if len(b.batch) > 0 {
		partial := b.batch
		b.batch = nil
		res, err := b.next.Step(ctx, acc, partial)
		if err != nil {
			return acc, err
		}
		acc = res.Value()
	}
	return b.next.Complete(ctx, acc)
}
