package source

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Func adapts a plain function to Iterator. Close is a no-op.
type Func[T any] func(ctx context.Context) (T, bool, error)

func (f Func[T]) Next(ctx context.Context) (T, bool, error) { return f(ctx) }

func (f Func[T]) Close() error { return nil }

// FromSlice yields the items of a slice in order.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// FromFunc yields values produced by fn until it reports exhaustion.
func FromFunc[T any](fn func(ctx context.Context) (T, bool, error)) Iterator[T] {
	return Func[T](fn)
}

// FromSeq adapts a range-over-func sequence. Close stops the underlying
// sequence if it has not been drained.
func FromSeq[T any](seq iter.Seq[T]) Iterator[T] {
	next, stop := iter.Pull(seq)
	return &seqIter[T]{next: next, stop: stop}
}

// FromChannel yields values received from ch until it is closed. The optional
// closer runs on Close, typically to stop the producer.
func FromChannel[T any](ch <-chan T, closer func() error) Iterator[T] {
	return &channelIter[T]{ch: ch, closer: closer}
}

// Range yields the integers in [start, stop).
func Range(start, stop int) Iterator[int] {
	return &rangeIter{next: start, stop: stop}
}

// Collect pulls every value from it and closes it.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// Drain pulls all values and sends each to sink, closing it afterwards.
func Drain[T any](ctx context.Context, it Iterator[T], sink func(context.Context, T) error) error {
	defer it.Close()
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := sink(ctx, val); err != nil {
			return err
		}
	}
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if it.index >= len(it.items) {
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type seqIter[T any] struct {
	next func() (T, bool)
	stop func()
}

func (it *seqIter[T]) Next(ctx context.Context) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	val, ok := it.next()
	return val, ok, nil
}

func (it *seqIter[T]) Close() error {
	it.stop()
	return nil
}

type channelIter[T any] struct {
	ch     <-chan T
	closer func() error
}

func (it *channelIter[T]) Next(ctx context.Context) (T, bool, error) {
	select {
	case v, open := <-it.ch:
		return v, open, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

func (it *channelIter[T]) Close() error {
	if it.closer != nil {
		return it.closer()
	}
	return nil
}

type rangeIter struct {
	next, stop int
}

func (it *rangeIter) Next(ctx context.Context) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if it.next >= it.stop {
		return 0, false, nil
	}
	v := it.next
	it.next++
	return v, true, nil
}

func (it *rangeIter) Close() error { return nil }
