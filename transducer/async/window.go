package async

import (
	"context"

	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/internal/window"
)

// WindowOption configures TakeLast and DropLast.
type WindowOption func(*windowOptions)

type windowOptions struct {
	passthrough bool
}

// WithPassthrough leaves non-sliceable accumulators unchanged instead of
// failing with transducer.ErrNotSliceable.
func WithPassthrough() WindowOption {
	return func(o *windowOptions) { o.passthrough = true }
}

// TakeLast keeps the trailing limit elements of the accumulator on Complete.
func TakeLast[A, T any](limit int, opts ...WindowOption) Transducer[A, T, T] {
	return trailingWindow[A, T]("take_last", limit, window.Last[A], opts)
}

// DropLast removes the trailing limit elements of the accumulator on Complete.
func DropLast[A, T any](limit int, opts ...WindowOption) Transducer[A, T, T] {
	return trailingWindow[A, T]("drop_last", limit, window.DropLast[A], opts)
}

func trailingWindow[A, T any](name string, limit int, trim func(A, int) (A, bool), opts []WindowOption) Transducer[A, T, T] {
	var o windowOptions
	for _, opt := range opts {
		opt(&o)
	}
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &trailing[A, T]{link: newLink(next), name: name, limit: limit, passthrough: o.passthrough, trim: trim}
	}
}

type trailing[A, T any] struct {
	link[A, T]
	name        string
	limit       int
	passthrough bool
	trim        func(A, int) (A, bool)
}

func (w *trailing[A, T]) Step(ctx context.Context, acc A, item T) (transducer.Result[A], error) {
	return w.next.Step(ctx, acc, item)
}

func (w *trailing[A, T]) Complete(ctx context.Context, acc A) (A, error) {
	trimmed, ok := w.trim(acc, w.limit)
	if !ok {
		if !w.passthrough {
			return acc, transducer.NotSliceable(w.name, acc)
		}
		trimmed = acc
	}
	return w.next.Complete(ctx, trimmed)
}
