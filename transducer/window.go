package transducer

import "github.com/kbukum/transducekit/transducer/internal/window"

// Window is implemented by custom accumulators that TakeLast and DropLast
// should be able to trim. Slices and strings are handled without it.
type Window[A any] interface {
	Len() int
	Slice(lo, hi int) A
}

// WindowOption configures TakeLast and DropLast.
type WindowOption func(*windowOptions)

type windowOptions struct {
	passthrough bool
}

// WithPassthrough completes with the accumulator unchanged when it cannot be
// sliced, instead of failing with ErrNotSliceable.
func WithPassthrough() WindowOption {
	return func(o *windowOptions) { o.passthrough = true }
}

func applyWindowOptions(opts []WindowOption) windowOptions {
	var o windowOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TakeLast keeps only the trailing limit elements of the accumulator. Items
// flow downstream unchanged; the trim happens on Complete, before the
// downstream completes. A limit of zero or less empties the accumulator.
func TakeLast[A, T any](limit int, opts ...WindowOption) Transducer[A, T, T] {
	o := applyWindowOptions(opts)
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &trailing[A, T]{link: newLink(next), name: "take_last", limit: limit, opts: o, trim: window.Last[A]}
	}
}

// DropLast removes the trailing limit elements of the accumulator on
// Complete. A limit at or above the accumulated length empties it.
func DropLast[A, T any](limit int, opts ...WindowOption) Transducer[A, T, T] {
	o := applyWindowOptions(opts)
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &trailing[A, T]{link: newLink(next), name: "drop_last", limit: limit, opts: o, trim: window.DropLast[A]}
	}
}

type trailing[A, T any] struct {
	link[A, T]
	name  string
	limit int
	opts  windowOptions
	trim  func(A, int) (A, bool)
}

func (w *trailing[A, T]) Step(acc A, item T) (Result[A], error) {
	return w.next.Step(acc, item)
}

func (w *trailing[A, T]) Complete(acc A) (A, error) {
	trimmed, ok := w.trim(acc, w.limit)
	if !ok {
		if !w.opts.passthrough {
			return acc, NotSliceable(w.name, acc)
		}
		trimmed = acc
	}
	return w.next.Complete(trimmed)
}
