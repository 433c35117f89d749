package transducer

import "github.com/kbukum/transducekit/transducer/internal/check"

// Take passes the first limit items and then requests termination. A limit
// of zero or less terminates on the first item without passing it.
func Take[A, T any](limit int) Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &take[A, T]{link: newLink(next), limit: limit}
	}
}

type take[A, T any] struct {
	link[A, T]
	limit int
	seen  int
}

func (t *take[A, T]) Initial() (A, error) {
	t.seen = 0
	return t.next.Initial()
}

func (t *take[A, T]) Step(acc A, item T) (Result[A], error) {
	if t.limit <= 0 {
		return Reduced(acc), nil
	}
	t.seen++
	res, err := t.next.Step(acc, item)
	if err != nil || t.seen < t.limit {
		return res, err
	}
	return ensureReduced(res), nil
}

// Drop skips the first limit items and passes the rest.
func Drop[A, T any](limit int) Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &drop[A, T]{link: newLink(next), limit: limit}
	}
}

type drop[A, T any] struct {
	link[A, T]
	limit   int
	dropped int
}

func (d *drop[A, T]) Initial() (A, error) {
	d.dropped = 0
	return d.next.Initial()
}

func (d *drop[A, T]) Step(acc A, item T) (Result[A], error) {
	if d.dropped < d.limit {
		d.dropped++
		return Continue(acc), nil
	}
	return d.next.Step(acc, item)
}

// FirstTrue passes the first item satisfying pred and then terminates.
// A nil pred selects the first Truthy item.
func FirstTrue[A, T any](pred func(T) (bool, error)) Transducer[A, T, T] {
	if pred == nil {
		pred = func(item T) (bool, error) { return Truthy(item), nil }
	}
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &firstTrue[A, T]{link: newLink(next), pred: pred}
	}
}

type firstTrue[A, T any] struct {
	link[A, T]
	pred func(T) (bool, error)
}

func (f *firstTrue[A, T]) Step(acc A, item T) (Result[A], error) {
	ok, err := f.pred(item)
	if err != nil {
		return Continue(acc), err
	}
	if !ok {
		return Continue(acc), nil
	}
	res, err := f.next.Step(acc, item)
	if err != nil {
		return res, err
	}
	return ensureReduced(res), nil
}

// Nth passes only the n-th item (1-indexed) and then terminates. When the
// source ends before n items, def is passed instead during Complete.
//
// Positions below one are rejected with INVALID_CONFIG rather than accepted
// as a position that never matches; such a pipeline would always yield an
// empty result and never step def.
func Nth[A, T any](n int, def T) (Transducer[A, T, T], error) {
	if err := check.Position(n); err != nil {
		return nil, err
	}
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &nth[A, T]{link: newLink(next), n: n, def: def}
	}, nil
}

type nth[A, T any] struct {
	link[A, T]
	n    int
	def  T
	seen int
}

func (x *nth[A, T]) Initial() (A, error) {
	x.seen = 0
	return x.next.Initial()
}

func (x *nth[A, T]) Step(acc A, item T) (Result[A], error) {
	x.seen++
	if x.seen < x.n {
		return Continue(acc), nil
	}
	res, err := x.next.Step(acc, item)
	if err != nil {
		return res, err
	}
	return ensureReduced(res), nil
}

func (x *nth[A, T]) Complete(acc A) (A, error) {
	if x.seen < x.n {
		res, err := x.next.Step(acc, x.def)
		if err != nil {
			return acc, err
		}
		acc = res.Value()
	}
	return x.next.Complete(acc)
}

// ExpectingSingle enforces that the source yields exactly one item. A second
// item fails with ErrTooManyItems; an empty source fails on Complete with
// ErrTooFewItems.
func ExpectingSingle[A, T any]() Transducer[A, T, T] {
	return func(next Reducer[A, T]) Reducer[A, T] {
		return &expectingSingle[A, T]{link: newLink(next)}
	}
}

type expectingSingle[A, T any] struct {
	link[A, T]
	seen int
}

func (e *expectingSingle[A, T]) Initial() (A, error) {
	e.seen = 0
	return e.next.Initial()
}

func (e *expectingSingle[A, T]) Step(acc A, item T) (Result[A], error) {
	e.seen++
	if e.seen > 1 {
		return Continue(acc), TooManyItems(e.seen)
	}
	return e.next.Step(acc, item)
}

func (e *expectingSingle[A, T]) Complete(acc A) (A, error) {
	if e.seen == 0 {
		return acc, TooFewItems()
	}
	return e.next.Complete(acc)
}
