package resilience

import (
	"context"

	"github.com/kbukum/transducekit/source"
)

// RetryingSource retries each Next of src under cfg. The source must leave
// its position unchanged when Next fails; sources that lose an item on
// failure should not be wrapped.
func RetryingSource[T any](src source.Iterator[T], cfg RetryConfig) source.Iterator[T] {
	cfg.ApplyDefaults()
	return &retryingSource[T]{src: src, cfg: cfg}
}

type retryingSource[T any] struct {
	src source.Iterator[T]
	cfg RetryConfig
}

type pulled[T any] struct {
	item T
	ok   bool
}

func (r *retryingSource[T]) Next(ctx context.Context) (T, bool, error) {
	p, err := Retry(ctx, r.cfg, func() (pulled[T], error) {
		item, ok, err := r.src.Next(ctx)
		return pulled[T]{item, ok}, err
	})
	return p.item, p.ok, err
}

func (r *retryingSource[T]) Close() error { return r.src.Close() }
