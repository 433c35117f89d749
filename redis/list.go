package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/async"
)

// ListOption configures ListSource.
type ListOption func(*listSource)

// WithBlock waits up to timeout for each item with BLPOP. The source ends
// when a wait expires.
func WithBlock(timeout time.Duration) ListOption {
	return func(s *listSource) { s.block = timeout }
}

// ListSource pops items from the head of the list at key until it is
// empty. Items popped are removed from Redis even if the run later fails.
func ListSource(c *Client, key string, opts ...ListOption) source.Iterator[string] {
	s := &listSource{client: c, key: key}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type listSource struct {
	client *Client
	key    string
	block  time.Duration
}

func (s *listSource) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var (
		val string
		err error
	)
	if s.block > 0 {
		var vals []string
		vals, err = s.client.rdb.BLPop(ctx, s.block, s.key).Result()
		if err == nil {
			val = vals[1]
		}
	} else {
		val, err = s.client.rdb.LPop(ctx, s.key).Result()
	}

	switch {
	case err == nil:
		return val, true, nil
	case errors.Is(err, goredis.Nil):
		return "", false, nil
	case ctx.Err() != nil:
		return "", false, ctx.Err()
	default:
		return "", false, apperrors.SourceFailed("redis", err).WithDetail("key", s.key)
	}
}

// Close leaves the client open; it belongs to the caller.
func (s *listSource) Close() error { return nil }

// PushOption configures Pushing.
type PushOption func(*pushOptions)

type pushOptions struct {
	batch int
	reset bool
}

// WithBatch buffers up to n items per RPUSH. Values below 1 mean 1.
func WithBatch(n int) PushOption {
	return func(o *pushOptions) { o.batch = n }
}

// WithReset deletes the list when the run starts.
func WithReset() PushOption {
	return func(o *pushOptions) { o.reset = true }
}

// Pushing returns a terminal reducer that appends every item to the list
// at key. The accumulator counts items written. Strings and byte slices are
// pushed as they are, anything else as JSON.
func Pushing[T any](c *Client, key string, opts ...PushOption) async.Reducer[int64, T] {
	o := pushOptions{batch: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.batch < 1 {
		o.batch = 1
	}
	return &pushing[T]{client: c, key: key, opts: o}
}

type pushing[T any] struct {
	client *Client
	key    string
	opts   pushOptions
	buf    []any
}

func (p *pushing[T]) Enter(ctx context.Context) error {
	p.buf = p.buf[:0]
	if !p.opts.reset {
		return nil
	}
	if err := p.client.rdb.Del(ctx, p.key).Err(); err != nil {
		return apperrors.SinkFailed("redis", err).WithDetail("key", p.key)
	}
	return nil
}

// Exit drops anything still buffered after a failed run.
func (p *pushing[T]) Exit(_ context.Context, err error) error {
	if err != nil && len(p.buf) > 0 {
		p.client.log.Warn("Discarding unpushed items", map[string]any{"key": p.key, "count": len(p.buf)})
		p.buf = p.buf[:0]
	}
	return nil
}

func (p *pushing[T]) Initial(context.Context) (int64, error) {
	p.buf = p.buf[:0]
	return 0, nil
}

func (p *pushing[T]) Step(ctx context.Context, acc int64, item T) (transducer.Result[int64], error) {
	v, err := encode(item)
	if err != nil {
		return transducer.Continue(acc), err
	}
	p.buf = append(p.buf, v)
	if len(p.buf) < p.opts.batch {
		return transducer.Continue(acc), nil
	}
	n, err := p.flush(ctx)
	return transducer.Continue(acc + n), err
}

func (p *pushing[T]) Complete(ctx context.Context, acc int64) (int64, error) {
	n, err := p.flush(ctx)
	return acc + n, err
}

func (p *pushing[T]) flush(ctx context.Context) (int64, error) {
	if len(p.buf) == 0 {
		return 0, nil
	}
	n := int64(len(p.buf))
	err := p.client.rdb.RPush(ctx, p.key, p.buf...).Err()
	p.buf = p.buf[:0]
	if err != nil {
		return 0, apperrors.SinkFailed("redis", err).WithDetail("key", p.key)
	}
	return n, nil
}

func encode(item any) (any, error) {
	switch v := item.(type) {
	case string, []byte:
		return v, nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return nil, apperrors.InvalidInput("item", "cannot encode as JSON").WithCause(err)
	}
	return string(data), nil
}
