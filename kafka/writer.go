package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/async"
)

// MessageWriter is the subset of *kafka.Writer Publishing uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NewWriter creates a writer bound to topic.
func NewWriter(cfg Config, topic string, log *logger.Logger) (*kafkago.Writer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka writer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}

	transport, err := newTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka writer transport: %w", err)
	}

	wlog := log.WithComponent("kafka.writer")
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        topic,
		Transport:    transport,
		Balancer:     &kafkago.LeastBytes{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: parseDuration(cfg.BatchTimeout),
		WriteTimeout: parseDuration(cfg.WriteTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  compression(cfg.Compression),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...any) {
			wlog.Error("writer: "+fmt.Sprintf(msg, args...), logger.Fields("topic", topic))
		}),
	}
	wlog.Info("Kafka writer initialized", logger.Fields("topic", topic, "brokers", cfg.Brokers))
	return w, nil
}

// PublishOption configures Publishing.
type PublishOption func(*publishOptions)

type publishOptions struct {
	batch int
	key   func(any) string
}

// WithBatchSize buffers up to n messages per write. Values below 1 mean 1.
func WithBatchSize(n int) PublishOption {
	return func(o *publishOptions) { o.batch = n }
}

// WithKey derives each message key from its item.
func WithKey(fn func(any) string) PublishOption {
	return func(o *publishOptions) { o.key = fn }
}

// Publishing returns a terminal reducer that writes every item as a JSON
// message. The accumulator counts messages written.
func Publishing[T any](w MessageWriter, topic string, opts ...PublishOption) async.Reducer[int64, T] {
	o := publishOptions{batch: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.batch < 1 {
		o.batch = 1
	}
	return &publishing[T]{writer: w, topic: topic, opts: o}
}

type publishing[T any] struct {
	writer MessageWriter
	topic  string
	opts   publishOptions
	buf    []kafkago.Message
}

func (p *publishing[T]) Initial(context.Context) (int64, error) {
	p.buf = p.buf[:0]
	return 0, nil
}

func (p *publishing[T]) Step(ctx context.Context, acc int64, item T) (transducer.Result[int64], error) {
	value, err := json.Marshal(item)
	if err != nil {
		return transducer.Continue(acc), apperrors.InvalidInput("item", "cannot encode as JSON").WithCause(err)
	}
	msg := kafkago.Message{
		Value:   value,
		Headers: []kafkago.Header{{Key: "content-type", Value: []byte("application/json")}},
	}
	if p.opts.key != nil {
		msg.Key = []byte(p.opts.key(item))
	}
	p.buf = append(p.buf, msg)
	if len(p.buf) < p.opts.batch {
		return transducer.Continue(acc), nil
	}
	n, err := p.flush(ctx)
	return transducer.Continue(acc + n), err
}

func (p *publishing[T]) Complete(ctx context.Context, acc int64) (int64, error) {
	n, err := p.flush(ctx)
	return acc + n, err
}

func (p *publishing[T]) flush(ctx context.Context) (int64, error) {
	if len(p.buf) == 0 {
		return 0, nil
	}
	n := int64(len(p.buf))
	err := p.writer.WriteMessages(ctx, p.buf...)
	p.buf = p.buf[:0]
	if err != nil {
		return 0, sinkError(p.topic, err)
	}
	return n, nil
}
