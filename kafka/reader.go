package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/source"
)

// MessageReader is the subset of *kafka.Reader a MessageSource uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewReader creates a reader for topic. With a GroupID offsets are tracked
// by the group; without one it reads partition 0 from the first offset.
func NewReader(cfg Config, topic string, log *logger.Logger) (*kafkago.Reader, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka reader config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}

	dialer, err := newDialer(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka reader dialer: %w", err)
	}

	rlog := log.WithComponent("kafka.reader")
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             topic,
		GroupID:           cfg.GroupID,
		Dialer:            dialer,
		StartOffset:       kafkago.FirstOffset,
		MinBytes:          1,
		MaxBytes:          10e6,
		SessionTimeout:    parseDuration(cfg.SessionTimeout),
		HeartbeatInterval: parseDuration(cfg.HeartbeatInterval),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...any) {
			rlog.Error("reader: "+fmt.Sprintf(msg, args...), logger.Fields("topic", topic, "group_id", cfg.GroupID))
		}),
	})

	rlog.Info("Kafka reader initialized", logger.Fields("topic", topic, "group_id", cfg.GroupID, "brokers", cfg.Brokers))
	return reader, nil
}

// SourceOption configures MessageSource.
type SourceOption func(*Messages)

// WithIdleTimeout ends the source when no message arrives within d.
func WithIdleTimeout(d time.Duration) SourceOption {
	return func(s *Messages) { s.idle = d }
}

// WithoutCommit never commits offsets.
func WithoutCommit() SourceOption {
	return func(s *Messages) { s.commit = false }
}

// WithKeepOpen leaves the reader open when the source closes, so Commit can
// still run after the transduction has finished. The caller closes the reader.
func WithKeepOpen() SourceOption {
	return func(s *Messages) { s.keepOpen = true }
}

// WithLogger logs reader statistics when the source closes.
func WithLogger(l *logger.Logger) SourceOption {
	return func(s *Messages) { s.log = l }
}

// MessageSource adapts r into a source. Closing the source closes r unless
// WithKeepOpen is set.
//
// Offsets are never committed while reading. Call Commit once the results
// derived from the fetched messages have been delivered; a run that fails
// before that leaves them uncommitted and they are read again. Commits are
// skipped for a *kafka.Reader without a GroupID.
func MessageSource(r MessageReader, opts ...SourceOption) *Messages {
	s := &Messages{reader: r, commit: true}
	if rc, ok := r.(interface{ Config() kafkago.ReaderConfig }); ok {
		cfg := rc.Config()
		s.topic = cfg.Topic
		if cfg.GroupID == "" {
			s.commit = false
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Messages is the source returned by MessageSource.
type Messages struct {
	reader   MessageReader
	topic    string
	idle     time.Duration
	commit   bool
	keepOpen bool
	closed   bool
	log      *logger.Logger
	fetched  []kafkago.Message
}

func (s *Messages) Next(ctx context.Context) (Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, false, err
	}

	fetchCtx := ctx
	if s.idle > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.idle)
		defer cancel()
	}

	msg, err := s.reader.FetchMessage(fetchCtx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return Message{}, false, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded) && s.idle > 0:
		return Message{}, false, nil
	default:
		return Message{}, false, sourceError(s.topic, err)
	}

	if msg.Topic != "" {
		s.topic = msg.Topic
	}
	if s.commit {
		s.fetched = append(s.fetched, msg)
	}
	return FromKafkaMessage(msg), true, nil
}

// Commit commits every message fetched since the last Commit.
func (s *Messages) Commit(ctx context.Context) error {
	if len(s.fetched) == 0 {
		return nil
	}
	if s.closed && !s.keepOpen {
		return sourceError(s.topic, errors.New("commit after the reader was closed"))
	}
	if err := s.reader.CommitMessages(ctx, s.fetched...); err != nil {
		return sourceError(s.topic, err)
	}
	s.fetched = nil
	return nil
}

// Pending reports how many fetched messages await Commit.
func (s *Messages) Pending() int { return len(s.fetched) }

func (s *Messages) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if st, ok := s.reader.(interface{ Stats() kafkago.ReaderStats }); ok && s.log != nil {
		stats := st.Stats()
		s.log.Info("Kafka reader closing", logger.Fields(
			"topic", stats.Topic,
			"messages", stats.Messages,
			"errors", stats.Errors,
			"lag", stats.Lag,
			"uncommitted", len(s.fetched),
		))
	}
	if s.keepOpen {
		return nil
	}
	return s.reader.Close()
}

// DecodeJSON maps each message value to its decoded JSON form. A value that
// is not JSON fails the run with INVALID_INPUT.
func DecodeJSON(src source.Iterator[Message]) source.Iterator[any] {
	return &jsonSource{src: src}
}

type jsonSource struct {
	src source.Iterator[Message]
}

func (j *jsonSource) Next(ctx context.Context) (any, bool, error) {
	msg, ok, err := j.src.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	var v any
	if err := msg.UnmarshalValueJSON(&v); err != nil {
		return nil, false, apperrors.InvalidInput("value", "message is not JSON").
			WithCause(err).
			WithDetails(map[string]any{"topic": msg.Topic, "offset": msg.Offset})
	}
	return v, true, nil
}

func (j *jsonSource) Close() error { return j.src.Close() }
