package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/kafka"
	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/redis"
	"github.com/kbukum/transducekit/resilience"
	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/transducer/async"
)

type runFlags struct {
	config  string
	plans   string
	in      string
	inKey   string
	out     string
	outKey  string
	block   time.Duration
	timeout time.Duration
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f runFlags
	fs := newFlagSet("run", stderr)
	fs.StringVar(&f.config, "config", "", "path to config file")
	fs.StringVar(&f.plans, "plans", "", "comma-separated plan directories")
	fs.StringVar(&f.in, "in", "stdin", "input: stdin, redis or kafka")
	fs.StringVar(&f.inKey, "in-key", "", "redis list key or kafka topic to read")
	fs.StringVar(&f.out, "out", "stdout", "output: stdout, redis or kafka")
	fs.StringVar(&f.outKey, "out-key", "", "redis list key or kafka topic to write")
	fs.DurationVar(&f.block, "block", 0, "wait up to this long for each redis item")
	fs.DurationVar(&f.timeout, "timeout", 0, "abort the run after this long")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: transduce run [flags] <plan>")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Reads JSON values (one per line on stdin by default), runs the plan and")
		fmt.Fprintln(stderr, "writes the result.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "error: exactly one plan name is required")
		fs.Usage()
		return 2
	}
	if err := f.validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	name := fs.Arg(0)

	cfg, err := loadConfig(f.config, f.plans)
	if err != nil {
		return reportError(stderr, err)
	}
	if f.uses("redis") {
		cfg.Redis.Enabled = true
	}
	if f.uses("kafka") {
		cfg.Kafka.Enabled = true
	}
	app, err := newApp(cfg, stderr)
	if err != nil {
		return reportError(stderr, err)
	}
	opts, err := telemetry(ctx, app)
	if err != nil {
		return reportError(stderr, err)
	}
	engine := newEngine(cfg, opts)

	var client *redis.Client
	if f.uses("redis") {
		if client, err = redis.New(cfg.Redis, app.Logger); err != nil {
			return reportError(stderr, err)
		}
		app.RegisterHealth(client)
		app.OnStop(func(context.Context) error { return client.Close() })
	}

	err = app.RunTask(ctx, func(ctx context.Context) error {
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}

		in, err := f.source(cfg, client, stdin, app.Logger)
		if err != nil {
			return err
		}
		defer in.release()
		result, err := engine.RunAsync(ctx, name, in.src)
		if err != nil {
			return err
		}
		if err := f.emit(ctx, cfg, client, result, stdout, app.Logger); err != nil {
			return err
		}
		return in.ack(ctx)
	})
	if err != nil {
		return reportError(stderr, err)
	}
	return 0
}

func (f *runFlags) uses(kind string) bool {
	return f.in == kind || f.out == kind
}

func (f *runFlags) validate() error {
	switch f.in {
	case "stdin":
	case "redis", "kafka":
		if f.inKey == "" {
			return fmt.Errorf("-in %s requires -in-key", f.in)
		}
	default:
		return fmt.Errorf("unknown input %q", f.in)
	}
	switch f.out {
	case "stdout":
	case "redis", "kafka":
		if f.outKey == "" {
			return fmt.Errorf("-out %s requires -out-key", f.out)
		}
	default:
		return fmt.Errorf("unknown output %q", f.out)
	}
	return nil
}

// input is a run's source plus what settles it once the results are
// delivered.
type input struct {
	src     source.Iterator[any]
	ack     func(context.Context) error
	release func() error
}

func (f *runFlags) source(cfg *AppConfig, client *redis.Client, stdin io.Reader, log *logger.Logger) (input, error) {
	in := input{
		ack:     func(context.Context) error { return nil },
		release: func() error { return nil },
	}
	switch f.in {
	case "redis":
		var opts []redis.ListOption
		if f.block > 0 {
			opts = append(opts, redis.WithBlock(f.block))
		}
		in.src = resilience.RetryingSource(decodeStrings(redis.ListSource(client, f.inKey, opts...)), f.retry(cfg, log))
	case "kafka":
		reader, err := kafka.NewReader(cfg.Kafka, f.inKey, log)
		if err != nil {
			return in, err
		}
		msgs := kafka.MessageSource(reader, kafka.WithLogger(log), kafka.WithKeepOpen())
		in.src = kafka.DecodeJSON(resilience.RetryingSource[kafka.Message](msgs, f.retry(cfg, log)))
		in.ack = func(ctx context.Context) error {
			n := msgs.Pending()
			if err := msgs.Commit(ctx); err != nil {
				return err
			}
			log.Info("Offsets committed", logger.Fields("topic", f.inKey, "messages", n))
			return nil
		}
		in.release = reader.Close
	default:
		in.src = jsonLines(stdin)
	}
	return in, nil
}

func (f *runFlags) retry(cfg *AppConfig, log *logger.Logger) resilience.RetryConfig {
	rc := cfg.Retry
	rc.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn("Input read failed, retrying", logger.Fields(
			"input", f.in, "attempt", attempt, "backoff", wait.String(), logger.FieldError, err.Error(),
		))
	}
	return rc
}

func (f *runFlags) emit(ctx context.Context, cfg *AppConfig, client *redis.Client, result []any, stdout io.Writer, log *logger.Logger) error {
	switch f.out {
	case "redis":
		n, err := async.Transduce(ctx, async.Identity[int64, any](), source.FromSlice(result), redis.Pushing[any](client, f.outKey))
		if err != nil {
			return err
		}
		log.Info("Results pushed", logger.Fields("key", f.outKey, "count", n))
		return nil
	case "kafka":
		writer, err := kafka.NewWriter(cfg.Kafka, f.outKey, log)
		if err != nil {
			return err
		}
		defer writer.Close()
		n, err := async.Transduce(ctx, async.Identity[int64, any](), source.FromSlice(result),
			kafka.Publishing[any](writer, f.outKey, kafka.WithBatchSize(cfg.Kafka.BatchSize)))
		if err != nil {
			return err
		}
		log.Info("Results published", logger.Fields("topic", f.outKey, "count", n))
		return nil
	default:
		enc := json.NewEncoder(stdout)
		return enc.Encode(result)
	}
}

// jsonLines reads whitespace-separated JSON values from r.
func jsonLines(r io.Reader) source.Iterator[any] {
	dec := json.NewDecoder(r)
	return source.FromFunc(func(ctx context.Context) (any, bool, error) {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, false, nil
			}
			return nil, false, apperrors.InvalidInput("stdin", "malformed JSON value").WithCause(err)
		}
		return v, true, nil
	})
}

// decodeStrings parses each string as JSON, keeping strings that are not
// JSON as they are.
func decodeStrings(src source.Iterator[string]) source.Iterator[any] {
	return &decodedStrings{src: src}
}

type decodedStrings struct {
	src source.Iterator[string]
}

func (d *decodedStrings) Next(ctx context.Context) (any, bool, error) {
	s, ok, err := d.src.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	var v any
	if json.Unmarshal([]byte(s), &v) != nil {
		return s, true, nil
	}
	return v, true, nil
}

func (d *decodedStrings) Close() error { return d.src.Close() }
