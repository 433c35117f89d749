// Command transduce runs declarative transducer plans from the command line
// or serves them over HTTP.
//
//	transduce run -plans ./plans top-evens < numbers.jsonl
//	transduce run -in redis -in-key jobs -out kafka -out-key results enrich
//	transduce serve -config config.yml
//	transduce plans
//	transduce version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/transducekit/bootstrap"
	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observability"
	"github.com/kbukum/transducekit/observe"
	"github.com/kbukum/transducekit/plan"
	"github.com/kbukum/transducekit/version"
)

func main() {
	os.Exit(runWithArgs(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func runWithArgs(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "run":
		return runCommand(ctx, args[1:], stdin, stdout, stderr)
	case "serve":
		return serveCommand(ctx, args[1:], stderr)
	case "plans":
		return plansCommand(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.Get().String())
		return 0
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: transduce <command> [flags]

Commands:
  run <plan>   run a plan over JSON values and print the result
  serve        serve plans over HTTP
  plans        list the plans found in the plan directories
  version      print build information

Run "transduce <command> -h" for command flags.
`)
}

// reportError prints err and maps it to an exit code.
func reportError(stderr io.Writer, err error) int {
	appErr := apperrors.Wrap(err)
	if appErr.Code == apperrors.ErrCodeInternal && appErr.Cause != nil {
		fmt.Fprintf(stderr, "error: %v\n", appErr.Cause)
	} else {
		fmt.Fprintf(stderr, "error: %s\n", appErr.Error())
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

func newApp(cfg *AppConfig, stderr io.Writer) (*bootstrap.App[*AppConfig], error) {
	cfg.ApplyDefaults()
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, stderr)
	logger.SetGlobalLogger(log)
	return bootstrap.NewApp(cfg, bootstrap.WithLogger(log))
}

// telemetry installs the configured tracer and meter providers and returns
// the observe options every plan run is instrumented with.
func telemetry(ctx context.Context, app *bootstrap.App[*AppConfig]) ([]observe.Option, error) {
	cfg := app.Cfg
	opts := []observe.Option{observe.WithLogger(app.Logger)}

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			return nil, err
		}
		app.OnStop(tp.Shutdown)
	}
	opts = append(opts, observe.WithTracer(observability.Tracer()))

	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, cfg.Metrics)
		if err != nil {
			return nil, err
		}
		app.OnStop(mp.Shutdown)
		m, err := observability.NewMetrics(observability.Meter())
		if err != nil {
			return nil, err
		}
		opts = append(opts, observe.WithMetrics(m))
	}
	return opts, nil
}

func newEngine(cfg *AppConfig, opts []observe.Option) *plan.Engine {
	return plan.NewEngine(plan.Builtins(), plan.NewFileLoader(cfg.Plans.Dirs...), plan.WithObserve(opts...))
}

func plansCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("plans", stderr)
	configPath := fs.String("config", "", "path to config file")
	plansDirs := fs.String("plans", "", "comma-separated plan directories")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath, *plansDirs)
	if err != nil {
		return reportError(stderr, err)
	}
	cfg.ApplyDefaults()
	names, err := plan.NewFileLoader(cfg.Plans.Dirs...).List()
	if err != nil {
		return reportError(stderr, err)
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return 0
}
