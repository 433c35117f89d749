package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observability"
)

// Component is infrastructure the App starts and stops.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// App is a binary with uniform lifecycle management. C is the typed config.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	components []Component
	started    []Component
	checkers   []observability.HealthChecker

	gracefulTimeout time.Duration
	signals         bool

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates the config and sets up the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := resolveOptions(opts)
	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		signals:         o.signals,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// RegisterComponent adds a component. Components start in registration order
// and stop in reverse.
func (a *App[C]) RegisterComponent(c Component) {
	a.components = append(a.components, c)
}

// RegisterHealth adds checkers consulted by ReadyCheck.
func (a *App[C]) RegisterHealth(checkers ...observability.HealthChecker) {
	a.checkers = append(a.checkers, checkers...)
}

// ReadyCheck fails when any registered checker is down.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	sh := observability.CheckAll(ctx, a.Name, a.Version, a.checkers...)
	var down []string
	for _, h := range sh.Components {
		if h.Status == observability.HealthStatusDown {
			detail := h.Name
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			down = append(down, detail)
		}
	}
	if len(down) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(down, ", "))
	}
	return nil
}

// Run starts the app and blocks until a shutdown signal or ctx is done,
// then shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask runs a finite task with the same lifecycle. The task's context is
// canceled on SIGINT/SIGTERM. The task error wins over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := a.signalContext(ctx)
	defer cancel()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func (a *App[C]) WaitForSignal(ctx context.Context) {
	sigCtx, cancel := a.signalContext(ctx)
	defer cancel()
	<-sigCtx.Done()
}

func (a *App[C]) signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if !a.signals {
		return context.WithCancel(ctx)
	}
	sigCtx, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
			cancel()
		case <-sigCtx.Done():
		}
	}()
	return sigCtx, cancel
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	for _, c := range a.components {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("starting %s: %w", c.Name(), err)
		}
		a.started = append(a.started, c)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Logger.Info("Application started", logger.Fields(
		"components", len(a.started),
		"startup_ms", time.Since(start).Milliseconds(),
	))
	return nil
}

// stop runs the stop hooks and stops started components in reverse order.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	for i := len(a.started) - 1; i >= 0; i-- {
		c := a.started[i]
		if err := c.Stop(ctx); err != nil {
			a.Logger.Error("Component stop error", logger.Fields("component", c.Name(), logger.FieldError, err.Error()))
			errs = append(errs, fmt.Errorf("stopping %s: %w", c.Name(), err))
		}
	}
	a.started = nil
	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
