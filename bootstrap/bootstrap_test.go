package bootstrap

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/transducekit/config"
	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observability"
)

type testConfig struct {
	config.ServiceConfig
}

func newTestConfig(name string) *testConfig {
	return &testConfig{ServiceConfig: config.ServiceConfig{Name: name, Version: "1.0.0", Environment: "development"}}
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	*m.events = append(*m.events, "start:"+m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	*m.events = append(*m.events, "stop:"+m.name)
	return m.stopErr
}

type checker observability.HealthStatus

func (c checker) CheckHealth(context.Context) observability.Health {
	return observability.Health{Name: "dep", Status: observability.HealthStatus(c)}
}

func quietLogger() *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "error", Format: "json"}, "test", io.Discard)
}

func newApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(newTestConfig("test-svc"), WithLogger(quietLogger()), WithoutSignals(), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newApp(t)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("got name=%q version=%q", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected typed config, got %+v", app.Cfg)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	_, err := NewApp(newTestConfig(""), WithLogger(quietLogger()))
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app := newApp(t)
	var events []string
	app.RegisterComponent(&mockComponent{name: "a", events: &events})
	app.RegisterComponent(&mockComponent{name: "b", events: &events})
	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "start:a,start:b,onStart,onReady,task,onStop,stop:b,stop:a"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestRunTask_TaskErrorWins(t *testing.T) {
	app := newApp(t)
	var events []string
	app.RegisterComponent(&mockComponent{name: "a", stopErr: errors.New("stop failed"), events: &events})

	taskErr := errors.New("task failed")
	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); err != taskErr {
		t.Errorf("expected the task error, got %v", err)
	}
}

func TestRunTask_StopError(t *testing.T) {
	app := newApp(t)
	var events []string
	app.RegisterComponent(&mockComponent{name: "a", stopErr: errors.New("stop failed"), events: &events})

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "stopping a") {
		t.Errorf("expected the stop error, got %v", err)
	}
}

func TestStartFailure_StopsStarted(t *testing.T) {
	app := newApp(t)
	var events []string
	app.RegisterComponent(&mockComponent{name: "a", events: &events})
	app.RegisterComponent(&mockComponent{name: "b", startErr: errors.New("boom"), events: &events})
	app.RegisterComponent(&mockComponent{name: "c", events: &events})

	err := app.RunTask(context.Background(), func(context.Context) error {
		t.Error("task must not run")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "starting b") {
		t.Fatalf("expected start error, got %v", err)
	}
	if got := strings.Join(events, ","); got != "start:a,start:b,stop:a" {
		t.Errorf("got %s", got)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	app := newApp(t)
	var events []string
	app.RegisterComponent(&mockComponent{name: "a", events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if got := strings.Join(events, ","); got != "start:a,stop:a" {
		t.Errorf("got %s", got)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newApp(t)
	app.RegisterHealth(checker(observability.HealthStatusUp))
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected ready, got %v", err)
	}
	app.RegisterHealth(checker(observability.HealthStatusDown))
	if err := app.ReadyCheck(context.Background()); err == nil {
		t.Error("expected a down checker to fail readiness")
	}
}

func TestOnStartHookError(t *testing.T) {
	app := newApp(t)
	app.OnStart(func(context.Context) error { return errors.New("nope") })
	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Errorf("got %v", err)
	}
}
