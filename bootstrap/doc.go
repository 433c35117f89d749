// Package bootstrap runs a transducekit binary through a uniform lifecycle:
// components start in registration order, hooks run around them, readiness
// is checked, and shutdown stops everything in reverse order within a
// graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(srv)
//	app.OnStop(func(ctx context.Context) error { return client.Close() })
//	err = app.Run(ctx)
//
// Long-running services use Run, which blocks until SIGINT/SIGTERM. Finite
// jobs use RunTask, which cancels the task on the same signals.
package bootstrap
