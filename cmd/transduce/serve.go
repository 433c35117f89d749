package main

import (
	"context"
	"io"

	"github.com/kbukum/transducekit/encryption"
	"github.com/kbukum/transducekit/redis"
	"github.com/kbukum/transducekit/server"
)

// runKeyPrefix namespaces stored run records in Redis.
const runKeyPrefix = "transduce:runs"

func serveCommand(ctx context.Context, args []string, stderr io.Writer) int {
	fs := newFlagSet("serve", stderr)
	configPath := fs.String("config", "", "path to config file")
	plansDirs := fs.String("plans", "", "comma-separated plan directories")
	port := fs.Int("port", 0, "listen port (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath, *plansDirs)
	if err != nil {
		return reportError(stderr, err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	app, err := newApp(cfg, stderr)
	if err != nil {
		return reportError(stderr, err)
	}
	opts, err := telemetry(ctx, app)
	if err != nil {
		return reportError(stderr, err)
	}

	serverOpts := []server.Option{server.WithServiceName(cfg.Name)}
	if cfg.Redis.Enabled {
		client, err := redis.New(cfg.Redis, app.Logger)
		if err != nil {
			return reportError(stderr, err)
		}
		app.RegisterHealth(client)
		app.OnStop(func(context.Context) error { return client.Close() })

		var storeOpts []redis.StoreOption
		if cfg.Encryption.Enabled {
			c, err := encryption.New(cfg.Encryption)
			if err != nil {
				return reportError(stderr, err)
			}
			storeOpts = append(storeOpts, redis.WithCipher(c))
		}
		serverOpts = append(serverOpts,
			server.WithHealthCheckers(client),
			server.WithRunStore(redis.NewStore[server.RunRecord](client, runKeyPrefix, cfg.Redis.TTL(), storeOpts...)),
		)
	}

	app.RegisterComponent(server.New(cfg.Server, newEngine(cfg, opts), app.Logger, serverOpts...))
	if err := app.Run(ctx); err != nil {
		return reportError(stderr, err)
	}
	return 0
}
