// Package redistest starts in-memory Redis servers for tests.
package redistest

import (
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/redis"
)

// Start runs a miniredis server and returns a connected client. Both are
// closed when the test ends.
func Start(tb testing.TB) (*redis.Client, *miniredis.Miniredis) {
	tb.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		tb.Fatalf("failed to start miniredis: %v", err)
	}
	tb.Cleanup(mini.Close)

	log := logger.NewWithWriter(&logger.Config{Level: "error", Format: "json"}, "redis-test", io.Discard)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, log)
	if err != nil {
		tb.Fatalf("failed to create redis client: %v", err)
	}
	tb.Cleanup(func() { _ = client.Close() })
	return client, mini
}
