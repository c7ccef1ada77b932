package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

// newTestStore returns a dedup store backed by an in-process Redis.
// Retries are off so a stopped server fails the first command.
func newTestStore(t *testing.T, m *metrics.Metrics) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewIdempotencyStore(client, m), mr
}
