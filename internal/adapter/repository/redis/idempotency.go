package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

const (
	stateProcessing = "processing"
	stateDone       = "done"
)

// releaseScript deletes the key only while it still holds an in-progress claim,
// so a late Release never erases a completed marker.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client  redis.UniversalClient
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		prefix:  "callback:dedup:",
		metrics: m,
	}
}

// Claim marks key as in progress. It returns false when another delivery
// already claimed or completed it.
func (s *IdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, stateProcessing, ttl).Result()
	s.observe("claim", err)
	return ok, err
}

// Complete marks key as processed for ttl.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, ttl time.Duration) error {
	err := s.client.Set(ctx, s.prefix+key, stateDone, ttl).Err()
	s.observe("complete", err)
	return err
}

// Release drops an in-progress claim so a redelivery can retry.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	err := releaseScript.Run(ctx, s.client, []string{s.prefix + key}, stateProcessing).Err()
	s.observe("release", err)
	return err
}

func (s *IdempotencyStore) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RedisOperations.WithLabelValues(operation).Inc()
	if err != nil {
		s.metrics.RedisErrors.WithLabelValues(operation).Inc()
	}
}
