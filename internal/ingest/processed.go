package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessedStore remembers event ids that were handled so queue redeliveries
// do not raise the same alert twice. Claim must be atomic so concurrent
// receivers of one message agree on a single owner.
type ProcessedStore interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

const (
	processedKeyPrefix  = "vitalwatch:ingest:processed:"
	defaultProcessedTTL = 24 * time.Hour
)

// RedisProcessedStore keeps processed ids with a TTL.
type RedisProcessedStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProcessedStore returns nil without a client.
func NewRedisProcessedStore(client *redis.Client, ttl time.Duration) *RedisProcessedStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultProcessedTTL
	}
	return &RedisProcessedStore{client: client, ttl: ttl}
}

// Claim records an event id, returning false if another receiver already owns it.
func (s *RedisProcessedStore) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, processedKeyPrefix+eventID, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("ingest: claim event: %w", err)
	}
	return ok, nil
}

// Release drops a claim so the event can be retried.
func (s *RedisProcessedStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, processedKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("ingest: release event: %w", err)
	}
	return nil
}
