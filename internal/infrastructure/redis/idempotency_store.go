package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore tracks settled payment sessions in Redis so the guard
// survives process restarts. SETNX makes marking atomic.
type IdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client:    client,
		keyPrefix: "settlement:processed:",
	}
}

// MarkProcessed reports true when the key was newly set, false when another
// call already consumed it.
func (s *IdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency store: mark: %w", err)
	}
	return ok, nil
}
