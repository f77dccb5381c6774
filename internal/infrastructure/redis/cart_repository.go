package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/chronomart/storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

const defaultCartTTL = 30 * 24 * time.Hour

// CartRepository persists the serialized cart layout keyed per session,
// written on every mutation and read once at startup of a session.
type CartRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{
		client:    client,
		keyPrefix: "cart:",
		ttl:       defaultCartTTL,
	}
}

func (r *CartRepository) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}

	raw, err := r.client.Get(ctx, r.keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cart repository: load: %w", err)
	}

	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("cart repository: decode: %w", err)
	}
	return &c, nil
}

func (r *CartRepository) Save(ctx context.Context, c *domain.Cart) error {
	if c == nil || c.SessionID == "" {
		return domain.ErrMissingSession
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart repository: encode: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+c.SessionID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cart repository: save: %w", err)
	}
	return nil
}
