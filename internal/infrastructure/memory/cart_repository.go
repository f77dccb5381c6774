package memory

import (
	"context"
	"sync"

	domain "github.com/chronomart/storefront/internal/domain/cart"
)

// CartRepository keeps carts in process memory, one per session. Suitable for
// tests and single-instance dev runs; production wiring uses the Redis
// repository.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]*domain.Cart)}
}

func (r *CartRepository) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	_ = ctx
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *CartRepository) Save(ctx context.Context, c *domain.Cart) error {
	_ = ctx
	if c == nil || c.SessionID == "" {
		return domain.ErrMissingSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[c.SessionID] = c.Clone()
	return nil
}
