package cart

import "context"

// Repository persists one cart per browser session. Load returns ErrNotFound
// for a session that has never saved a cart.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}
