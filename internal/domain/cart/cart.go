package cart

import (
	"errors"
	"time"

	"github.com/chronomart/storefront/internal/domain/money"
)

var (
	ErrNotFound       = errors.New("cart: not found")
	ErrMissingSession = errors.New("cart: session id is required")
)

// Item is one cart line, keyed by product id. Quantity is always >= 1; a
// quantity below one removes the line instead.
type Item struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	ImageURL       string `json:"image_url,omitempty"`
	Quantity       int    `json:"quantity"`
}

// Cart is the authoritative cart state for one browser session. Lines keep
// insertion order across updates; TotalCents is recomputed on every mutation
// and never stored stale.
type Cart struct {
	SessionID  string    `json:"session_id"`
	Items      []Item    `json:"items"`
	TotalCents int64     `json:"total_cents"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot is a deep, immutable copy of cart state taken at a specific
// instant. Later cart mutations are never observable through it.
type Snapshot struct {
	SessionID  string
	Items      []Item
	TotalCents int64
	TakenAt    time.Time
}

func New(sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	return &Cart{
		SessionID: sessionID,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// AddItem merges onto an existing line (quantity +1) or appends a new line
// with quantity 1. Always succeeds; prices are accepted as supplied by the
// catalog collaborator.
func (c *Cart) AddItem(item Item) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity++
			c.recompute()
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
	c.recompute()
}

// UpdateQuantity sets the absolute quantity of a line. A quantity below one
// removes the line; an unknown product id is a no-op and leaves the total
// untouched. Reports whether the cart changed.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	if quantity < 1 {
		return c.RemoveItem(productID)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.recompute()
			return true
		}
	}
	return false
}

// RemoveItem deletes a line if present. Unknown product id is a no-op.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.recompute()
			return true
		}
	}
	return false
}

// Clear empties the cart. Idempotent.
func (c *Cart) Clear() {
	c.Items = nil
	c.recompute()
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// ItemCount is the badge count: the sum of line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Snapshot() Snapshot {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return Snapshot{
		SessionID:  c.SessionID,
		Items:      items,
		TotalCents: c.TotalCents,
		TakenAt:    time.Now().UTC(),
	}
}

func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = make([]Item, len(c.Items))
	copy(clone.Items, c.Items)
	return &clone
}

func (c *Cart) recompute() {
	var total int64
	for _, it := range c.Items {
		total += money.Line(it.UnitPriceCents, it.Quantity)
	}
	c.TotalCents = total
	c.UpdatedAt = time.Now().UTC()
}

// IsEmpty reports whether the snapshot carries no lines.
func (s Snapshot) IsEmpty() bool { return len(s.Items) == 0 }

// ComputeTotal re-derives the total from the snapshot lines. Checkout uses
// this instead of trusting any caller-supplied total.
func (s Snapshot) ComputeTotal() int64 {
	var total int64
	for _, it := range s.Items {
		total += money.Line(it.UnitPriceCents, it.Quantity)
	}
	return total
}
