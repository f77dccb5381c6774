package cart

import "time"

// Mutation names used in change notifications and metrics labels.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
)

// ChangedEvent describes one applied cart mutation. Subscribers receive these
// synchronously, in the exact order mutations were applied.
type ChangedEvent struct {
	SessionID  string
	Op         string
	ProductID  string
	TotalCents int64
	ItemCount  int
	OccurredAt time.Time
}

func (ChangedEvent) EventName() string { return "cart.changed" }

func NewChangedEvent(c *Cart, op, productID string) ChangedEvent {
	return ChangedEvent{
		SessionID:  c.SessionID,
		Op:         op,
		ProductID:  productID,
		TotalCents: c.TotalCents,
		ItemCount:  c.ItemCount(),
		OccurredAt: time.Now().UTC(),
	}
}
