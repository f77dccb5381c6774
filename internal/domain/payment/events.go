package payment

import "time"

// SettlementCompletedEvent is emitted after a confirmed payment return has
// been reconciled (cart cleared exactly once for the payment session).
type SettlementCompletedEvent struct {
	CartSessionID    string
	PaymentSessionID string
	OccurredAt       time.Time
}

func (SettlementCompletedEvent) EventName() string { return "settlement.completed" }

func NewSettlementCompletedEvent(cartSessionID, paymentSessionID string) SettlementCompletedEvent {
	return SettlementCompletedEvent{
		CartSessionID:    cartSessionID,
		PaymentSessionID: paymentSessionID,
		OccurredAt:       time.Now().UTC(),
	}
}
