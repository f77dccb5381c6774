// Package payment defines the boundary to the external payment provider. The
// provider is opaque: one call creates a hosted payment session and returns a
// redirect target, everything after that happens off-site.
package payment

import (
	"context"
	"errors"
)

var ErrMalformedResponse = errors.New("payment: malformed provider response")

// SessionLine is one order line as sent to the provider.
type SessionLine struct {
	ProductID      string `json:"id"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// SessionRequest carries the immutable order snapshot. TotalCents must be the
// total the orchestrator computed itself, never one supplied by the UI layer.
type SessionRequest struct {
	Items      []SessionLine `json:"items"`
	TotalCents int64         `json:"total_cents"`
	ReturnURL  string        `json:"return_url,omitempty"`
}

// Session is the provider's answer: where to send the browser, and the
// identifier that will come back on the settlement return.
type Session struct {
	ID          string
	RedirectURL string
}

type SessionCreator interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}
