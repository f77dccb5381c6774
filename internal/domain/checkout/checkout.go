package checkout

import (
	"errors"
	"time"

	"github.com/chronomart/storefront/internal/domain/cart"
)

var (
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrUnauthenticated    = errors.New("checkout: sign-in required")
	ErrCheckoutInProgress = errors.New("checkout: another attempt is already in flight")
	ErrPaymentSession     = errors.New("checkout: payment session creation failed")

	ErrInvalidTransition = errors.New("checkout: invalid state transition")
)

type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseValidating      Phase = "validating"
	PhaseAwaitingSession Phase = "awaiting_session"
	PhaseRedirected      Phase = "redirected"
	PhaseFailed          Phase = "failed"
)

// Attempt models one checkout attempt for a cart session:
//
//	idle -> validating -> awaiting_session -> redirected
//	               \----------\-> failed -> idle
//
// Redirected is terminal for the attempt; the cart is cleared only later, by
// settlement. Failed returns to idle so the untouched cart can be retried.
type Attempt struct {
	SessionID string

	// Set when validation passes; immutable from then on.
	Snapshot   cart.Snapshot
	TotalCents int64

	RedirectURL      string
	PaymentSessionID string
	FailureReason    string

	StartedAt time.Time
	state     attemptState
}

func NewAttempt(sessionID string) *Attempt {
	return &Attempt{
		SessionID: sessionID,
		StartedAt: time.Now().UTC(),
		state:     idleState{},
	}
}

func (a *Attempt) Phase() Phase { return a.state.Phase() }

// InFlight reports whether an external payment call may be outstanding.
// A second checkout attempt must be rejected while this holds.
func (a *Attempt) InFlight() bool {
	p := a.state.Phase()
	return p == PhaseValidating || p == PhaseAwaitingSession
}

// Begin moves the attempt from idle into validation.
func (a *Attempt) Begin() error {
	next, err := a.state.begin(a)
	if err != nil {
		return err
	}
	a.state = next
	return nil
}

// Validated records the immutable order snapshot and the independently
// computed total, and arms the external payment call.
func (a *Attempt) Validated(snap cart.Snapshot) error {
	next, err := a.state.validated(a, snap)
	if err != nil {
		return err
	}
	a.state = next
	return nil
}

// Redirected records the provider's redirect target. Terminal.
func (a *Attempt) Redirected(redirectURL, paymentSessionID string) error {
	next, err := a.state.redirected(a, redirectURL, paymentSessionID)
	if err != nil {
		return err
	}
	a.state = next
	return nil
}

// Failed records a recoverable failure.
func (a *Attempt) Failed(reason string) error {
	next, err := a.state.failed(a, reason)
	if err != nil {
		return err
	}
	a.state = next
	return nil
}

// Reset returns a failed attempt to idle so checkout can be retried.
func (a *Attempt) Reset() error {
	next, err := a.state.reset(a)
	if err != nil {
		return err
	}
	a.state = next
	return nil
}
