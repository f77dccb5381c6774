package checkout

import "github.com/chronomart/storefront/internal/domain/cart"

// attemptState implements the state pattern for checkout attempt transitions.
type attemptState interface {
	Phase() Phase
	begin(a *Attempt) (attemptState, error)
	validated(a *Attempt, snap cart.Snapshot) (attemptState, error)
	redirected(a *Attempt, url, sessionID string) (attemptState, error)
	failed(a *Attempt, reason string) (attemptState, error)
	reset(a *Attempt) (attemptState, error)
}

type idleState struct{}

func (idleState) Phase() Phase { return PhaseIdle }

func (idleState) begin(a *Attempt) (attemptState, error) {
	a.FailureReason = ""
	return validatingState{}, nil
}

func (idleState) validated(*Attempt, cart.Snapshot) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (idleState) redirected(*Attempt, string, string) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (idleState) failed(*Attempt, string) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (idleState) reset(*Attempt) (attemptState, error) {
	return idleState{}, nil
}

type validatingState struct{}

func (validatingState) Phase() Phase { return PhaseValidating }

func (validatingState) begin(*Attempt) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (validatingState) validated(a *Attempt, snap cart.Snapshot) (attemptState, error) {
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}
	a.Snapshot = snap
	a.TotalCents = snap.ComputeTotal()
	return awaitingSessionState{}, nil
}

func (validatingState) redirected(*Attempt, string, string) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (validatingState) failed(a *Attempt, reason string) (attemptState, error) {
	a.FailureReason = reason
	return failedState{}, nil
}

func (validatingState) reset(*Attempt) (attemptState, error) {
	return nil, ErrInvalidTransition
}

type awaitingSessionState struct{}

func (awaitingSessionState) Phase() Phase { return PhaseAwaitingSession }

func (awaitingSessionState) begin(*Attempt) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (awaitingSessionState) validated(*Attempt, cart.Snapshot) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (awaitingSessionState) redirected(a *Attempt, url, sessionID string) (attemptState, error) {
	a.RedirectURL = url
	a.PaymentSessionID = sessionID
	a.FailureReason = ""
	return redirectedState{}, nil
}

func (awaitingSessionState) failed(a *Attempt, reason string) (attemptState, error) {
	a.FailureReason = reason
	return failedState{}, nil
}

func (awaitingSessionState) reset(*Attempt) (attemptState, error) {
	return nil, ErrInvalidTransition
}

type redirectedState struct{}

func (redirectedState) Phase() Phase { return PhaseRedirected }

func (redirectedState) begin(*Attempt) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (redirectedState) validated(*Attempt, cart.Snapshot) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (redirectedState) redirected(*Attempt, string, string) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (redirectedState) failed(*Attempt, string) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (redirectedState) reset(*Attempt) (attemptState, error) {
	return idleState{}, nil
}

type failedState struct{}

func (failedState) Phase() Phase { return PhaseFailed }

func (failedState) begin(*Attempt) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (failedState) validated(*Attempt, cart.Snapshot) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (failedState) redirected(*Attempt, string, string) (attemptState, error) {
	return nil, ErrInvalidTransition
}

func (failedState) failed(a *Attempt, reason string) (attemptState, error) {
	a.FailureReason = reason
	return failedState{}, nil
}

func (failedState) reset(a *Attempt) (attemptState, error) {
	a.FailureReason = ""
	return idleState{}, nil
}
