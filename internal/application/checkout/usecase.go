package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domaincart "github.com/chronomart/storefront/internal/domain/cart"
	domain "github.com/chronomart/storefront/internal/domain/checkout"
	"github.com/chronomart/storefront/internal/domain/identity"
	"github.com/chronomart/storefront/internal/domain/payment"
	"github.com/chronomart/storefront/internal/observability"
	"github.com/chronomart/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	componentCheckout = "checkout_orchestrator"
	useCaseCheckout   = "checkout.begin"
	spanPrefix        = "UC."
	providerPeer      = "payment_provider"
	providerEndpoint  = "payment_sessions.create"
)

// CartReader supplies the immutable order snapshot for a session.
type CartReader interface {
	Snapshot(ctx context.Context, sessionID string) (domaincart.Snapshot, error)
}

// Authorizer resolves the tri-state capability check for a scope.
type Authorizer interface {
	Authorize(ctx context.Context, sess identity.Session, scope identity.Scope) identity.Decision
}

type Result struct {
	RedirectURL      string
	PaymentSessionID string
	TotalCents       int64
}

// UseCase drives a cart session through the checkout state machine:
// validate identity and cart, snapshot, create exactly one payment session,
// expose the redirect target. The cart is never cleared here; settlement owns
// that.
type UseCase struct {
	carts   CartReader
	gateway payment.SessionCreator
	gate    Authorizer
	timeout time.Duration

	tel          observability.Observability
	log          observability.Logger
	reqCounter   observability.Counter
	extCounter   observability.Counter
	extHistogram observability.Histogram

	mu       sync.Mutex
	attempts map[string]*domain.Attempt
}

func NewUseCase(carts CartReader, gateway payment.SessionCreator, gate Authorizer, timeout time.Duration, tel observability.Observability) *UseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &UseCase{
		carts:        carts,
		gateway:      gateway,
		gate:         gate,
		timeout:      timeout,
		tel:          tel,
		log:          tel.Logger().With(observability.F("component", componentCheckout)),
		reqCounter:   tel.Metrics().Counter(observability.MCheckoutRequests),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
		attempts:     make(map[string]*domain.Attempt),
	}
}

// Attempt returns the current checkout attempt for a session, if any.
func (uc *UseCase) Attempt(sessionID string) *domain.Attempt {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.attempts[sessionID]
}

// Execute runs one checkout attempt for the session.
func (uc *UseCase) Execute(ctx context.Context, sess identity.Session, sessionID string) (_ *Result, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseCheckout),
		observability.F("session_id", sessionID),
	)

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"Checkout",
		attribute.String("use_case", useCaseCheckout),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1, observability.L("outcome", outcome))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", time.Since(start).Seconds()),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if !sess.Authenticated {
		outcome, statusText = "error", "UNAUTHENTICATED"
		return nil, domain.ErrUnauthenticated
	}
	switch uc.gate.Authorize(ctx, sess, identity.ScopeCheckout) {
	case identity.DecisionAuthorized:
	case identity.DecisionPending:
		outcome, statusText = "error", "AUTHZ_PENDING"
		return nil, identity.ErrLookupPending
	default:
		outcome, statusText = "error", "UNAUTHENTICATED"
		return nil, domain.ErrUnauthenticated
	}

	attempt, err := uc.admit(sessionID)
	if err != nil {
		outcome, statusText = "error", "CHECKOUT_IN_PROGRESS"
		return nil, err
	}
	// Past this point the attempt must always leave the in-flight phases.
	defer uc.settleAttempt(attempt, &err)

	snap, err := uc.carts.Snapshot(ctx, sessionID)
	if err != nil {
		outcome, statusText = "error", "CART_READ_FAILED"
		return nil, fmt.Errorf("checkout: read cart: %w", err)
	}
	if err = attempt.Validated(snap); err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			outcome, statusText = "error", "EMPTY_CART"
			return nil, domain.ErrEmptyCart
		}
		outcome, statusText = "error", "INVALID_STATE"
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("cart.lines", len(snap.Items)),
		attribute.Int64("cart.total_cents", attempt.TotalCents),
	)

	session, err := uc.createSession(ctx, attempt)
	if err != nil {
		outcome, statusText = "error", "PAYMENT_SESSION_FAILED"
		return nil, err
	}

	if err = attempt.Redirected(session.RedirectURL, session.ID); err != nil {
		outcome, statusText = "error", "INVALID_STATE"
		return nil, err
	}
	span.AddEvent("checkout.redirected")

	return &Result{
		RedirectURL:      session.RedirectURL,
		PaymentSessionID: session.ID,
		TotalCents:       attempt.TotalCents,
	}, nil
}

// admit enforces the single-flight guard: at most one attempt per cart
// session may be between validation and the provider response.
func (uc *UseCase) admit(sessionID string) (*domain.Attempt, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if prev, ok := uc.attempts[sessionID]; ok && prev.InFlight() {
		return nil, domain.ErrCheckoutInProgress
	}

	attempt := domain.NewAttempt(sessionID)
	if err := attempt.Begin(); err != nil {
		return nil, err
	}
	uc.attempts[sessionID] = attempt
	return attempt, nil
}

// settleAttempt drives a failed attempt back to idle so the session can
// retry with the untouched cart. Successful attempts stay redirected.
func (uc *UseCase) settleAttempt(attempt *domain.Attempt, execErr *error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if *execErr == nil {
		return
	}
	if attempt.InFlight() {
		_ = attempt.Failed((*execErr).Error())
	}
	_ = attempt.Reset()
}

// createSession issues the single external payment call, bounded by the
// configured timeout. The request carries the total the orchestrator computed
// from the snapshot itself.
func (uc *UseCase) createSession(ctx context.Context, attempt *domain.Attempt) (*payment.Session, error) {
	lines := make([]payment.SessionLine, 0, len(attempt.Snapshot.Items))
	for _, it := range attempt.Snapshot.Items {
		lines = append(lines, payment.SessionLine{
			ProductID:      it.ProductID,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	callStart := time.Now()
	session, err := uc.gateway.CreateSession(callCtx, payment.SessionRequest{
		Items:      lines,
		TotalCents: attempt.TotalCents,
	})
	callOutcome := "success"
	if err != nil {
		callOutcome = "error"
	}
	uc.extCounter.Add(1,
		observability.L("peer", providerPeer),
		observability.L("endpoint", providerEndpoint),
		observability.L("outcome", callOutcome),
	)
	uc.extHistogram.Observe(time.Since(callStart).Seconds(),
		observability.L("peer", providerPeer),
		observability.L("endpoint", providerEndpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentSession, err)
	}
	if session == nil || session.RedirectURL == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentSession, payment.ErrMalformedResponse)
	}
	return session, nil
}
