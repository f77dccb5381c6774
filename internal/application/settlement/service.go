package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	appcart "github.com/chronomart/storefront/internal/application/cart"
	"github.com/chronomart/storefront/internal/domain/outbox"
	"github.com/chronomart/storefront/internal/domain/payment"
	"github.com/chronomart/storefront/internal/observability"
	"github.com/chronomart/storefront/internal/observability/logctx"
)

const componentSettlement = "settlement_handler"

// CartClearer is the one cart operation settlement needs.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) (*appcart.MutationResult, error)
}

// IdempotencyStore remembers which payment sessions have already been
// settled. MarkProcessed reports true only for the first caller of a key.
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Result struct {
	// Cleared is false when the signal was absent or already consumed.
	Cleared bool
	// Reference is the short order reference shown to the user (last eight
	// characters of the payment session id, uppercased).
	Reference string
	// Warning carries a persistence degradation from the clear, if any.
	Warning error
}

// Service reconciles local cart state with the asynchronous payment outcome:
// when the browser returns from the provider with a session id, the cart is
// cleared exactly once for that id. No external calls are made here.
type Service struct {
	carts     CartClearer
	processed IdempotencyStore
	bus       outbox.Publisher
	guardTTL  time.Duration

	log     observability.Logger
	counter observability.Counter
}

func NewService(carts CartClearer, processed IdempotencyStore, bus outbox.Publisher, guardTTL time.Duration, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	if guardTTL <= 0 {
		guardTTL = 24 * time.Hour
	}
	return &Service{
		carts:     carts,
		processed: processed,
		bus:       bus,
		guardTTL:  guardTTL,
		log:       tel.Logger().With(observability.F("component", componentSettlement)),
		counter:   tel.Metrics().Counter(observability.MSettlementProcessed),
	}
}

// OnReturn consumes the settlement signal from the return navigation. An
// absent payment session id is a no-op. The idempotency guard is scoped to
// the specific payment session id, so a later checkout with a fresh id clears
// again even though this browser session has settled before.
func (s *Service) OnReturn(ctx context.Context, cartSessionID, paymentSessionID string) (*Result, error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("component", componentSettlement),
		observability.F("session_id", cartSessionID),
	)

	if paymentSessionID == "" {
		s.counter.Add(1, observability.L("outcome", "no_signal"))
		return &Result{}, nil
	}

	ref := Reference(paymentSessionID)
	guardKey := cartSessionID + ":" + paymentSessionID

	first, err := s.processed.MarkProcessed(ctx, guardKey, s.guardTTL)
	if err != nil {
		s.counter.Add(1, observability.L("outcome", "error"))
		return nil, fmt.Errorf("settlement: idempotency guard: %w", err)
	}
	if !first {
		s.counter.Add(1, observability.L("outcome", "duplicate"))
		logger.Debug("settlement_replayed", observability.F("payment_session_id", paymentSessionID))
		return &Result{Reference: ref}, nil
	}

	res, err := s.carts.Clear(ctx, cartSessionID)
	if err != nil {
		s.counter.Add(1, observability.L("outcome", "error"))
		return nil, fmt.Errorf("settlement: clear cart: %w", err)
	}

	if s.bus != nil {
		event := payment.NewSettlementCompletedEvent(cartSessionID, paymentSessionID)
		if pubErr := s.bus.Publish(ctx, event); pubErr != nil {
			logger.Warn("settlement_event_publish_failed", observability.F("error", pubErr.Error()))
		}
	}

	s.counter.Add(1, observability.L("outcome", "cleared"))
	logger.Info("settlement_completed",
		observability.F("payment_session_id", paymentSessionID),
		observability.F("reference", ref),
	)
	return &Result{Cleared: true, Reference: ref, Warning: res.Warning}, nil
}

// Reference derives the user-facing order reference from a payment session
// id: the last eight characters, uppercased.
func Reference(paymentSessionID string) string {
	ref := paymentSessionID
	if len(ref) > 8 {
		ref = ref[len(ref)-8:]
	}
	return strings.ToUpper(ref)
}
