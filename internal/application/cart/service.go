package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/chronomart/storefront/internal/domain/cart"
	"github.com/chronomart/storefront/internal/domain/money"
	"github.com/chronomart/storefront/internal/observability"
	"github.com/chronomart/storefront/internal/observability/logctx"
	"github.com/shopspring/decimal"
)

// ErrPersistenceDegraded marks a mutation that succeeded in memory but could
// not be written to durable storage. Non-fatal: the cart is still correct,
// durability is degraded.
var ErrPersistenceDegraded = errors.New("cart: persistence degraded")

const componentCart = "cart_service"

// Subscriber observes applied cart mutations. Subscribers are invoked
// synchronously, after persistence, in the exact order mutations were
// applied.
type Subscriber func(e domain.ChangedEvent)

// MutationResult is the state after an applied mutation. Warning is nil or
// wraps ErrPersistenceDegraded; it never indicates a failed mutation.
type MutationResult struct {
	Cart    domain.Snapshot
	Warning error
}

// View is the cart as displayed: snapshot plus derived tax and grand total.
// Shipping is always free.
type View struct {
	Cart            domain.Snapshot
	ItemCount       int
	SubtotalCents   int64
	TaxCents        int64
	GrandTotalCents int64
}

// Service owns the authoritative cart state, one cart per browser session.
// The repository is durable best-effort storage: read once when a session
// first appears, written after every mutation. A failed write degrades
// durability but never rolls back or loses the in-memory state.
//
// Mutations are serialized so change notifications are delivered in
// application order.
type Service struct {
	repo    domain.Repository
	taxRate decimal.Decimal

	log       observability.Logger
	mutations observability.Counter

	mu    sync.Mutex
	carts map[string]*domain.Cart
	subs  []Subscriber
}

func NewService(repo domain.Repository, taxRate decimal.Decimal, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:      repo,
		taxRate:   taxRate,
		log:       tel.Logger().With(observability.F("component", componentCart)),
		mutations: tel.Metrics().Counter(observability.MCartMutations),
		carts:     make(map[string]*domain.Cart),
	}
}

// Subscribe registers a mutation observer (badge counts and the like).
// Wire subscribers at startup, before traffic.
func (s *Service) Subscribe(fn Subscriber) {
	if fn != nil {
		s.subs = append(s.subs, fn)
	}
}

// Add merges a product onto the cart (existing line: quantity +1).
func (s *Service) Add(ctx context.Context, sessionID string, item domain.Item) (*MutationResult, error) {
	return s.mutate(ctx, sessionID, domain.OpAdd, item.ProductID, func(c *domain.Cart) {
		c.AddItem(item)
	})
}

// UpdateQuantity sets an absolute line quantity; below one removes the line,
// an unknown product id is a no-op.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*MutationResult, error) {
	return s.mutate(ctx, sessionID, domain.OpUpdate, productID, func(c *domain.Cart) {
		c.UpdateQuantity(productID, quantity)
	})
}

// Remove deletes a line; unknown product id is a no-op.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) (*MutationResult, error) {
	return s.mutate(ctx, sessionID, domain.OpRemove, productID, func(c *domain.Cart) {
		c.RemoveItem(productID)
	})
}

// Clear empties the cart. Idempotent.
func (s *Service) Clear(ctx context.Context, sessionID string) (*MutationResult, error) {
	return s.mutate(ctx, sessionID, domain.OpClear, "", func(c *domain.Cart) {
		c.Clear()
	})
}

// Snapshot returns a deep immutable copy of the current cart state. A session
// that never stored a cart yields an empty snapshot.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// View returns the cart with derived totals for display.
func (s *Service) View(ctx context.Context, sessionID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap := c.Snapshot()
	tax := money.TaxFor(snap.TotalCents, s.taxRate)
	return &View{
		Cart:            snap,
		ItemCount:       c.ItemCount(),
		SubtotalCents:   snap.TotalCents,
		TaxCents:        tax,
		GrandTotalCents: snap.TotalCents + tax,
	}, nil
}

func (s *Service) mutate(ctx context.Context, sessionID, op, productID string, apply func(*domain.Cart)) (*MutationResult, error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("component", componentCart),
		observability.F("session_id", sessionID),
		observability.F("op", op),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		s.mutations.Add(1, observability.L("op", op), observability.L("outcome", "error"))
		return nil, err
	}

	apply(c)

	result := &MutationResult{Cart: c.Snapshot()}
	outcome := "success"
	if err := s.repo.Save(ctx, c); err != nil {
		// Storage is best effort: the in-memory state stands, the caller
		// gets a warning instead of a rollback.
		outcome = "degraded"
		result.Warning = fmt.Errorf("%w: %w", ErrPersistenceDegraded, err)
		logger.Warn("cart_persist_failed", observability.F("error", err.Error()))
	}
	s.mutations.Add(1, observability.L("op", op), observability.L("outcome", outcome))

	event := domain.NewChangedEvent(c, op, productID)
	for _, fn := range s.subs {
		fn(event)
	}

	logger.Debug("cart_mutation_applied",
		observability.F("total_cents", c.TotalCents),
		observability.F("item_count", c.ItemCount()),
	)
	return result, nil
}

// load returns the authoritative cart for a session, reading durable storage
// only on the session's first appearance. Callers hold s.mu.
func (s *Service) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}
	if c, ok := s.carts[sessionID]; ok {
		return c, nil
	}

	c, err := s.repo.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c, err = domain.New(sessionID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		// Degraded storage must not block the session; start fresh and log.
		s.log.Warn("cart_load_failed",
			observability.F("session_id", sessionID),
			observability.F("error", err.Error()),
		)
		c, err = domain.New(sessionID)
		if err != nil {
			return nil, err
		}
	}

	s.carts[sessionID] = c
	return c, nil
}
