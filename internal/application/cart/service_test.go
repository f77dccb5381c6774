package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/chronomart/storefront/internal/domain/cart"
	"github.com/chronomart/storefront/internal/domain/money"
)

type fakeRepo struct {
	saved    map[string]*domain.Cart
	saveErr  error
	loadErr  error
	saveCall int
	loadCall int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(map[string]*domain.Cart)}
}

func (r *fakeRepo) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	r.loadCall++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	c, ok := r.saved[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *fakeRepo) Save(_ context.Context, c *domain.Cart) error {
	r.saveCall++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved[c.SessionID] = c.Clone()
	return nil
}

func taxRate(t *testing.T) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString("0.08")
}

func TestAddPersistsAndNotifies(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, taxRate(t), nil)

	var events []domain.ChangedEvent
	svc.Subscribe(func(e domain.ChangedEvent) { events = append(events, e) })

	res, err := svc.Add(context.Background(), "sess-1", domain.Item{ProductID: "wt-1002", UnitPriceCents: 15000})
	require.NoError(t, err)
	require.NoError(t, res.Warning)
	assert.Equal(t, int64(15000), res.Cart.TotalCents)

	require.Len(t, events, 1)
	assert.Equal(t, domain.OpAdd, events[0].Op)
	assert.Equal(t, 1, events[0].ItemCount)
	assert.Equal(t, 1, repo.saveCall)
}

func TestMutationsSurvivePersistenceFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("redis: connection refused")
	svc := NewService(repo, taxRate(t), nil)

	res, err := svc.Add(context.Background(), "sess-1", domain.Item{ProductID: "wt-1001", UnitPriceCents: 250000})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Warning, ErrPersistenceDegraded)
	assert.Equal(t, int64(250000), res.Cart.TotalCents)

	// The in-memory state is authoritative: the failed write must not roll
	// back, and the next read must still see the item.
	snap, err := svc.Snapshot(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(250000), snap.TotalCents)
}

func TestLoadFailureStartsFreshSession(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("redis: connection refused")
	svc := NewService(repo, taxRate(t), nil)

	snap, err := svc.Snapshot(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestLoadReadsStorageOncePerSession(t *testing.T) {
	repo := newFakeRepo()
	seed, err := domain.New("sess-1")
	require.NoError(t, err)
	seed.AddItem(domain.Item{ProductID: "wt-1002", UnitPriceCents: 15000})
	repo.saved["sess-1"] = seed

	svc := NewService(repo, taxRate(t), nil)

	for i := 0; i < 3; i++ {
		snap, err := svc.Snapshot(context.Background(), "sess-1")
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)
	}
	assert.Equal(t, 1, repo.loadCall)
}

func TestMissingSessionRejected(t *testing.T) {
	svc := NewService(newFakeRepo(), taxRate(t), nil)

	_, err := svc.Add(context.Background(), "", domain.Item{ProductID: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingSession)
}

func TestSubscribersSeeMutationsInOrder(t *testing.T) {
	svc := NewService(newFakeRepo(), taxRate(t), nil)

	var ops []string
	svc.Subscribe(func(e domain.ChangedEvent) { ops = append(ops, e.Op) })

	ctx := context.Background()
	_, err := svc.Add(ctx, "sess-1", domain.Item{ProductID: "a", UnitPriceCents: 100})
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, "sess-1", "a", 3)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, "sess-1", "a")
	require.NoError(t, err)
	_, err = svc.Clear(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, []string{domain.OpAdd, domain.OpUpdate, domain.OpRemove, domain.OpClear}, ops)
}

func TestViewDerivesTaxAndGrandTotal(t *testing.T) {
	svc := NewService(newFakeRepo(), taxRate(t), nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", domain.Item{ProductID: "wt-1001", UnitPriceCents: 250000})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "sess-1", domain.Item{ProductID: "wt-1002", UnitPriceCents: 15000})
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, "sess-1", "wt-1002", 2)
	require.NoError(t, err)

	view, err := svc.View(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(280000), view.SubtotalCents)
	assert.Equal(t, int64(22400), view.TaxCents)
	assert.Equal(t, int64(302400), view.GrandTotalCents)
	assert.Equal(t, 3, view.ItemCount)

	display, err := money.Display(view.GrandTotalCents)
	require.NoError(t, err)
	assert.Equal(t, "$3,024.00", display)
}

func TestMutationResultSnapshotIsDetached(t *testing.T) {
	svc := NewService(newFakeRepo(), taxRate(t), nil)
	ctx := context.Background()

	res, err := svc.Add(ctx, "sess-1", domain.Item{ProductID: "a", UnitPriceCents: 100})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, "sess-1", "a", 9)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Cart.Items[0].Quantity)
}
