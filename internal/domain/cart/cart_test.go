package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T) *Cart {
	t.Helper()
	c, err := New("sess-1")
	require.NoError(t, err)
	return c
}

func chronograph() Item {
	return Item{ProductID: "wt-1001", Name: "Meridian Classic Chronograph", UnitPriceCents: 250000}
}

func fieldWatch() Item {
	return Item{ProductID: "wt-1002", Name: "Harbor Field Watch", UnitPriceCents: 15000}
}

func TestNewRequiresSession(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestAddItemAppendsWithQuantityOne(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())

	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, int64(250000), c.TotalCents)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())
	c.AddItem(chronograph())

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, int64(500000), c.TotalCents)
}

func TestAddExistingEqualsUpdatePlusOne(t *testing.T) {
	viaAdd := newTestCart(t)
	viaAdd.AddItem(fieldWatch())
	viaAdd.AddItem(fieldWatch())

	viaUpdate := newTestCart(t)
	viaUpdate.AddItem(fieldWatch())
	viaUpdate.UpdateQuantity("wt-1002", viaUpdate.Items[0].Quantity+1)

	assert.Equal(t, viaUpdate.Items, viaAdd.Items)
	assert.Equal(t, viaUpdate.TotalCents, viaAdd.TotalCents)
}

func TestUpdateQuantityIsAbsolute(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(fieldWatch())

	assert.True(t, c.UpdateQuantity("wt-1002", 5))
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(75000), c.TotalCents)
}

func TestUpdateQuantityBelowOneRemovesLine(t *testing.T) {
	for _, qty := range []int{0, -5} {
		c := newTestCart(t)
		c.AddItem(fieldWatch())

		assert.True(t, c.UpdateQuantity("wt-1002", qty))
		assert.Empty(t, c.Items)
		assert.Equal(t, int64(0), c.TotalCents)
	}
}

func TestUpdateQuantityUnknownIDIsNoop(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())
	before := c.TotalCents

	assert.False(t, c.UpdateQuantity("nope", 3))
	assert.Equal(t, before, c.TotalCents)
	require.Len(t, c.Items, 1)
}

func TestRemoveItemUnknownIDIsNoop(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())

	assert.False(t, c.RemoveItem("nope"))
	require.Len(t, c.Items, 1)
}

func TestInsertionOrderSurvivesUpdates(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())
	c.AddItem(fieldWatch())
	c.AddItem(Item{ProductID: "wt-1003", Name: "Atlas GMT", UnitPriceCents: 84500})

	c.UpdateQuantity("wt-1001", 7)
	c.UpdateQuantity("wt-1003", 2)

	ids := []string{c.Items[0].ProductID, c.Items[1].ProductID, c.Items[2].ProductID}
	assert.Equal(t, []string{"wt-1001", "wt-1002", "wt-1003"}, ids)
}

func TestClearIsIdempotent(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())

	c.Clear()
	first := c.Snapshot()
	c.Clear()
	second := c.Snapshot()

	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.TotalCents)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.TotalCents, second.TotalCents)
}

func TestSnapshotIsImmutable(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())
	snap := c.Snapshot()

	c.AddItem(fieldWatch())
	c.UpdateQuantity("wt-1001", 9)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, int64(250000), snap.TotalCents)
}

func TestSnapshotComputeTotal(t *testing.T) {
	c := newTestCart(t)
	c.AddItem(chronograph())
	c.AddItem(fieldWatch())
	c.UpdateQuantity("wt-1002", 2)

	snap := c.Snapshot()
	assert.Equal(t, int64(280000), snap.ComputeTotal())
	assert.Equal(t, snap.TotalCents, snap.ComputeTotal())
}

// TestTotalInvariantUnderRandomMutations drives a random mutation sequence
// and checks after every step that the stored total matches the sum over
// lines and that no line ever has quantity below one.
func TestTotalInvariantUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []Item{
		{ProductID: "a", UnitPriceCents: 199},
		{ProductID: "b", UnitPriceCents: 15000},
		{ProductID: "c", UnitPriceCents: 250000},
		{ProductID: "d", UnitPriceCents: 1},
	}

	c := newTestCart(t)
	for i := 0; i < 2000; i++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(4) {
		case 0:
			c.AddItem(p)
		case 1:
			c.UpdateQuantity(p.ProductID, rng.Intn(12)-2)
		case 2:
			c.RemoveItem(p.ProductID)
		case 3:
			if rng.Intn(20) == 0 {
				c.Clear()
			}
		}

		var want int64
		for _, it := range c.Items {
			require.GreaterOrEqual(t, it.Quantity, 1, "step %d: quantity below one", i)
			want += it.UnitPriceCents * int64(it.Quantity)
		}
		require.Equal(t, want, c.TotalCents, "step %d: stale total", i)
	}
}
