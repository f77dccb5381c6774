package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProducts() []Product {
	return []Product{
		{ID: "wt-1003", Name: "Atlas GMT", Description: "Dual-time bezel for travelers.", PriceCents: 84500, CategoryID: "sport"},
		{ID: "wt-1001", Name: "Meridian Classic Chronograph", Description: "Hand-wound chronograph.", PriceCents: 250000, CategoryID: "luxury"},
		{ID: "wt-1002", Name: "Harbor Field Watch", Description: "38mm field watch.", PriceCents: 15000, CategoryID: "casual"},
		{ID: "wt-1004", Name: "Lumen Diver 300", Description: "300m dive watch.", PriceCents: 62000, CategoryID: "sport"},
	}
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterDefaultSortsByName(t *testing.T) {
	got := Filter{}.Apply(sampleProducts())
	assert.Equal(t, []string{"wt-1003", "wt-1002", "wt-1004", "wt-1001"}, ids(got))
}

func TestFilterSortByPrice(t *testing.T) {
	low := Filter{Sort: SortPriceLow}.Apply(sampleProducts())
	assert.Equal(t, []string{"wt-1002", "wt-1004", "wt-1003", "wt-1001"}, ids(low))

	high := Filter{Sort: SortPriceHigh}.Apply(sampleProducts())
	assert.Equal(t, []string{"wt-1001", "wt-1003", "wt-1004", "wt-1002"}, ids(high))
}

func TestFilterQueryMatchesNameOrDescription(t *testing.T) {
	byName := Filter{Query: "harbor"}.Apply(sampleProducts())
	assert.Equal(t, []string{"wt-1002"}, ids(byName))

	byDescription := Filter{Query: "DIVE"}.Apply(sampleProducts())
	assert.Equal(t, []string{"wt-1004"}, ids(byDescription))

	none := Filter{Query: "submarine"}.Apply(sampleProducts())
	assert.Empty(t, none)
}

func TestFilterCategory(t *testing.T) {
	sport := Filter{CategoryID: "sport"}.Apply(sampleProducts())
	assert.Equal(t, []string{"wt-1003", "wt-1004"}, ids(sport))

	all := Filter{CategoryID: "all"}.Apply(sampleProducts())
	assert.Len(t, all, 4)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := sampleProducts()
	Filter{Sort: SortPriceHigh}.Apply(in)
	assert.Equal(t, sampleProducts(), in)
}
