package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/chronomart/storefront/internal/domain/catalog"
	"github.com/chronomart/storefront/internal/infrastructure/memory"
)

func newTestService() *Service {
	return NewService(memory.NewCatalogRepository(
		domain.Product{ID: "wt-1001", Name: "Meridian Classic Chronograph", PriceCents: 250000, CategoryID: "luxury", IsFeatured: true},
		domain.Product{ID: "wt-1002", Name: "Harbor Field Watch", PriceCents: 15000, CategoryID: "casual"},
		domain.Product{ID: "wt-1004", Name: "Lumen Diver 300", PriceCents: 62000, CategoryID: "sport", IsFeatured: true},
	))
}

func TestGet(t *testing.T) {
	svc := newTestService()

	p, err := svc.Get(context.Background(), "wt-1002")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Field Watch", p.Name)

	_, err = svc.Get(context.Background(), "wt-9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAppliesFilter(t *testing.T) {
	svc := newTestService()

	all, err := svc.List(context.Background(), domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sport, err := svc.List(context.Background(), domain.Filter{CategoryID: "sport"})
	require.NoError(t, err)
	require.Len(t, sport, 1)
	assert.Equal(t, "wt-1004", sport[0].ID)
}

func TestFeatured(t *testing.T) {
	svc := newTestService()

	featured, err := svc.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, "wt-1004", featured[0].ID)
	assert.Equal(t, "wt-1001", featured[1].ID)
}
