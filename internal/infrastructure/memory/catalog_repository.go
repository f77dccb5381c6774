package memory

import (
	"context"
	"sync"

	domain "github.com/chronomart/storefront/internal/domain/catalog"
)

// CatalogRepository serves product records from memory, preserving seed
// order.
type CatalogRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Product
	ordered []string
}

func NewCatalogRepository(seed ...domain.Product) *CatalogRepository {
	r := &CatalogRepository{byID: make(map[string]domain.Product)}
	for _, p := range seed {
		if _, exists := r.byID[p.ID]; exists {
			continue
		}
		r.byID[p.ID] = p
		r.ordered = append(r.ordered, p.ID)
	}
	return r
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.ordered))
	for _, id := range r.ordered {
		out = append(out, r.byID[id])
	}
	return out, nil
}
