package catalog

import (
	"context"

	domain "github.com/chronomart/storefront/internal/domain/catalog"
)

// Service is the catalog read collaborator: it supplies cart-compatible
// product records and the listing views. Prices are passed through as given.
type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domain.Filter) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(products), nil
}

func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	return domain.Filter{}.Apply(featured), nil
}
