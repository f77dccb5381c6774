package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("catalog: product not found")

// Product is a catalog record. Prices are accepted as given; the cart does
// not re-validate them.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	ImageURL    string `json:"image_url,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
	IsFeatured  bool   `json:"is_featured"`
	InStock     bool   `json:"in_stock"`
}

type SortOrder string

const (
	SortName      SortOrder = "name"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

// Filter narrows and orders a product listing. Zero value means everything,
// sorted by name.
type Filter struct {
	Query      string
	CategoryID string
	Sort       SortOrder
}

// Apply returns the filtered, sorted products. Query matches name or
// description, case-insensitively.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	q := strings.ToLower(f.Query)
	for _, p := range products {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		if f.CategoryID != "" && f.CategoryID != "all" && p.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceCents > out[j].PriceCents })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
}
