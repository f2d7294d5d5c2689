package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"bazaar-be/internal/order"
	"bazaar-be/internal/product"
	"bazaar-be/internal/rating"

	"github.com/google/uuid"
)

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r *productRepo) FindByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &p, nil
}

// UpdateTx applies the patch to the current product under the store lock.
func (r *productRepo) UpdateTx(_ context.Context, id uuid.UUID, apply func(*product.Product) error) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	if err := apply(&cur); err != nil {
		return nil, err
	}
	r.s.products[id] = cur
	return &cur, nil
}

func (r *productRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
	r.s.products[id] = p
	return nil
}

func (r *productRepo) List(_ context.Context, f product.ListFilter) ([]product.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := []product.Product{}
	for _, p := range r.s.products {
		switch {
		case !p.IsActive:
		case f.Category != "" && p.Category != f.Category:
		case f.SupplierID != nil && p.SupplierID != *f.SupplierID:
		case f.MinPrice != nil && p.Price.LessThan(*f.MinPrice):
		case f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice):
		case search != "" && !containsFold(search, p.Name, p.Description, p.SupplierName):
		default:
			matched = append(matched, p)
		}
	}

	sortProducts(matched, f.SortBy, strings.EqualFold(f.SortOrder, "asc"))
	return paginate(matched, f.Page, f.Limit), len(matched), nil
}

func (r *productRepo) CountActiveBySupplier(_ context.Context, supplierID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, p := range r.s.products {
		if p.IsActive && p.SupplierID == supplierID {
			n++
		}
	}
	return n, nil
}

func (r *productRepo) TopCategoriesForVendor(_ context.Context, vendorID uuid.UUID, recentOrders, n int) ([]product.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	recent := r.s.ordersWhere(func(o order.Order) bool { return o.VendorID == vendorID })
	if len(recent) > recentOrders {
		recent = recent[:recentOrders]
	}

	counts := map[product.Category]int{}
	for _, o := range recent {
		for _, it := range o.Items {
			if p, ok := r.s.products[it.ProductID]; ok {
				counts[p.Category]++
			}
		}
	}

	ranked := make([]product.Category, 0, len(counts))
	for c := range counts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (r *productRepo) TopRated(_ context.Context, category product.Category, limit int) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := []product.Product{}
	for _, p := range r.s.products {
		if p.IsActive && (category == "" || p.Category == category) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.TotalOrders != b.TotalOrders {
			return a.TotalOrders > b.TotalOrders
		}
		return a.ID.String() < b.ID.String()
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *productRepo) ApplyRating(_ context.Context, id uuid.UUID, score int) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	agg := rating.Aggregate{Sum: p.RatingSum, Count: p.TotalRatings}
	p.Rating = agg.Add(score)
	p.RatingSum, p.TotalRatings = agg.Sum, agg.Count
	p.UpdatedAt = time.Now().UTC()
	r.s.products[id] = p
	return &p, nil
}

func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortProducts(ps []product.Product, sortBy string, asc bool) {
	less := func(a, b product.Product) int {
		switch sortBy {
		case "price":
			return a.Price.Cmp(b.Price)
		case "rating":
			return cmpFloat(a.Rating, b.Rating)
		case "name":
			return strings.Compare(a.Name, b.Name)
		case "stock":
			return a.Stock - b.Stock
		case "totalOrders":
			return a.TotalOrders - b.TotalOrders
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.Slice(ps, func(i, j int) bool {
		c := less(ps[i], ps[j])
		if c == 0 {
			return ps[i].ID.String() < ps[j].ID.String()
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start < 0 || start >= len(all) {
		return []T{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
