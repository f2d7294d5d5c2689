package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"bazaar-be/internal/order"
	"bazaar-be/internal/rating"
	"bazaar-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderRepo struct{ s *Store }

func (r *orderRepo) CreateOrderTx(_ context.Context, productIDs []uuid.UUID, build order.BuildFunc) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lines := []order.CatalogLine{}
	for _, id := range productIDs {
		p, ok := r.s.products[id]
		if !ok || !p.IsActive {
			continue
		}
		supplier, ok := r.s.users[p.SupplierID]
		if !ok {
			continue
		}
		lines = append(lines, order.CatalogLine{
			ProductID:        p.ID,
			Name:             p.Name,
			Price:            p.Price,
			Unit:             string(p.Unit),
			Stock:            p.Stock,
			MinOrderQuantity: p.MinOrderQuantity,
			SupplierID:       p.SupplierID,
			SupplierName:     supplier.Name,
		})
	}

	o, err := build(lines)
	if err != nil {
		return nil, err
	}

	r.s.orderSeq++
	o.OrderNumber = utils.FormatOrderNumber(o.CreatedAt, r.s.orderSeq)
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return nil, fmt.Errorf("duplicate order number %s", o.OrderNumber)
		}
	}

	for _, it := range o.Items {
		p := r.s.products[it.ProductID]
		p.Stock = max(p.Stock-it.Quantity, 0)
		p.TotalOrders++
		p.UpdatedAt = o.CreatedAt
		r.s.products[it.ProductID] = p
	}
	r.s.orders[o.ID] = cloneOrder(*o)
	return o, nil
}

func (r *orderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *orderRepo) UpdateStatusTx(_ context.Context, id uuid.UUID, apply func(*order.Order) error) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o = cloneOrder(o)
	if err := apply(&o); err != nil {
		return nil, err
	}
	r.s.orders[id] = cloneOrder(o)
	return &o, nil
}

func (r *orderRepo) RateOrderTx(_ context.Context, id uuid.UUID, apply func(*order.Order) error) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o = cloneOrder(o)
	if err := apply(&o); err != nil {
		return nil, err
	}

	supplier, ok := r.s.users[o.SupplierID]
	if !ok {
		return nil, fmt.Errorf("supplier %s not found", o.SupplierID)
	}
	agg := rating.Aggregate{Sum: supplier.RatingSum, Count: supplier.TotalRatings}
	supplier.Rating = agg.Add(*o.Rating)
	supplier.RatingSum, supplier.TotalRatings = agg.Sum, agg.Count
	supplier.UpdatedAt = o.UpdatedAt

	r.s.users[supplier.ID] = supplier
	r.s.orders[id] = cloneOrder(o)
	return &o, nil
}

func (r *orderRepo) List(_ context.Context, f order.ListFilter) ([]order.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := r.s.ordersWhere(func(o order.Order) bool {
		return isParty(o, f.Viewer) && (len(f.Statuses) == 0 || slices.Contains(f.Statuses, o.Status))
	})
	page := paginate(matched, f.Page, f.Limit)
	return page, len(matched), nil
}

func (r *orderRepo) Counts(_ context.Context, viewer order.Viewer) (*order.Counts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := &order.Counts{DeliveredAmount: decimal.Zero}
	for _, o := range r.s.orders {
		if !isParty(o, viewer) {
			continue
		}
		c.TotalOrders++
		switch o.Status {
		case order.StatusPending, order.StatusConfirmed:
			c.PendingOrders++
		case order.StatusDelivered:
			c.DeliveredOrders++
			c.DeliveredAmount = c.DeliveredAmount.Add(o.TotalAmount)
		case order.StatusCancelled:
			c.CancelledOrders++
		}
	}
	return c, nil
}

// ordersWhere returns copies of the matching orders, newest first.
// Callers hold s.mu.
func (s *Store) ordersWhere(keep func(order.Order) bool) []order.Order {
	out := []order.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func isParty(o order.Order, v order.Viewer) bool {
	if v.Party == order.PartySupplier {
		return o.SupplierID == v.UserID
	}
	return o.VendorID == v.UserID
}

func cloneOrder(o order.Order) order.Order {
	o.Items = slices.Clone(o.Items)
	if o.Items == nil {
		o.Items = []order.Item{}
	}
	if o.ExpectedDeliveryDate != nil {
		t := *o.ExpectedDeliveryDate
		o.ExpectedDeliveryDate = &t
	}
	if o.ActualDeliveryDate != nil {
		t := *o.ActualDeliveryDate
		o.ActualDeliveryDate = &t
	}
	if o.Rating != nil {
		r := *o.Rating
		o.Rating = &r
	}
	return o
}
