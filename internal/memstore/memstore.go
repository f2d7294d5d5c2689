// Package memstore keeps every repository in process memory behind one
// mutex. It backs STORE_DRIVER=memory and the order engine's race tests.
package memstore

import (
	"context"
	"sync"

	"bazaar-be/internal/grouporder"
	"bazaar-be/internal/order"
	"bazaar-be/internal/product"
	"bazaar-be/internal/user"

	"github.com/google/uuid"
)

type Store struct {
	mu          sync.Mutex
	users       map[uuid.UUID]user.User
	products    map[uuid.UUID]product.Product
	orders      map[uuid.UUID]order.Order
	groupOrders map[uuid.UUID]grouporder.GroupOrder
	orderSeq    int64
}

func New() *Store {
	return &Store{
		users:       make(map[uuid.UUID]user.User),
		products:    make(map[uuid.UUID]product.Product),
		orders:      make(map[uuid.UUID]order.Order),
		groupOrders: make(map[uuid.UUID]grouporder.GroupOrder),
	}
}

func (s *Store) Users() user.Repository             { return &userRepo{s} }
func (s *Store) Products() product.Repository       { return &productRepo{s} }
func (s *Store) Orders() order.Repository           { return &orderRepo{s} }
func (s *Store) GroupOrders() grouporder.Repository { return &groupOrderRepo{s} }

// Ping reports the store as healthy unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
