package cart

import (
	"sync"

	"bazaar-be/internal/apperr"
	"bazaar-be/internal/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the client-side selection of products waiting for checkout.
// Every mutation is written through to the store.
type Cart struct {
	mu    sync.Mutex
	items []Item
	store Store
}

// Open loads the cart saved in store.
func Open(store Store) (*Cart, error) {
	items, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Cart{items: items, store: store}, nil
}

func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Add puts the product in the cart or raises the quantity already there.
func (c *Cart) Add(item Item) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(item.ProductID); i >= 0 {
		c.items[i].Quantity += item.Quantity
	} else {
		c.items = append(c.items, item)
	}
	return c.store.Save(c.items)
}

// UpdateQuantity sets the quantity; zero or less removes the item.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	if quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	} else {
		c.items[i].Quantity = quantity
	}
	return c.store.Save(c.items)
}

func (c *Cart) Remove(productID uuid.UUID) error {
	return c.UpdateQuantity(productID, 0)
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []Item{}
	return c.store.Save(c.items)
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the number of units across all items.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Validate() Result {
	return Validate(c.Items())
}

// CheckoutRequest builds the order submission for the current cart.
func (c *Cart) CheckoutRequest(address, phone, notes string) (order.CreateInput, error) {
	items := c.Items()
	if len(items) == 0 {
		return order.CreateInput{}, ErrCartEmpty
	}
	if res := Validate(items); !res.Valid {
		return order.CreateInput{}, apperr.Validation(res.Error)
	}

	in := order.CreateInput{
		Items:           make([]order.ItemInput, len(items)),
		DeliveryAddress: address,
		Phone:           phone,
		Notes:           notes,
	}
	for i, it := range items {
		in.Items[i] = order.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return in, nil
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
