package order

import (
	"testing"
	"time"

	"bazaar-be/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(name, price string, stock, min int, supplierID uuid.UUID) CatalogLine {
	return CatalogLine{
		ProductID:        uuid.New(),
		Name:             name,
		Price:            decimal.RequireFromString(price),
		Unit:             "kg",
		Stock:            stock,
		MinOrderQuantity: min,
		SupplierID:       supplierID,
		SupplierName:     "Fresh Farms",
	}
}

func request(items ...ItemInput) CreateInput {
	return CreateInput{Items: items, DeliveryAddress: "Stall 4, Market Road", Phone: "9876543210"}
}

func TestMergeItems(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := MergeItems([]ItemInput{{a, 2}, {b, 1}, {a, 3}})

	assert.Equal(t, []ItemInput{{a, 5}, {b, 1}}, got)
	assert.Equal(t, []uuid.UUID{a, b}, ProductIDs(got))
}

func TestBuildOrder(t *testing.T) {
	supplier := uuid.New()
	vendor := Vendor{ID: uuid.New(), Name: "Ravi's Chaat", Email: "ravi@example.com"}
	now := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	t.Run("prices from catalog", func(t *testing.T) {
		onion := line("Onion", "32.50", 50, 2, supplier)
		oil := line("Mustard oil", "180", 10, 1, supplier)
		in := request(ItemInput{oil.ProductID, 2}, ItemInput{onion.ProductID, 3})

		o, err := BuildOrder(vendor, in, []CatalogLine{onion, oil}, now)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, supplier, o.SupplierID)
		assert.Equal(t, "Fresh Farms", o.SupplierName)
		assert.Equal(t, vendor.Name, o.VendorName)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "Mustard oil", o.Items[0].ProductName)
		assert.Equal(t, 1, o.Items[1].Position)
		assert.True(t, o.Items[1].Subtotal.Equal(decimal.RequireFromString("97.50")))
		assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("457.50")))

		sum := decimal.Zero
		for _, it := range o.Items {
			assert.True(t, it.Subtotal.Equal(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))))
			sum = sum.Add(it.Subtotal)
		}
		assert.True(t, sum.Equal(o.TotalAmount))
	})

	t.Run("missing product", func(t *testing.T) {
		onion := line("Onion", "32.50", 50, 2, supplier)
		in := request(ItemInput{onion.ProductID, 3}, ItemInput{uuid.New(), 1})

		_, err := BuildOrder(vendor, in, []CatalogLine{onion}, now)
		assert.ErrorIs(t, err, ErrProductsUnavailable)
	})

	t.Run("mixed suppliers", func(t *testing.T) {
		a := line("Onion", "32.50", 50, 1, supplier)
		b := line("Tomato", "20", 50, 1, uuid.New())
		in := request(ItemInput{a.ProductID, 1}, ItemInput{b.ProductID, 1})

		_, err := BuildOrder(vendor, in, []CatalogLine{a, b}, now)
		assert.ErrorIs(t, err, ErrMixedSuppliers)
	})

	t.Run("minimum quantity fails on first offender", func(t *testing.T) {
		a := line("Onion", "32.50", 50, 5, supplier)
		b := line("Garlic", "90", 50, 3, supplier)
		in := request(ItemInput{a.ProductID, 1}, ItemInput{b.ProductID, 1})

		_, err := BuildOrder(vendor, in, []CatalogLine{a, b}, now)
		assert.EqualError(t, err, "minimum order quantity for Onion is 5")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("stock shortages are batched", func(t *testing.T) {
		a := line("Onion", "32.50", 2, 1, supplier)
		b := line("Garlic", "90", 50, 1, supplier)
		c := line("Ginger", "120", 0, 1, supplier)
		in := request(ItemInput{a.ProductID, 3}, ItemInput{b.ProductID, 1}, ItemInput{c.ProductID, 4})

		_, err := BuildOrder(vendor, in, []CatalogLine{a, b, c}, now)
		require.ErrorIs(t, err, ErrInsufficientStock)

		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, []string{
			"Onion: requested 3, available 2",
			"Ginger: requested 4, available 0",
		}, ae.Details)
	})

	t.Run("minimum checked before stock", func(t *testing.T) {
		a := line("Onion", "32.50", 0, 2, supplier)
		in := request(ItemInput{a.ProductID, 1})

		_, err := BuildOrder(vendor, in, []CatalogLine{a}, now)
		assert.EqualError(t, err, "minimum order quantity for Onion is 2")
	})
}
