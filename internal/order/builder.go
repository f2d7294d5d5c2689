package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogLine is a product row as read (and locked) at checkout.
type CatalogLine struct {
	ProductID        uuid.UUID       `db:"id"`
	Name             string          `db:"name"`
	Price            decimal.Decimal `db:"price"`
	Unit             string          `db:"unit"`
	Stock            int             `db:"stock"`
	MinOrderQuantity int             `db:"min_order_quantity"`
	SupplierID       uuid.UUID       `db:"supplier_id"`
	SupplierName     string          `db:"supplier_name"`
}

// Vendor is the buyer snapshot copied into a new order.
type Vendor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// BuildFunc turns the locked catalog lines into an order ready to persist.
type BuildFunc func(lines []CatalogLine) (*Order, error)

// MergeItems sums quantities of repeated products, keeping first-seen order.
func MergeItems(items []ItemInput) []ItemInput {
	merged := make([]ItemInput, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

// ProductIDs lists the ids of items in order.
func ProductIDs(items []ItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}

// BuildOrder checks the requested items against the catalog snapshot and
// prices them. items must already be merged. Minimum quantity violations
// fail on the first offender; stock shortages are reported all at once.
func BuildOrder(vendor Vendor, in CreateInput, lines []CatalogLine, now time.Time) (*Order, error) {
	if len(lines) != len(in.Items) {
		return nil, ErrProductsUnavailable
	}

	catalog := make(map[uuid.UUID]CatalogLine, len(lines))
	for _, l := range lines {
		catalog[l.ProductID] = l
	}
	if len(catalog) != len(in.Items) {
		return nil, ErrProductsUnavailable
	}

	var supplier CatalogLine
	for i, it := range in.Items {
		line, ok := catalog[it.ProductID]
		if !ok {
			return nil, ErrProductsUnavailable
		}
		if i == 0 {
			supplier = line
			continue
		}
		if line.SupplierID != supplier.SupplierID {
			return nil, ErrMixedSuppliers
		}
	}

	for _, it := range in.Items {
		line := catalog[it.ProductID]
		if it.Quantity < line.MinOrderQuantity {
			return nil, errBelowMinimum(line.Name, line.MinOrderQuantity)
		}
	}

	var shortages []string
	for _, it := range in.Items {
		line := catalog[it.ProductID]
		if it.Quantity > line.Stock {
			shortages = append(shortages,
				fmt.Sprintf("%s: requested %d, available %d", line.Name, it.Quantity, line.Stock))
		}
	}
	if len(shortages) > 0 {
		return nil, ErrInsufficientStock.WithDetails(shortages...)
	}

	o := &Order{
		ID:              uuid.New(),
		VendorID:        vendor.ID,
		VendorName:      vendor.Name,
		VendorEmail:     vendor.Email,
		SupplierID:      supplier.SupplierID,
		SupplierName:    supplier.SupplierName,
		Status:          StatusPending,
		DeliveryAddress: in.DeliveryAddress,
		Phone:           in.Phone,
		Notes:           in.Notes,
		TotalAmount:     decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	o.Items = make([]Item, len(in.Items))
	for i, it := range in.Items {
		line := catalog[it.ProductID]
		subtotal := line.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		o.Items[i] = Item{
			OrderID:     o.ID,
			Position:    i,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Price:       line.Price,
			Quantity:    it.Quantity,
			Unit:        line.Unit,
			Subtotal:    subtotal,
		}
		o.TotalAmount = o.TotalAmount.Add(subtotal)
	}

	return o, nil
}
