package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a product snapshot held in the cart with the chosen quantity.
type Item struct {
	ProductID        uuid.UUID       `json:"productId"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Unit             string          `json:"unit"`
	SupplierID       uuid.UUID       `json:"supplierId"`
	SupplierName     string          `json:"supplierName"`
	Stock            int             `json:"stock"`
	MinOrderQuantity int             `json:"minOrderQuantity"`
	Quantity         int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Result is the outcome of validating a cart snapshot.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
