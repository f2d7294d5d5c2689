package product

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitKg     Unit = "kg"
	UnitGram   Unit = "g"
	UnitLitre  Unit = "l"
	UnitMl     Unit = "ml"
	UnitPiece  Unit = "piece"
	UnitDozen  Unit = "dozen"
	UnitPacket Unit = "packet"
)

var units = []Unit{UnitKg, UnitGram, UnitLitre, UnitMl, UnitPiece, UnitDozen, UnitPacket}

func (u Unit) Valid() bool {
	for _, v := range units {
		if u == v {
			return true
		}
	}
	return false
}

type Category string

type CategoryOption struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

// Categories is the closed catalog taxonomy in display order.
var Categories = []CategoryOption{
	{"vegetables", "Vegetables"},
	{"fruits", "Fruits"},
	{"spices", "Spices"},
	{"grains", "Grains"},
	{"oils", "Oils"},
	{"dairy", "Dairy"},
	{"meat", "Meat"},
	{"beverages", "Beverages"},
	{"packaging", "Packaging"},
	{"other", "Other"},
}

func (c Category) Valid() bool {
	for _, opt := range Categories {
		if c == opt.Value {
			return true
		}
	}
	return false
}

const (
	MaxNameLength        = 200
	MaxDescriptionLength = 1000
	LowStockThreshold    = 10
	MaxPriceDecimals     = 2
)

const (
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityLowStock   = "low_stock"
	AvailabilityInStock    = "in_stock"
)

type Product struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Description      string          `db:"description" json:"description"`
	Price            decimal.Decimal `db:"price" json:"price"`
	Unit             Unit            `db:"unit" json:"unit"`
	Stock            int             `db:"stock" json:"stock"`
	Category         Category        `db:"category" json:"category"`
	ImageURL         string          `db:"image_url" json:"imageURL"`
	MinOrderQuantity int             `db:"min_order_quantity" json:"minOrderQuantity"`
	SupplierID       uuid.UUID       `db:"supplier_id" json:"supplierId"`
	SupplierName     string          `db:"supplier_name" json:"supplierName"`
	Rating           float64         `db:"rating" json:"rating"`
	RatingSum        int             `db:"rating_sum" json:"-"`
	TotalRatings     int             `db:"total_ratings" json:"totalRatings"`
	TotalOrders      int             `db:"total_orders" json:"totalOrders"`
	IsActive         bool            `db:"is_active" json:"isActive"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

func (p Product) AvailabilityStatus() string {
	switch {
	case p.Stock <= 0:
		return AvailabilityOutOfStock
	case p.Stock < LowStockThreshold:
		return AvailabilityLowStock
	default:
		return AvailabilityInStock
	}
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		AvailabilityStatus string `json:"availabilityStatus"`
	}{plain(p), p.AvailabilityStatus()})
}

type CreateInput struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	Unit             Unit            `json:"unit"`
	Stock            *int            `json:"stock"`
	Category         Category        `json:"category"`
	ImageURL         string          `json:"imageURL"`
	MinOrderQuantity int             `json:"minOrderQuantity"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	Price            *decimal.Decimal `json:"price"`
	Unit             *Unit            `json:"unit"`
	Stock            *int             `json:"stock"`
	Category         *Category        `json:"category"`
	ImageURL         *string          `json:"imageURL"`
	MinOrderQuantity *int             `json:"minOrderQuantity"`
}

type ListFilter struct {
	Page       int
	Limit      int
	Category   Category
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	SortOrder  string
	SupplierID *uuid.UUID
}

type ListResult struct {
	Products []Product
	Total    int
	Page     int
	Limit    int
}
