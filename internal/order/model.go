package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

const (
	MaxAddressLength = 500
	MaxPhoneLength   = 15
	MaxNotesLength   = 500
)

type Order struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	OrderNumber          string          `db:"order_number" json:"orderNumber"`
	VendorID             uuid.UUID       `db:"vendor_id" json:"vendorId"`
	VendorName           string          `db:"vendor_name" json:"vendorName"`
	VendorEmail          string          `db:"vendor_email" json:"vendorEmail"`
	SupplierID           uuid.UUID       `db:"supplier_id" json:"supplierId"`
	SupplierName         string          `db:"supplier_name" json:"supplierName"`
	Items                []Item          `db:"-" json:"items"`
	TotalAmount          decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Status               Status          `db:"status" json:"status"`
	DeliveryAddress      string          `db:"delivery_address" json:"deliveryAddress"`
	Phone                string          `db:"phone" json:"phone"`
	Notes                string          `db:"notes" json:"notes"`
	ExpectedDeliveryDate *time.Time      `db:"expected_delivery_date" json:"expectedDeliveryDate,omitempty"`
	ActualDeliveryDate   *time.Time      `db:"actual_delivery_date" json:"actualDeliveryDate,omitempty"`
	Rating               *int            `db:"rating" json:"rating,omitempty"`
	Review               string          `db:"review" json:"review,omitempty"`
	IsRated              bool            `db:"is_rated" json:"isRated"`
	CreatedAt            time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updatedAt"`
}

// Item is the product snapshot frozen into an order at creation.
type Item struct {
	OrderID     uuid.UUID       `db:"order_id" json:"-"`
	Position    int             `db:"position" json:"-"`
	ProductID   uuid.UUID       `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Unit        string          `db:"unit" json:"unit"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	now := time.Now()
	return json.Marshal(struct {
		plain
		DeliveryStatus string `json:"deliveryStatus"`
		OrderAge       int    `json:"orderAge"`
	}{plain(o), o.DeliveryStatus(now), o.AgeDays(now)})
}

// AgeDays is the number of started days since creation.
func (o Order) AgeDays(now time.Time) int {
	d := now.Sub(o.CreatedAt)
	if d < 0 {
		d = -d
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

type ItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type CreateInput struct {
	Items           []ItemInput `json:"items"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Phone           string      `json:"phone"`
	Notes           string      `json:"notes"`
}

type RateInput struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// Party is the side of an order a user acts on.
type Party string

const (
	PartyVendor   Party = "vendor"
	PartySupplier Party = "supplier"
)

// Viewer is the authenticated caller an order is read for.
type Viewer struct {
	UserID uuid.UUID
	Party  Party
}

type ListFilter struct {
	Viewer   Viewer
	Statuses []Status
	Page     int
	Limit    int
}

type ListResult struct {
	Orders []Order
	Total  int
	Page   int
	Limit  int
}

// Counts aggregates one party's orders.
type Counts struct {
	TotalOrders     int             `db:"total_orders"`
	PendingOrders   int             `db:"pending_orders"`
	DeliveredOrders int             `db:"delivered_orders"`
	CancelledOrders int             `db:"cancelled_orders"`
	DeliveredAmount decimal.Decimal `db:"delivered_amount"`
}

type DashboardStats struct {
	TotalOrders     int              `json:"totalOrders"`
	PendingOrders   int              `json:"pendingOrders"`
	DeliveredOrders int              `json:"deliveredOrders"`
	CancelledOrders int              `json:"cancelledOrders"`
	TotalSpent      *decimal.Decimal `json:"totalSpent,omitempty"`
	TotalRevenue    *decimal.Decimal `json:"totalRevenue,omitempty"`
	TotalProducts   *int             `json:"totalProducts,omitempty"`
}
