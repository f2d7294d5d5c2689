package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineColumns = []string{"id", "name", "price", "unit", "stock", "min_order_quantity", "supplier_id", "supplier_name"}

var itemRowColumns = []string{"order_id", "position", "product_id", "product_name", "price", "quantity", "unit", "subtotal"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "postgres")), mock
}

func orderRows(os ...Order) *sqlmock.Rows {
	rows := sqlmock.NewRows(orderColumns)
	for _, o := range os {
		var rating any
		if o.Rating != nil {
			rating = int64(*o.Rating)
		}
		var expected, actual any
		if o.ExpectedDeliveryDate != nil {
			expected = *o.ExpectedDeliveryDate
		}
		if o.ActualDeliveryDate != nil {
			actual = *o.ActualDeliveryDate
		}
		rows.AddRow(o.ID.String(), o.OrderNumber, o.VendorID.String(), o.VendorName, o.VendorEmail,
			o.SupplierID.String(), o.SupplierName, o.TotalAmount.String(), string(o.Status),
			o.DeliveryAddress, o.Phone, o.Notes, expected, actual, rating, o.Review, o.IsRated,
			o.CreatedAt, o.UpdatedAt)
	}
	return rows
}

func itemRows(o Order) *sqlmock.Rows {
	rows := sqlmock.NewRows(itemRowColumns)
	for _, it := range o.Items {
		rows.AddRow(o.ID.String(), it.Position, it.ProductID.String(), it.ProductName,
			it.Price.String(), it.Quantity, it.Unit, it.Subtotal.String())
	}
	return rows
}

func sampleOrder(status Status) Order {
	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()
	return Order{
		ID: id, OrderNumber: "BZ-20260502-00000007", VendorID: uuid.New(), VendorName: "Ravi's Chaat",
		VendorEmail: "ravi@example.com", SupplierID: uuid.New(), SupplierName: "Fresh Farms",
		TotalAmount: decimal.RequireFromString("97.50"), Status: status,
		DeliveryAddress: "Stall 4", Phone: "9876543210", CreatedAt: now, UpdatedAt: now,
		Items: []Item{{
			OrderID: id, ProductID: uuid.New(), ProductName: "Onion", Price: decimal.RequireFromString("32.50"),
			Quantity: 3, Unit: "kg", Subtotal: decimal.RequireFromString("97.50"),
		}},
	}
}

func TestRepository_CreateOrderTx(t *testing.T) {
	ctx := context.Background()
	supplierID := uuid.New()
	productID := uuid.New()
	createdAt := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	build := func(lines []CatalogLine) (*Order, error) {
		return BuildOrder(Vendor{ID: uuid.New(), Name: "Ravi"},
			request(ItemInput{ProductID: productID, Quantity: 3}), lines, createdAt)
	}

	lockedRows := func(stock int) *sqlmock.Rows {
		return sqlmock.NewRows(lineColumns).
			AddRow(productID.String(), "Onion", "32.50", "kg", stock, 2, supplierID.String(), "Fresh Farms")
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM products p\s+JOIN users u ON u.id = p.supplier_id\s+WHERE p.id = ANY\(\$1::uuid\[\]\) AND p.is_active = TRUE\s+ORDER BY p.id\s+FOR UPDATE OF p`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(lockedRows(5))
		mock.ExpectQuery(`SELECT nextval\('order_number_seq'\)`).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(7)))
		mock.ExpectExec(`INSERT INTO orders \(id, order_number`).
			WithArgs(sqlmock.AnyArg(), "BZ-20260502-00000007", sqlmock.AnyArg(), "Ravi", "", supplierID.String(),
				"Fresh Farms", "97.5", "pending", "Stall 4, Market Road", "9876543210", "",
				nil, nil, nil, "", false, createdAt, createdAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(sqlmock.AnyArg(), 0, productID.String(), "Onion", "32.5", 3, "kg", "97.5").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products\s+SET stock = GREATEST\(stock - \$1, 0\),\s+total_orders = total_orders \+ 1`).
			WithArgs(3, productID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.CreateOrderTx(ctx, []uuid.UUID{productID}, build)
		require.NoError(t, err)
		assert.Equal(t, "BZ-20260502-00000007", o.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected build rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE OF p`).WillReturnRows(lockedRows(2))
		mock.ExpectRollback()

		_, err := repo.CreateOrderTx(ctx, []uuid.UUID{productID}, build)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stock update failure rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE OF p`).WillReturnRows(lockedRows(5))
		mock.ExpectQuery(`SELECT nextval`).WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(8)))
		mock.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products`).WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		_, err := repo.CreateOrderTx(ctx, []uuid.UUID{productID}, build)
		assert.EqualError(t, err, "deadlock detected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("with items", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		o := sampleOrder(StatusPending)

		mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1$`).
			WithArgs(o.ID.String()).
			WillReturnRows(orderRows(o))
		mock.ExpectQuery(`FROM order_items WHERE order_id = ANY\(\$1::uuid\[\]\) ORDER BY order_id, position`).
			WillReturnRows(itemRows(o))

		got, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, got.OrderNumber)
		assert.Nil(t, got.Rating)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Onion", got.Items[0].ProductName)
		assert.True(t, got.Items[0].Subtotal.Equal(o.Items[0].Subtotal))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`FROM orders WHERE id`).WillReturnRows(sqlmock.NewRows(orderColumns))

		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_UpdateStatusTx(t *testing.T) {
	ctx := context.Background()

	t.Run("applies under row lock", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		o := sampleOrder(StatusPending)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).WithArgs(o.ID.String()).WillReturnRows(orderRows(o))
		mock.ExpectExec(`UPDATE orders\s+SET status = \$1, expected_delivery_date = \$2`).
			WithArgs("confirmed", sqlmock.AnyArg(), nil, sqlmock.AnyArg(), o.ID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`FROM order_items`).WillReturnRows(itemRows(o))
		mock.ExpectCommit()

		got, err := repo.UpdateStatusTx(ctx, o.ID, func(o *Order) error {
			return o.Transition(StatusConfirmed, time.Now())
		})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, got.Status)
		assert.NotNil(t, got.ExpectedDeliveryDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected transition writes nothing", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		o := sampleOrder(StatusPending)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(orderRows(o))
		mock.ExpectRollback()

		_, err := repo.UpdateStatusTx(ctx, o.ID, func(o *Order) error {
			return o.Transition(StatusDispatched, time.Now())
		})
		assert.EqualError(t, err, "cannot change status from pending to dispatched")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_RateOrderTx(t *testing.T) {
	ctx := context.Background()
	rate := func(vendorID uuid.UUID) func(*Order) error {
		return func(o *Order) error { return o.Rate(vendorID, 4, "good", time.Now()) }
	}

	t.Run("order and supplier in one transaction", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		o := sampleOrder(StatusDelivered)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(orderRows(o))
		mock.ExpectExec(`UPDATE orders\s+SET rating = \$1, review = \$2, is_rated = TRUE`).
			WithArgs(4, "good", sqlmock.AnyArg(), o.ID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users\s+SET rating_sum = rating_sum \+ \$1,\s+total_ratings = total_ratings \+ 1,\s+rating = \(rating_sum \+ \$1\)::double precision / \(total_ratings \+ 1\)`).
			WithArgs(4, o.SupplierID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`FROM order_items`).WillReturnRows(itemRows(o))
		mock.ExpectCommit()

		got, err := repo.RateOrderTx(ctx, o.ID, rate(o.VendorID))
		require.NoError(t, err)
		assert.True(t, got.IsRated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("supplier failure leaves order unrated", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		o := sampleOrder(StatusDelivered)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(orderRows(o))
		mock.ExpectExec(`UPDATE orders`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := repo.RateOrderTx(ctx, o.ID, rate(o.VendorID))
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already rated", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		o := sampleOrder(StatusDelivered)
		score := 5
		o.Rating, o.IsRated = &score, true

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(orderRows(o))
		mock.ExpectRollback()

		_, err := repo.RateOrderTx(ctx, o.ID, rate(o.VendorID))
		assert.ErrorIs(t, err, ErrAlreadyRated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	vendorID := uuid.New()
	o := sampleOrder(StatusConfirmed)
	o.VendorID = vendorID

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE \(vendor_id = \$1 AND status IN \(\$2,\$3\)\)`).
		WithArgs(vendorID.String(), "pending", "confirmed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE (.+) ORDER BY created_at DESC, id LIMIT 10 OFFSET 10`).
		WithArgs(vendorID.String(), "pending", "confirmed").
		WillReturnRows(orderRows(o))
	mock.ExpectQuery(`FROM order_items`).WillReturnRows(itemRows(o))

	orders, total, err := repo.List(context.Background(), ListFilter{
		Viewer:   Viewer{UserID: vendorID, Party: PartyVendor},
		Statuses: []Status{StatusPending, StatusConfirmed},
		Page:     2,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Counts(t *testing.T) {
	repo, mock := newMockRepo(t)
	supplierID := uuid.New()

	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE status IN \('pending', 'confirmed'\)\) AS pending_orders(.+)FROM orders WHERE supplier_id = \$1`).
		WithArgs(supplierID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"total_orders", "pending_orders", "delivered_orders", "cancelled_orders", "delivered_amount"}).
			AddRow(9, 3, 4, 2, "1250.50"))

	c, err := repo.Counts(context.Background(), Viewer{UserID: supplierID, Party: PartySupplier})
	require.NoError(t, err)
	assert.Equal(t, 9, c.TotalOrders)
	assert.Equal(t, 3, c.PendingOrders)
	assert.True(t, c.DeliveredAmount.Equal(decimal.RequireFromString("1250.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
