package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bazaar-be/internal/logger"
	"bazaar-be/internal/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var orderColumns = []string{
	"id", "order_number", "vendor_id", "vendor_name", "vendor_email", "supplier_id",
	"supplier_name", "total_amount", "status", "delivery_address", "phone", "notes",
	"expected_delivery_date", "actual_delivery_date", "rating", "review", "is_rated",
	"created_at", "updated_at",
}

const itemColumns = "order_id, position, product_id, product_name, price, quantity, unit, subtotal"

const lockCatalogQuery = `
	SELECT p.id, p.name, p.price, p.unit, p.stock, p.min_order_quantity, p.supplier_id,
		u.name AS supplier_name
	FROM products p
	JOIN users u ON u.id = p.supplier_id
	WHERE p.id = ANY($1::uuid[]) AND p.is_active = TRUE
	ORDER BY p.id
	FOR UPDATE OF p`

type Repository interface {
	// CreateOrderTx locks the products, lets build validate and price the
	// order, then persists it and takes the stock in one transaction.
	CreateOrderTx(ctx context.Context, productIDs []uuid.UUID, build BuildFunc) (*Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatusTx(ctx context.Context, id uuid.UUID, apply func(*Order) error) (*Order, error)
	// RateOrderTx applies the rating to the order and folds it into the
	// supplier's running mean, both or neither.
	RateOrderTx(ctx context.Context, id uuid.UUID, apply func(*Order) error) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
	Counts(ctx context.Context, viewer Viewer) (*Counts, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrderTx(ctx context.Context, productIDs []uuid.UUID, build BuildFunc) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"), zap.String("method", "CreateOrderTx"))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lines := []CatalogLine{}
	if err := tx.SelectContext(ctx, &lines, lockCatalogQuery, pq.Array(uuidStrings(productIDs))); err != nil {
		log.Error("failed to lock products", zap.Error(err))
		return nil, err
	}

	o, err := build(lines)
	if err != nil {
		return nil, err
	}

	var seq int64
	if err := tx.GetContext(ctx, &seq, `SELECT nextval('order_number_seq')`); err != nil {
		log.Error("failed to draw order number", zap.Error(err))
		return nil, err
	}
	o.OrderNumber = utils.FormatOrderNumber(o.CreatedAt, seq)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+strings.Join(orderColumns, ", ")+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		o.ID, o.OrderNumber, o.VendorID, o.VendorName, o.VendorEmail, o.SupplierID,
		o.SupplierName, o.TotalAmount, o.Status, o.DeliveryAddress, o.Phone, o.Notes,
		o.ExpectedDeliveryDate, o.ActualDeliveryDate, o.Rating, o.Review, o.IsRated,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil, err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (`+itemColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			o.ID, item.Position, item.ProductID, item.ProductName,
			item.Price, item.Quantity, item.Unit, item.Subtotal,
		)
		if err != nil {
			log.Error("failed to insert order item", zap.String("product_id", item.ProductID.String()), zap.Error(err))
			return nil, err
		}

		// Stock was checked under the row lock; the clamp keeps it non-negative regardless.
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = GREATEST(stock - $1, 0),
				total_orders = total_orders + 1,
				updated_at = NOW()
			WHERE id = $2`,
			item.Quantity, item.ProductID,
		)
		if err != nil {
			log.Error("failed to take stock", zap.String("product_id", item.ProductID.String()), zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order", zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := getOrder(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, r.db, []*Order{o}); err != nil {
		logger.FromCtx(ctx).Error("failed to load order items", zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *repository) UpdateStatusTx(ctx context.Context, id uuid.UUID, apply func(*Order) error) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"), zap.String("method", "UpdateStatusTx"))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := getOrder(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, expected_delivery_date = $2, actual_delivery_date = $3, updated_at = $4
		WHERE id = $5`,
		o.Status, o.ExpectedDeliveryDate, o.ActualDeliveryDate, o.UpdatedAt, o.ID,
	)
	if err != nil {
		log.Error("failed to update order status", zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}

	if err := loadItems(ctx, tx, []*Order{o}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) RateOrderTx(ctx context.Context, id uuid.UUID, apply func(*Order) error) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"), zap.String("method", "RateOrderTx"))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := getOrder(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET rating = $1, review = $2, is_rated = TRUE, updated_at = $3
		WHERE id = $4 AND is_rated = FALSE`,
		o.Rating, o.Review, o.UpdatedAt, o.ID,
	)
	if err != nil {
		log.Error("failed to store order rating", zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrAlreadyRated
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE users
		SET rating_sum = rating_sum + $1,
			total_ratings = total_ratings + 1,
			rating = (rating_sum + $1)::double precision / (total_ratings + 1),
			updated_at = NOW()
		WHERE id = $2`,
		*o.Rating, o.SupplierID,
	)
	if err != nil {
		log.Error("failed to update supplier rating", zap.String("supplier_id", o.SupplierID.String()), zap.Error(err))
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("supplier %s not found", o.SupplierID)
	}

	if err := loadItems(ctx, tx, []*Order{o}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("page", f.Page),
		zap.Int("limit", f.Limit),
	)

	where := sq.And{partyCondition(f.Viewer)}
	if len(f.Statuses) > 0 {
		where = append(where, sq.Eq{"status": f.Statuses})
	}

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("orders").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	query, args, err := qb.Select(orderColumns...).
		From("orders").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		log.Error("failed to list orders", zap.Error(err))
		return nil, 0, err
	}

	ptrs := make([]*Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := loadItems(ctx, r.db, ptrs); err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, 0, err
	}

	log.Debug("orders listed", zap.Int("count", len(orders)), zap.Int("total", total))
	return orders, total, nil
}

func (r *repository) Counts(ctx context.Context, viewer Viewer) (*Counts, error) {
	query, args, err := qb.Select(
		"COUNT(*) AS total_orders",
		"COUNT(*) FILTER (WHERE status IN ('pending', 'confirmed')) AS pending_orders",
		"COUNT(*) FILTER (WHERE status = 'delivered') AS delivered_orders",
		"COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled_orders",
		"COALESCE(SUM(total_amount) FILTER (WHERE status = 'delivered'), 0) AS delivered_amount",
	).From("orders").Where(partyCondition(viewer)).ToSql()
	if err != nil {
		return nil, err
	}

	var c Counts
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		logger.FromCtx(ctx).Error("failed to aggregate orders",
			zap.String("user_id", viewer.UserID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &c, nil
}

func partyCondition(v Viewer) sq.Sqlizer {
	if v.Party == PartySupplier {
		return sq.Expr("supplier_id = ?", v.UserID)
	}
	return sq.Expr("vendor_id = ?", v.UserID)
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, lock bool) (*Order, error) {
	query := `SELECT ` + strings.Join(orderColumns, ", ") + ` FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var o Order
	if err := sqlx.GetContext(ctx, q, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.FromCtx(ctx).Error("failed to fetch order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}
	return &o, nil
}

func loadItems(ctx context.Context, q sqlx.QueryerContext, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = []Item{}
	}

	items := []Item{}
	err := sqlx.SelectContext(ctx, q, &items,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`,
		pq.Array(uuidStrings(ids)),
	)
	if err != nil {
		return err
	}

	for _, it := range items {
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
