package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bazaar-be/internal/logger"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var productColumns = []string{
	"id", "name", "description", "price", "unit", "stock", "category", "image_url",
	"min_order_quantity", "supplier_id", "supplier_name", "rating", "rating_sum",
	"total_ratings", "total_orders", "is_active", "created_at", "updated_at",
}

var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"price":       "price",
	"rating":      "rating",
	"name":        "name",
	"stock":       "stock",
	"totalOrders": "total_orders",
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateTx(ctx context.Context, id uuid.UUID, apply func(*Product) error) (*Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]Product, int, error)
	CountActiveBySupplier(ctx context.Context, supplierID uuid.UUID) (int, error)
	TopCategoriesForVendor(ctx context.Context, vendorID uuid.UUID, recentOrders, n int) ([]Category, error)
	TopRated(ctx context.Context, category Category, limit int) ([]Product, error)
	ApplyRating(ctx context.Context, id uuid.UUID, r int) (*Product, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	query, args, err := qb.Insert("products").
		Columns(productColumns...).
		Values(p.ID, p.Name, p.Description, p.Price, p.Unit, p.Stock, p.Category, p.ImageURL,
			p.MinOrderQuantity, p.SupplierID, p.SupplierName, p.Rating, p.RatingSum,
			p.TotalRatings, p.TotalOrders, p.IsActive, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromCtx(ctx).Error("failed to insert product",
			zap.String("layer", "repository"),
			zap.String("supplier_id", p.SupplierID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query, args, err := qb.Select(productColumns...).From("products").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}

	var p Product
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.FromCtx(ctx).Error("failed to fetch product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// UpdateTx locks the product row, applies the patch and writes the editable
// columns back. Stock comes from the locked row unless apply changes it, so
// decrements committed by concurrent orders are kept.
func (r *repository) UpdateTx(ctx context.Context, id uuid.UUID, apply func(*Product) error) (*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"), zap.String("method", "UpdateTx"))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query, args, err := qb.Select(productColumns...).
		From("products").
		Where("id = ?", id).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	var p Product
	if err := tx.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		log.Error("failed to lock product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}

	if err := apply(&p); err != nil {
		return nil, err
	}

	query, args, err = qb.Update("products").
		SetMap(map[string]interface{}{
			"name":               p.Name,
			"description":        p.Description,
			"price":              p.Price,
			"unit":               p.Unit,
			"stock":              p.Stock,
			"category":           p.Category,
			"image_url":          p.ImageURL,
			"min_order_quantity": p.MinOrderQuantity,
			"updated_at":         p.UpdatedAt,
		}).
		Where("id = ?", p.ID).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to deactivate product", zap.String("product_id", id.String()), zap.Error(err))
		return err
	}
	return requireOneRow(res)
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Product, int, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"), zap.String("method", "List"))

	where := sq.And{sq.Eq{"is_active": true}}
	if f.Category != "" {
		where = append(where, sq.Eq{"category": f.Category})
	}
	if f.SupplierID != nil {
		where = append(where, sq.Expr("supplier_id = ?", *f.SupplierID))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		where = append(where, sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"supplier_name": pattern},
		})
	}
	if f.MinPrice != nil {
		where = append(where, sq.GtOrEq{"price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		where = append(where, sq.LtOrEq{"price": *f.MaxPrice})
	}

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("products").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, 0, err
	}

	query, args, err := qb.Select(productColumns...).
		From("products").
		Where(where).
		OrderBy(orderClause(f.SortBy, f.SortOrder), "id").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	products := []Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) CountActiveBySupplier(ctx context.Context, supplierID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM products WHERE supplier_id = $1 AND is_active = TRUE`, supplierID)
	return n, err
}

func (r *repository) TopCategoriesForVendor(ctx context.Context, vendorID uuid.UUID, recentOrders, n int) ([]Category, error) {
	categories := []Category{}
	err := r.db.SelectContext(ctx, &categories, `
		WITH recent AS (
			SELECT id FROM orders WHERE vendor_id = $1 ORDER BY created_at DESC LIMIT $2
		)
		SELECT p.category
		FROM order_items oi
		JOIN recent ro ON ro.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		GROUP BY p.category
		ORDER BY COUNT(*) DESC, p.category
		LIMIT $3`,
		vendorID, recentOrders, n,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to rank vendor categories", zap.String("vendor_id", vendorID.String()), zap.Error(err))
		return nil, err
	}
	return categories, nil
}

func (r *repository) TopRated(ctx context.Context, category Category, limit int) ([]Product, error) {
	where := sq.And{sq.Eq{"is_active": true}}
	if category != "" {
		where = append(where, sq.Eq{"category": category})
	}

	query, args, err := qb.Select(productColumns...).
		From("products").
		Where(where).
		OrderBy("rating DESC", "total_orders DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	products := []Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}
	return products, nil
}

// ApplyRating folds r into the product's running mean in a single statement.
func (r *repository) ApplyRating(ctx context.Context, id uuid.UUID, rating int) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `
		UPDATE products
		SET rating_sum = rating_sum + $1,
			total_ratings = total_ratings + 1,
			rating = (rating_sum + $1)::double precision / (total_ratings + 1),
			updated_at = NOW()
		WHERE id = $2
		RETURNING `+strings.Join(productColumns, ", "),
		rating, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.FromCtx(ctx).Error("failed to apply product rating", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func orderClause(sortBy, sortOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", col, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
