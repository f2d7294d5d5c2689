package product

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "postgres")), mock
}

func productRows(ps ...Product) *sqlmock.Rows {
	rows := sqlmock.NewRows(productColumns)
	for _, p := range ps {
		rows.AddRow(p.ID.String(), p.Name, p.Description, p.Price.String(), string(p.Unit), p.Stock,
			string(p.Category), p.ImageURL, p.MinOrderQuantity, p.SupplierID.String(), p.SupplierName,
			p.Rating, p.RatingSum, p.TotalRatings, p.TotalOrders, p.IsActive, p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func sampleProduct() Product {
	now := time.Now().UTC()
	return Product{
		ID: uuid.New(), Name: "Onion", Price: decimal.RequireFromString("32.50"), Unit: UnitKg,
		Stock: 50, Category: "vegetables", MinOrderQuantity: 2, SupplierID: uuid.New(),
		SupplierName: "Fresh Farms", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := sampleProduct()

	mock.ExpectExec(`INSERT INTO products \(id,name,description,price`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Create(context.Background(), &p))

	mock.ExpectExec(`INSERT INTO products`).WillReturnError(errors.New("check constraint"))
	assert.Error(t, repo.Create(context.Background(), &p))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := sampleProduct()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, .* FROM products WHERE id = \$1`).
			WithArgs(p.ID).
			WillReturnRows(productRows(p))

		got, err := repo.FindByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.True(t, p.Price.Equal(got.Price))
		assert.Equal(t, 2, got.MinOrderQuantity)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM products WHERE id = \$1`).
			WithArgs(p.ID).
			WillReturnRows(sqlmock.NewRows(productColumns))

		_, err := repo.FindByID(context.Background(), p.ID)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := sampleProduct()
	minPrice := decimal.NewFromInt(10)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE \(is_active = \$1 AND category = \$2 AND \(name ILIKE \$3 OR description ILIKE \$4 OR supplier_name ILIKE \$5\) AND price >= \$6\)`).
		WithArgs(true, Category("vegetables"), "%oni%", "%oni%", "%oni%", minPrice).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))

	mock.ExpectQuery(`SELECT id, name, .* FROM products WHERE .* ORDER BY price ASC, id LIMIT 12 OFFSET 12`).
		WillReturnRows(productRows(p))

	products, total, err := repo.List(context.Background(), ListFilter{
		Page: 2, Limit: 12, Category: "vegetables", Search: "oni", MinPrice: &minPrice,
		SortBy: "price", SortOrder: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, 13, total)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateTx(t *testing.T) {
	p := sampleProduct()

	t.Run("Keeps locked stock", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		locked := p
		locked.Stock = 47

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, name, .* FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(p.ID).
			WillReturnRows(productRows(locked))
		mock.ExpectExec(`UPDATE products SET category = \$1, .* WHERE id = \$10`).
			WithArgs(Category("vegetables"), "", "", 2, "Red Onion", sqlmock.AnyArg(), 47, UnitKg, sqlmock.AnyArg(), p.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		got, err := repo.UpdateTx(context.Background(), p.ID, func(p *Product) error {
			p.Name = "Red Onion"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 47, got.Stock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Apply error rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(p.ID).
			WillReturnRows(productRows(p))
		mock.ExpectRollback()

		_, err := repo.UpdateTx(context.Background(), p.ID, func(*Product) error { return ErrNotOwner })
		assert.ErrorIs(t, err, ErrNotOwner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
			WithArgs(p.ID).
			WillReturnRows(sqlmock.NewRows(productColumns))
		mock.ExpectRollback()

		_, err := repo.UpdateTx(context.Background(), p.ID, func(*Product) error { return nil })
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_SoftDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE products SET is_active = FALSE`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SoftDelete(context.Background(), id))

	mock.ExpectExec(`UPDATE products SET is_active = FALSE`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), id), ErrProductNotFound)
}

func TestRepository_ApplyRating(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := sampleProduct()
	p.RatingSum, p.TotalRatings, p.Rating = 9, 2, 4.5

	mock.ExpectQuery(`UPDATE products\s+SET rating_sum = rating_sum \+ \$1,\s+total_ratings = total_ratings \+ 1,\s+rating = \(rating_sum \+ \$1\)::double precision / \(total_ratings \+ 1\)`).
		WithArgs(5, p.ID).
		WillReturnRows(productRows(p))

	got, err := repo.ApplyRating(context.Background(), p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Rating)
}

func TestRepository_TopCategoriesForVendor(t *testing.T) {
	repo, mock := newMockRepo(t)
	vendorID := uuid.New()

	mock.ExpectQuery(`WITH recent AS`).
		WithArgs(vendorID, 5, 2).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("spices").AddRow("oils"))

	got, err := repo.TopCategoriesForVendor(context.Background(), vendorID, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, []Category{"spices", "oils"}, got)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderClause("", ""))
	assert.Equal(t, "created_at DESC", orderClause("password; DROP", "asc; --"))
	assert.Equal(t, "total_orders ASC", orderClause("totalOrders", "ASC"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
	assert.False(t, strings.Contains(escapeLike("plain"), `\`))
}
