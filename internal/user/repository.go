package user

import (
	"context"
	"database/sql"
	"errors"

	"bazaar-be/internal/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const userColumns = `id, name, email, password, role, phone, address, rating, rating_sum,
	total_ratings, is_active, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*User, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, password, role, phone, address, rating, rating_sum,
			total_ratings, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :password, :role, :phone, :address, :rating, :rating_sum,
			:total_ratings, :is_active, :created_at, :updated_at)`, u)
	if err != nil {
		if isUniqueViolation(err) {
			log.Info("email already registered", zap.String("email", u.Email))
			return ErrEmailExists
		}
		log.Error("failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.FromCtx(ctx).Error("failed to find user by email", zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.FromCtx(ctx).Error("failed to find user by id", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
