package grouporder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"bazaar-be/internal/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var columns = strings.Join([]string{
	"id", "name", "created_by", "participants", "total_cost", "is_confirmed", "created_at", "updated_at",
}, ", ")

type Repository interface {
	Create(ctx context.Context, g *GroupOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*GroupOrder, error)
	// Join appends the participant unless that vendor is already in.
	Join(ctx context.Context, id uuid.UUID, p Participant) (*GroupOrder, error)
	List(ctx context.Context) ([]GroupOrder, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *GroupOrder) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO group_orders (`+columns+`)
		VALUES (:id, :name, :created_by, :participants, :total_cost, :is_confirmed, :created_at, :updated_at)`, g)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert group order", zap.String("created_by", g.CreatedBy.String()), zap.Error(err))
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*GroupOrder, error) {
	var g GroupOrder
	err := r.db.GetContext(ctx, &g, `SELECT `+columns+` FROM group_orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) Join(ctx context.Context, id uuid.UUID, p Participant) (*GroupOrder, error) {
	entry, err := json.Marshal(Participants{p})
	if err != nil {
		return nil, err
	}
	member, err := json.Marshal([]map[string]uuid.UUID{{"vendor": p.VendorID}})
	if err != nil {
		return nil, err
	}

	var g GroupOrder
	err = r.db.GetContext(ctx, &g, `
		UPDATE group_orders
		SET participants = participants || $1::jsonb, updated_at = NOW()
		WHERE id = $2 AND NOT participants @> $3::jsonb
		RETURNING `+columns,
		string(entry), id, string(member),
	)
	if err == nil {
		return &g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.FromCtx(ctx).Error("failed to join group order", zap.String("group_order_id", id.String()), zap.Error(err))
		return nil, err
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyJoined
}

func (r *repository) List(ctx context.Context) ([]GroupOrder, error) {
	out := []GroupOrder{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+columns+` FROM group_orders ORDER BY created_at DESC`)
	return out, err
}
