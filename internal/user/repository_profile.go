package user

import (
	"context"
	"database/sql"
	"errors"

	"bazaar-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateProfile overwrites the editable profile fields and returns the stored user.
func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProfile"),
		zap.String("user_id", id.String()),
	)

	var u User
	err := r.db.GetContext(ctx, &u, `
		UPDATE users
		SET name = $1, phone = $2, address = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+userColumns,
		in.Name, in.Phone, in.Address, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error("failed to update profile", zap.Error(err))
		return nil, err
	}

	log.Info("profile updated")
	return &u, nil
}
