package grouporder

import (
	"context"
	"errors"
	"strings"
	"time"

	"bazaar-be/internal/apperr"
	"bazaar-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, vendorID uuid.UUID, in CreateInput) (*GroupOrder, error)
	Join(ctx context.Context, vendorID, id uuid.UUID, in JoinInput) (*GroupOrder, error)
	List(ctx context.Context) ([]GroupOrder, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, vendorID uuid.UUID, in CreateInput) (*GroupOrder, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	now := s.now().UTC()
	g := &GroupOrder{
		ID:           uuid.New(),
		Name:         name,
		CreatedBy:    vendorID,
		Participants: Participants{},
		TotalCost:    decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, apperr.Internal(err)
	}

	logger.FromCtx(ctx).Info("group order created", zap.String("group_order_id", g.ID.String()))
	return g, nil
}

func (s *service) Join(ctx context.Context, vendorID, id uuid.UUID, in JoinInput) (*GroupOrder, error) {
	items := in.Items
	if items == nil {
		items = []ParticipantItem{}
	}

	g, err := s.repo.Join(ctx, id, Participant{VendorID: vendorID, Items: items})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyJoined) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return g, nil
}

func (s *service) List(ctx context.Context) ([]GroupOrder, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
