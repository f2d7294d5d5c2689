package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"bazaar-be/internal/apperr"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/rating"
	"bazaar-be/internal/user"
	"bazaar-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100

	recommendRecentOrders = 5
	recommendCategories   = 2
	recommendPerCategory  = 3
	recommendFallback     = 6
)

// UserReader resolves the supplier account behind a catalog write.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service interface {
	Categories() []CategoryOption
	Create(ctx context.Context, supplierID uuid.UUID, in CreateInput) (*Product, error)
	Update(ctx context.Context, supplierID, id uuid.UUID, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, supplierID, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ListFilter) (*ListResult, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, page, limit int) (*ListResult, error)
	Recommend(ctx context.Context, vendorID uuid.UUID) ([]Product, error)
	UpdateRating(ctx context.Context, id uuid.UUID, r int) (*Product, error)
	CountActiveBySupplier(ctx context.Context, supplierID uuid.UUID) (int, error)
}

type service struct {
	repo  Repository
	users UserReader
	now   func() time.Time
}

func NewService(repo Repository, users UserReader) Service {
	return &service{repo: repo, users: users, now: time.Now}
}

func (s *service) Categories() []CategoryOption {
	out := make([]CategoryOption, len(Categories))
	copy(out, Categories)
	return out
}

func (s *service) Create(ctx context.Context, supplierID uuid.UUID, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "CreateProduct"))

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.MinOrderQuantity == 0 {
		in.MinOrderQuantity = 1
	}

	if in.Name == "" || in.Price.IsZero() || in.Unit == "" || in.Stock == nil || in.Category == "" {
		return nil, ErrRequiredFields
	}

	now := s.now().UTC()
	p := &Product{
		ID:               uuid.New(),
		Name:             in.Name,
		Description:      in.Description,
		Price:            in.Price,
		Unit:             in.Unit,
		Stock:            *in.Stock,
		Category:         in.Category,
		ImageURL:         in.ImageURL,
		MinOrderQuantity: in.MinOrderQuantity,
		SupplierID:       supplierID,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	supplier, err := s.users.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier.Role != user.RoleSupplier {
		return nil, apperr.Forbidden("only suppliers can list products")
	}
	p.SupplierName = supplier.Name

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}

	log.Info("product created", zap.String("product_id", p.ID.String()), zap.String("supplier_id", supplierID.String()))
	return p, nil
}

func (s *service) Update(ctx context.Context, supplierID, id uuid.UUID, in UpdateInput) (*Product, error) {
	p, err := s.repo.UpdateTx(ctx, id, func(p *Product) error {
		if p.SupplierID != supplierID {
			return ErrNotOwner
		}

		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Unit != nil {
			p.Unit = *in.Unit
		}
		if in.Stock != nil {
			p.Stock = *in.Stock
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.ImageURL != nil {
			p.ImageURL = strings.TrimSpace(*in.ImageURL)
		}
		if in.MinOrderQuantity != nil {
			p.MinOrderQuantity = *in.MinOrderQuantity
		}
		p.UpdatedAt = s.now().UTC()

		if p.Name == "" {
			return ErrRequiredFields
		}
		return validate(p)
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, supplierID, id uuid.UUID) error {
	if _, err := s.owned(ctx, supplierID, id); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return apperr.Internal(err)
	}

	logger.FromCtx(ctx).Info("product deactivated", zap.String("product_id", id.String()))
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	if f.Category == "all" {
		f.Category = ""
	}
	if f.Category != "" && !f.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, ErrInvalidPriceSpan
	}

	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &ListResult{Products: products, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *service) ListBySupplier(ctx context.Context, supplierID uuid.UUID, page, limit int) (*ListResult, error) {
	return s.List(ctx, ListFilter{Page: page, Limit: limit, SupplierID: &supplierID})
}

// Recommend returns the top rated products of the vendor's most ordered
// categories, falling back to the catalog-wide top rated list.
func (s *service) Recommend(ctx context.Context, vendorID uuid.UUID) ([]Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Recommend"))

	categories, err := s.repo.TopCategoriesForVendor(ctx, vendorID, recommendRecentOrders, recommendCategories)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	recommended := []Product{}
	for _, c := range categories {
		products, err := s.repo.TopRated(ctx, c, recommendPerCategory)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		recommended = append(recommended, products...)
	}

	if len(recommended) == 0 {
		if recommended, err = s.repo.TopRated(ctx, "", recommendFallback); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	log.Debug("recommendations built", zap.Int("categories", len(categories)), zap.Int("count", len(recommended)))
	return recommended, nil
}

// UpdateRating folds one rating into the product's running mean. Order rating
// does not call this.
func (s *service) UpdateRating(ctx context.Context, id uuid.UUID, r int) (*Product, error) {
	if err := rating.Validate(r); err != nil {
		return nil, err
	}

	p, err := s.repo.ApplyRating(ctx, id, r)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *service) CountActiveBySupplier(ctx context.Context, supplierID uuid.UUID) (int, error) {
	n, err := s.repo.CountActiveBySupplier(ctx, supplierID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *service) owned(ctx context.Context, supplierID, id uuid.UUID) (*Product, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SupplierID != supplierID {
		return nil, ErrNotOwner
	}
	return p, nil
}

func validate(p *Product) error {
	switch {
	case utils.TooLong(p.Name, MaxNameLength):
		return ErrNameTooLong
	case utils.TooLong(p.Description, MaxDescriptionLength):
		return ErrDescriptionLong
	case !p.Price.IsPositive():
		return ErrInvalidPrice
	case !p.Price.Equal(p.Price.Round(MaxPriceDecimals)):
		return ErrPriceScale
	case p.Stock < 0:
		return ErrNegativeStock
	case !p.Unit.Valid():
		return ErrInvalidUnit
	case !p.Category.Valid():
		return ErrInvalidCategory
	case p.MinOrderQuantity < 1:
		return ErrInvalidMinOrder
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	} else if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}
