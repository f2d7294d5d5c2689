package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"bazaar-be/internal/apperr"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/metrics"
	"bazaar-be/internal/user"
	"bazaar-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Counter names published by the order engine.
const (
	MetricCreated        = "orders_created"
	MetricRejected       = "orders_rejected"
	MetricStatusChanges  = "order_status_changes"
	MetricRated          = "orders_rated"
	MetricIllegalChanges = "order_illegal_transitions"
)

var ErrVendorOnly = apperr.Forbidden("only vendors can place orders")

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type ProductCounter interface {
	CountActiveBySupplier(ctx context.Context, supplierID uuid.UUID) (int, error)
}

type Service interface {
	Create(ctx context.Context, vendorID uuid.UUID, in CreateInput) (*Order, error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*Order, error)
	List(ctx context.Context, viewer Viewer, status string, page, limit int) (*ListResult, error)
	UpdateStatus(ctx context.Context, supplierID, id uuid.UUID, status string) (*Order, error)
	Rate(ctx context.Context, vendorID, id uuid.UUID, in RateInput) (*Order, error)
	Dashboard(ctx context.Context, viewer Viewer) (*DashboardStats, error)
}

type service struct {
	repo     Repository
	users    UserReader
	products ProductCounter
	metrics  *metrics.Registry
	now      func() time.Time
}

func NewService(repo Repository, users UserReader, products ProductCounter, reg *metrics.Registry) Service {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &service{repo: repo, users: users, products: products, metrics: reg, now: time.Now}
}

func (s *service) Create(ctx context.Context, vendorID uuid.UUID, in CreateInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("vendor_id", vendorID.String()),
	)

	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateCreate(in); err != nil {
		s.metrics.Counter(MetricRejected).Inc()
		return nil, err
	}
	in.Items = MergeItems(in.Items)

	account, err := s.users.GetByID(ctx, vendorID)
	if err != nil {
		return nil, passThrough(err)
	}
	if account.Role != user.RoleVendor {
		return nil, ErrVendorOnly
	}
	vendor := Vendor{ID: account.ID, Name: account.Name, Email: account.Email}

	o, err := s.repo.CreateOrderTx(ctx, ProductIDs(in.Items), func(lines []CatalogLine) (*Order, error) {
		return BuildOrder(vendor, in, lines, s.now().UTC())
	})
	if err != nil {
		s.metrics.Counter(MetricRejected).Inc()
		if apperr.KindOf(err) == apperr.KindInternal {
			log.Error("order creation failed", zap.Error(err))
		}
		return nil, passThrough(err)
	}

	s.metrics.Counter(MetricCreated).Inc()
	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)
	return o, nil
}

func (s *service) Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, passThrough(err)
	}
	if !o.VisibleTo(viewer.UserID) {
		return nil, ErrNotOrderParty
	}
	return o, nil
}

func (s *service) List(ctx context.Context, viewer Viewer, status string, page, limit int) (*ListResult, error) {
	statuses, err := StatusFilter(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	orders, total, err := s.repo.List(ctx, ListFilter{Viewer: viewer, Statuses: statuses, Page: page, Limit: limit})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &ListResult{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

func (s *service) UpdateStatus(ctx context.Context, supplierID, id uuid.UUID, status string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id.String()),
	)

	next, err := ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}

	var from Status
	o, err := s.repo.UpdateStatusTx(ctx, id, func(o *Order) error {
		if o.SupplierID != supplierID {
			return ErrNotOrderSupplier
		}
		from = o.Status
		return o.Transition(next, s.now().UTC())
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			s.metrics.Counter(MetricIllegalChanges).Inc()
		}
		return nil, passThrough(err)
	}

	s.metrics.Counter(MetricStatusChanges).Inc()
	log.Info("order status changed", zap.String("from", string(from)), zap.String("to", string(next)))
	return o, nil
}

func (s *service) Rate(ctx context.Context, vendorID, id uuid.UUID, in RateInput) (*Order, error) {
	review := strings.TrimSpace(in.Review)

	o, err := s.repo.RateOrderTx(ctx, id, func(o *Order) error {
		return o.Rate(vendorID, in.Rating, review, s.now().UTC())
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.metrics.Counter(MetricRated).Inc()
	logger.FromCtx(ctx).Info("order rated",
		zap.String("order_id", o.ID.String()),
		zap.String("supplier_id", o.SupplierID.String()),
		zap.Int("rating", in.Rating),
	)
	return o, nil
}

func (s *service) Dashboard(ctx context.Context, viewer Viewer) (*DashboardStats, error) {
	c, err := s.repo.Counts(ctx, viewer)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	stats := &DashboardStats{
		TotalOrders:     c.TotalOrders,
		PendingOrders:   c.PendingOrders,
		DeliveredOrders: c.DeliveredOrders,
		CancelledOrders: c.CancelledOrders,
	}

	amount := c.DeliveredAmount
	if viewer.Party == PartySupplier {
		n, err := s.products.CountActiveBySupplier(ctx, viewer.UserID)
		if err != nil {
			return nil, passThrough(err)
		}
		stats.TotalRevenue = &amount
		stats.TotalProducts = &n
	} else {
		stats.TotalSpent = &amount
	}
	return stats, nil
}

func validateCreate(in CreateInput) error {
	switch {
	case len(in.Items) == 0:
		return ErrItemsRequired
	case in.DeliveryAddress == "" || in.Phone == "":
		return ErrContactRequired
	case utils.TooLong(in.DeliveryAddress, MaxAddressLength):
		return ErrAddressTooLong
	case utils.TooLong(in.Phone, MaxPhoneLength):
		return ErrPhoneTooLong
	case utils.TooLong(in.Notes, MaxNotesLength):
		return ErrNotesTooLong
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

// passThrough keeps domain errors and hides everything else.
func passThrough(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(err)
}
