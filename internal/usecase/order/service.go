package order

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingSuffix   = 6
)

// Notifier submits customer notifications for an order
type Notifier interface {
	Submit(ctx context.Context, kind domain.NotificationKind, orderID uuid.UUID) error
}

// StatusUpdate is an admin's request to move an order
type StatusUpdate struct {
	Status            domain.OrderStatus `json:"status" validate:"required"`
	TrackingNumber    *string            `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time         `json:"estimated_delivery,omitempty"`
}

// Service handles the order lifecycle
type Service struct {
	orders   domain.OrderRepository
	notifier Notifier
	leadTime time.Duration
	logger   *logger.Logger
	now      func() time.Time
	suffix   func() string
}

// NewService creates a new order service
func NewService(orders domain.OrderRepository, notifier Notifier, shippingLeadTime time.Duration, log *logger.Logger) *Service {
	return &Service{
		orders:   orders,
		notifier: notifier,
		leadTime: shippingLeadTime,
		logger:   log,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

func randomSuffix() string {
	b := make([]byte, trackingSuffix)
	max := big.NewInt(int64(len(trackingAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(int64(time.Now().UnixNano() % int64(len(trackingAlphabet))))
		}
		b[i] = trackingAlphabet[n.Int64()]
	}
	return string(b)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetForUser returns an order placed by the user
func (s *Service) GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// other users' orders look missing
	if !order.BelongsTo(userID) {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// Get returns any order
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get order", err)
		}
		return nil, err
	}
	return order, nil
}

// ListForUser pages through the user's orders
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, int, error) {
	limit, offset = normalizePage(limit, offset)
	return s.list(ctx, domain.OrderListFilter{UserID: &userID, Limit: limit, Offset: offset})
}

// List pages through all orders, optionally by status
func (s *Service) List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidInput, "unknown order status")
	}
	limit, offset = normalizePage(limit, offset)
	return s.list(ctx, domain.OrderListFilter{Status: status, Limit: limit, Offset: offset})
}

func (s *Service) list(ctx context.Context, filter domain.OrderListFilter) ([]*domain.Order, int, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list orders", err)
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count orders", err)
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves an order along its lifecycle and notifies the customer.
// Notification failures never fail the update.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, in StatusUpdate) (*domain.Order, error) {
	if !in.Status.Valid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "unknown order status")
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !order.CanTransitionTo(in.Status) {
		return nil, domain.NewError(domain.ErrStateConflict, "order status transition not allowed").
			WithDetails(map[string]any{"from": from, "to": in.Status})
	}

	order.Status = in.Status
	if in.Status == domain.OrderShipped {
		order.ApplyShipping(s.now().UTC(), in.TrackingNumber, in.EstimatedDelivery, s.leadTime, s.suffix())
	}

	if err := s.orders.UpdateStatus(ctx, order, from); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.WrapError(domain.ErrStateConflict, err, "order was modified concurrently")
		}
		s.logger.Error("Failed to update order status", err)
		return nil, err
	}

	log := s.logger.WithFields(map[string]any{
		"order_id": order.ID,
		"from":     from,
		"to":       order.Status,
	})
	log.Info("Order status updated")

	if kind, ok := domain.NotificationKindFor(order.Status); ok {
		if err := s.notifier.Submit(ctx, kind, order.ID); err != nil {
			log.Error("Failed to submit order notification", err)
		}
	}

	return order, nil
}
