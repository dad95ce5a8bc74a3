package refund

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/gateway/payment"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/metrics"
	"github.com/Pesokrava/storefront/internal/pkg/money"
	"github.com/Pesokrava/storefront/internal/pkg/validator"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Notifier submits customer notifications for an order
type Notifier interface {
	Submit(ctx context.Context, kind domain.NotificationKind, orderID uuid.UUID) error
}

// RequestInput is a customer's refund request
type RequestInput struct {
	Reason string `json:"reason" validate:"required,min=3,max=2000"`
}

// DecisionInput is an admin's note when approving or rejecting
type DecisionInput struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// Service handles the refund workflow
type Service struct {
	refunds  domain.RefundRepository
	orders   domain.OrderRepository
	gateway  payment.Gateway
	notifier Notifier
	metrics  *metrics.Metrics
	window   time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a new refund service; window bounds how long after payment a refund may be requested
func NewService(
	refunds domain.RefundRepository,
	orders domain.OrderRepository,
	gateway payment.Gateway,
	notifier Notifier,
	m *metrics.Metrics,
	window time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		refunds:  refunds,
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		metrics:  m,
		window:   window,
		logger:   log,
		now:      time.Now,
	}
}

// Request opens a refund for a paid order of the user, or reopens a rejected one
func (s *Service) Request(ctx context.Context, userID, orderID uuid.UUID, in RequestInput) (*domain.RefundRequest, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if details, err := validator.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid refund request").WithDetails(details)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// other users' orders are indistinguishable from missing ones
	if !order.BelongsTo(userID) {
		return nil, domain.ErrNotFound
	}
	if order.PaymentStatus != domain.PaymentPaid || order.PaidAt == nil {
		return nil, domain.NewError(domain.ErrStateConflict, "only paid orders can be refunded").
			WithDetails(map[string]any{"payment_status": order.PaymentStatus})
	}
	if elapsed := s.now().Sub(*order.PaidAt); elapsed > s.window {
		return nil, domain.NewError(domain.ErrRefundWindowExpired, "refund window has expired").
			WithDetails(map[string]any{"window_hours": s.window.Hours()})
	}

	existing, err := s.refunds.GetByOrderAndUser(ctx, orderID, userID)
	switch {
	case err == nil:
		if existing.Status != domain.RefundRejected {
			return nil, domain.NewError(domain.ErrStateConflict, "a refund request already exists for this order").
				WithDetails(map[string]any{"status": existing.Status})
		}
		refund, err := s.refunds.Resubmit(ctx, existing.ID, in.Reason)
		if err != nil {
			s.logger.Error("Failed to resubmit refund request", err)
			return nil, err
		}
		return refund, nil
	case !errors.Is(err, domain.ErrNotFound):
		s.logger.Error("Failed to look up refund request", err)
		return nil, err
	}

	refund := &domain.RefundRequest{
		OrderID: orderID,
		UserID:  userID,
		Reason:  in.Reason,
		Status:  domain.RefundPending,
	}
	if err := s.refunds.Create(ctx, refund); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.WrapError(domain.ErrStateConflict, err, "a refund request already exists for this order")
		}
		s.logger.Error("Failed to create refund request", err)
		return nil, err
	}

	s.logger.WithFields(map[string]any{
		"refund_id": refund.ID,
		"order_id":  orderID,
	}).Info("Refund requested")

	return refund, nil
}

func (s *Service) pending(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	refund, err := s.refunds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if refund.Status != domain.RefundPending {
		return nil, domain.NewError(domain.ErrStateConflict, "refund request is not pending").
			WithDetails(map[string]any{"status": refund.Status})
	}
	return refund, nil
}

// Approve refunds the order through the gateway, then records the decision and restocks.
// A gateway failure leaves the request pending and the order paid.
func (s *Service) Approve(ctx context.Context, adminID, id uuid.UUID, in DecisionInput) (*domain.RefundRequest, error) {
	if details, err := validator.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid refund decision").WithDetails(details)
	}

	refund, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, refund.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentPaid || order.PaymentReference == nil {
		return nil, domain.NewError(domain.ErrStateConflict, "order is not in a refundable state").
			WithDetails(map[string]any{"payment_status": order.PaymentStatus})
	}

	log := s.logger.WithFields(map[string]any{
		"refund_id": refund.ID,
		"order_id":  order.ID,
	})

	result, err := s.gateway.RefundPayment(ctx, *order.PaymentReference, money.ToMinor(order.Total), "refund-"+refund.ID.String())
	if err != nil {
		log.Error("Gateway refund failed", err)
		return nil, domain.WrapError(domain.ErrDependency, err, "payment provider refund failed")
	}
	if !result.Succeeded() {
		log.Warnf("Gateway refund declined: %s %s", result.Status, result.Message)
		return nil, domain.NewError(domain.ErrDependency, "payment provider declined the refund").
			WithDetails(map[string]any{"gateway_status": result.Status})
	}

	now := s.now().UTC()
	decision := domain.RefundDecision{
		RefundID: refund.ID,
		OrderID:  order.ID,
		AdminID:  adminID,
		Note:     in.Note,
		At:       now,
	}
	if err := s.refunds.Approve(ctx, decision); err != nil {
		log.Error("Failed to record refund approval after gateway refund", err)
		return nil, err
	}

	_, skipped, err := s.orders.RestoreInventory(ctx, order.ID, order.StockLines())
	if err != nil {
		s.metrics.IncInventoryFailure("restore")
		log.Error("Failed to restore inventory for refunded order", err)
	}
	if len(skipped) > 0 {
		s.metrics.AddUnrestored(len(skipped))
		for _, line := range skipped {
			fields := map[string]any{"product_id": line.ProductID, "quantity": line.Quantity}
			if line.VariantID != nil {
				fields["variant_id"] = *line.VariantID
			}
			log.WithFields(fields).Warn("Refunded line has no stock row to restore")
		}
	}

	if err := s.notifier.Submit(ctx, domain.NotifyRefundApproved, order.ID); err != nil {
		log.Error("Failed to submit refund notification", err)
	}

	log.Info("Refund approved")

	refund.Status = domain.RefundApproved
	refund.AdminNote = in.Note
	refund.ReviewedBy = &adminID
	refund.ReviewedAt = &now
	return refund, nil
}

// Reject closes a pending request without refunding
func (s *Service) Reject(ctx context.Context, adminID, id uuid.UUID, in DecisionInput) (*domain.RefundRequest, error) {
	if details, err := validator.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid refund decision").WithDetails(details)
	}

	refund, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.refunds.Reject(ctx, domain.RefundDecision{
		RefundID: refund.ID,
		OrderID:  refund.OrderID,
		AdminID:  adminID,
		Note:     in.Note,
		At:       now,
	}); err != nil {
		s.logger.Error("Failed to reject refund request", err)
		return nil, err
	}

	refund.Status = domain.RefundRejected
	refund.AdminNote = in.Note
	refund.ReviewedBy = &adminID
	refund.ReviewedAt = &now
	return refund, nil
}

// Get returns a refund request
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	return s.refunds.GetByID(ctx, id)
}

// ListForUser pages through the user's refund requests
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.RefundRequest, int, error) {
	return s.list(ctx, domain.RefundListFilter{UserID: &userID, Limit: limit, Offset: offset})
}

// List pages through all refund requests, optionally by status
func (s *Service) List(ctx context.Context, status domain.RefundStatus, limit, offset int) ([]*domain.RefundRequest, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.NewError(domain.ErrInvalidInput, "unknown refund status")
	}
	return s.list(ctx, domain.RefundListFilter{Status: status, Limit: limit, Offset: offset})
}

func (s *Service) list(ctx context.Context, filter domain.RefundListFilter) ([]*domain.RefundRequest, int, error) {
	if filter.Limit <= 0 || filter.Limit > maxLimit {
		filter.Limit = defaultLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	refunds, err := s.refunds.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list refund requests", err)
		return nil, 0, err
	}
	total, err := s.refunds.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count refund requests", err)
		return nil, 0, err
	}
	return refunds, total, nil
}
