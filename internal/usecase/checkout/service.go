package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/gateway/payment"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/metrics"
	"github.com/Pesokrava/storefront/internal/pkg/money"
	"github.com/Pesokrava/storefront/internal/pkg/validator"
	"github.com/Pesokrava/storefront/internal/usecase/cart"
)

// Carts is the part of the cart service checkout depends on
type Carts interface {
	Get(ctx context.Context, owner domain.CartOwner) (*cart.View, error)
	Delete(ctx context.Context, owners ...domain.CartOwner) error
}

// PurchaseRecorder records purchase analytics for a paid order
type PurchaseRecorder interface {
	RecordPurchase(ctx context.Context, order *domain.Order) error
}

// EventGuard deduplicates gateway webhook deliveries
type EventGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// Input is what the shopper submits to place an order
type Input struct {
	Owner           domain.CartOwner       `json:"-"`
	Email           string                 `json:"email" validate:"omitempty,email"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
}

// Result is a placed order and what the client needs to pay for it
type Result struct {
	Order   *domain.Order          `json:"order"`
	Payment payment.Initialization `json:"payment"`
}

// Confirmation identifies a payment to confirm
type Confirmation struct {
	Reference string
	OrderID   *uuid.UUID
	// SessionID is the guest session whose cart is discarded on success
	SessionID string
}

// Service handles order placement and payment confirmation
type Service struct {
	orders   domain.OrderRepository
	carts    Carts
	gateway  payment.Gateway
	recorder PurchaseRecorder
	guard    EventGuard
	metrics  *metrics.Metrics
	currency string
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a new checkout service
func NewService(
	orders domain.OrderRepository,
	carts Carts,
	gateway payment.Gateway,
	recorder PurchaseRecorder,
	guard EventGuard,
	m *metrics.Metrics,
	currency string,
	log *logger.Logger,
) *Service {
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		orders:   orders,
		carts:    carts,
		gateway:  gateway,
		recorder: recorder,
		guard:    guard,
		metrics:  m,
		currency: currency,
		logger:   log,
		now:      time.Now,
	}
}

// CreateOrder snapshots the reconciled cart into a pending order and opens a payment.
// A cart corrected by reconciliation is rejected so the shopper sees the changes first.
func (s *Service) CreateOrder(ctx context.Context, in Input) (*Result, error) {
	if details, err := validator.Struct(in); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "validation failed").WithDetails(details)
	}
	email := in.Email
	if email == "" {
		email = in.ShippingAddress.Email
	}
	if in.Owner.IsGuest() && email == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "email is required for guest checkout")
	}

	view, err := s.carts.Get(ctx, in.Owner)
	if err != nil {
		return nil, err
	}
	if view.Cart.IsEmpty() {
		return nil, domain.NewError(domain.ErrInvalidInput, "cart is empty")
	}
	if !view.Reconciliation.IsValid {
		return nil, domain.NewError(domain.ErrStateConflict, "cart changed, review it before checkout").
			WithDetails(map[string]any{"reconciliation": view.Reconciliation})
	}

	order := &domain.Order{
		UserID:          in.Owner.UserID,
		Items:           orderItems(view.Cart),
		ShippingAddress: in.ShippingAddress,
		Total:           view.Cart.Subtotal,
		Currency:        s.currency,
		Status:          domain.OrderPending,
		PaymentStatus:   domain.PaymentPending,
	}
	if in.Owner.IsGuest() {
		order.GuestEmail = &email
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", err)
		return nil, err
	}

	init, err := s.gateway.InitializePayment(ctx, payment.InitRequest{
		OrderID:     order.ID,
		AmountMinor: money.ToMinor(order.Total),
		Currency:    order.Currency,
		Email:       email,
	})
	if err != nil {
		s.logger.Error("Failed to initialize payment", err)
		return nil, domain.WrapError(domain.ErrDependency, err, "payment provider unavailable")
	}

	if err := s.orders.SetPaymentReference(ctx, order.ID, init.Reference); err != nil {
		s.logger.Error("Failed to store payment reference", err)
		return nil, err
	}
	order.PaymentReference = &init.Reference

	s.logger.WithFields(map[string]any{
		"order_id":  order.ID,
		"total":     order.Total.String(),
		"reference": init.Reference,
	}).Info("Order placed")

	return &Result{Order: order, Payment: init}, nil
}

func orderItems(c *domain.Cart) domain.OrderItems {
	items := make(domain.OrderItems, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Image:     it.Image,
			Size:      it.Size,
			Color:     it.Color,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return items
}

func (s *Service) findOrder(ctx context.Context, c Confirmation, v payment.Verification) (*domain.Order, error) {
	if c.OrderID != nil {
		return s.orders.GetByID(ctx, *c.OrderID)
	}
	order, err := s.orders.GetByPaymentReference(ctx, c.Reference)
	if errors.Is(err, domain.ErrNotFound) && v.OrderID != "" {
		id, parseErr := uuid.Parse(v.OrderID)
		if parseErr != nil {
			return nil, err
		}
		return s.orders.GetByID(ctx, id)
	}
	return order, err
}

// paymentBelongsTo reports whether the verified payment was opened for the order.
// The gateway's order tag and the stored reference must both agree when present.
func paymentBelongsTo(order *domain.Order, reference string, v payment.Verification) bool {
	if v.OrderID != "" && v.OrderID != order.ID.String() {
		return false
	}
	if order.PaymentReference != nil {
		return *order.PaymentReference == reference
	}
	return v.OrderID != ""
}

// ConfirmPayment verifies a payment with the gateway and settles the order.
// Replays against an already paid order reserve nothing and record nothing twice.
func (s *Service) ConfirmPayment(ctx context.Context, c Confirmation) (*domain.Order, error) {
	if c.Reference == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "payment reference is required")
	}

	v, err := s.gateway.VerifyPayment(ctx, c.Reference)
	if err != nil {
		s.logger.Error("Failed to verify payment", err)
		s.metrics.IncPayment("verify_error")
		return nil, domain.WrapError(domain.ErrDependency, err, "payment provider unavailable")
	}

	order, err := s.findOrder(ctx, c, v)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithFields(map[string]any{
		"order_id":  order.ID,
		"reference": c.Reference,
	})

	if !paymentBelongsTo(order, c.Reference, v) {
		s.metrics.IncPayment("reference_mismatch")
		log.Warn("Payment reference does not belong to order")
		return nil, domain.NewError(domain.ErrStateConflict, "payment does not belong to this order")
	}

	if !v.Success {
		if err := s.orders.MarkPaymentFailed(ctx, order.ID, c.Reference); err != nil {
			log.Error("Failed to record payment failure", err)
			return nil, err
		}
		s.metrics.IncPayment("failed")
		log.Warnf("Payment not successful: %s", v.Status)
		return nil, domain.NewError(domain.ErrStateConflict, "payment was not successful").
			WithDetails(map[string]any{"gateway_status": v.Status})
	}

	expected := money.ToMinor(order.Total)
	if v.AmountMinor != expected {
		s.metrics.IncPayment("amount_mismatch")
		log.Warnf("Payment amount mismatch: expected %d, received %d", expected, v.AmountMinor)
		return nil, domain.NewError(domain.ErrAmountMismatch, "paid amount does not match order total").
			WithDetails(map[string]any{"expected": expected, "received": v.AmountMinor})
	}

	paidAt := s.now().UTC()
	if v.PaidAt != nil {
		paidAt = *v.PaidAt
	}
	transitioned, err := s.orders.MarkPaid(ctx, order.ID, domain.PaymentConfirmation{
		Reference:         c.Reference,
		AuthorizationCode: v.AuthorizationCode,
		PaidAt:            paidAt,
	})
	if err != nil {
		log.Error("Failed to mark order paid", err)
		return nil, err
	}

	s.reserve(ctx, order, log)

	if transitioned {
		s.metrics.IncPayment("confirmed")
		if err := s.recorder.RecordPurchase(ctx, order); err != nil {
			log.Warnf("Failed to record purchase analytics: %v", err)
		}
		log.Info("Payment confirmed")
	} else {
		s.metrics.IncPayment("replayed")
		log.Debug("Payment confirmation replayed")
	}

	owners := []domain.CartOwner{domain.GuestOwner(c.SessionID)}
	if order.UserID != nil {
		owners = append(owners, domain.UserOwner(*order.UserID))
	}
	if err := s.carts.Delete(ctx, owners...); err != nil {
		log.Warnf("Failed to delete carts after payment: %v", err)
	}

	return s.orders.GetByID(ctx, order.ID)
}

// reserve decrements stock once; failures never roll back the payment
func (s *Service) reserve(ctx context.Context, order *domain.Order, log *logger.Logger) {
	reserved, adjustments, err := s.orders.ReserveInventory(ctx, order.ID, order.StockLines())
	if err != nil {
		s.metrics.IncInventoryFailure("reserve")
		log.Error("Failed to reserve inventory", err)
		return
	}
	if !reserved {
		return
	}

	oversold := 0
	for _, adj := range adjustments {
		if adj.Remaining < 0 {
			oversold++
		}
	}
	if oversold > 0 {
		s.metrics.AddOversold(oversold)
		log.WithFields(map[string]any{"lines": oversold}).Warn("Inventory oversold")
	}
}

// HandleWebhook routes a verified gateway event into the confirmation workflow.
// Events are processed once; a failed event is forgotten so the gateway can redeliver it.
func (s *Service) HandleWebhook(ctx context.Context, event *payment.WebhookEvent) error {
	seen, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		s.logger.Error("Failed to check webhook idempotency", err)
		return domain.WrapError(domain.ErrDependency, err, "idempotency store unavailable")
	}
	if seen {
		s.logger.Debugf("Duplicate webhook event %s ignored", event.ID)
		return nil
	}

	if err := s.routeWebhook(ctx, event); err != nil {
		if forgetErr := s.guard.Forget(ctx, event.ID); forgetErr != nil {
			s.logger.Error("Failed to clear webhook idempotency key", forgetErr)
		}
		return err
	}
	return nil
}

func (s *Service) routeWebhook(ctx context.Context, event *payment.WebhookEvent) error {
	switch event.Type {
	case payment.EventPaymentSucceeded:
		_, err := s.ConfirmPayment(ctx, Confirmation{Reference: event.Reference})
		// a mismatch or failed verification is final for this event
		if errors.Is(err, domain.ErrAmountMismatch) || errors.Is(err, domain.ErrStateConflict) {
			s.logger.Warnf("Webhook %s not applied: %v", event.ID, err)
			return nil
		}
		return err
	case payment.EventPaymentFailed:
		order, err := s.orders.GetByPaymentReference(ctx, event.Reference)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("Webhook %s references unknown payment %s", event.ID, event.Reference)
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.orders.MarkPaymentFailed(ctx, order.ID, event.Reference); err != nil {
			return fmt.Errorf("mark payment failed: %w", err)
		}
		s.metrics.IncPayment("failed")
		return nil
	default:
		s.logger.Debugf("Ignoring webhook event type %s", event.Type)
		return nil
	}
}
