package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/gateway/email"
	"github.com/Pesokrava/storefront/internal/gateway/payment"
)

// PaymentGateway is a mock implementation of payment.Gateway
type PaymentGateway struct {
	mock.Mock
}

func (m *PaymentGateway) InitializePayment(ctx context.Context, req payment.InitRequest) (payment.Initialization, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.Initialization), args.Error(1)
}

func (m *PaymentGateway) VerifyPayment(ctx context.Context, reference string) (payment.Verification, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(payment.Verification), args.Error(1)
}

func (m *PaymentGateway) RefundPayment(ctx context.Context, reference string, amountMinor int64, idempotencyKey string) (payment.RefundResult, error) {
	args := m.Called(ctx, reference, amountMinor, idempotencyKey)
	return args.Get(0).(payment.RefundResult), args.Error(1)
}

// EmailSender is a mock implementation of email.Sender
type EmailSender struct {
	mock.Mock
}

func (m *EmailSender) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// SMSSender is a mock implementation of sms.Sender
type SMSSender struct {
	mock.Mock
}

func (m *SMSSender) Send(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

// Notifier records notification submissions
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Submit(ctx context.Context, kind domain.NotificationKind, orderID uuid.UUID) error {
	return m.Called(ctx, kind, orderID).Error(0)
}

// EventRecorder records analytics calls
type EventRecorder struct {
	mock.Mock
}

func (m *EventRecorder) Record(ctx context.Context, productID uuid.UUID, eventType domain.EventType, quantity int, userID *uuid.UUID) error {
	return m.Called(ctx, productID, eventType, quantity, userID).Error(0)
}

func (m *EventRecorder) RecordPurchase(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}
