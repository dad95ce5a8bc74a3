package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/mocks"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

var fixedNow = time.Date(2026, 7, 4, 15, 30, 0, 0, time.UTC)

func newTestService() (*Service, *mocks.OrderRepository, *mocks.Notifier) {
	orders := new(mocks.OrderRepository)
	notifier := new(mocks.Notifier)
	s := NewService(orders, notifier, 96*time.Hour, logger.New("test"))
	s.now = func() time.Time { return fixedNow }
	s.suffix = func() string { return "AB12CD" }
	return s, orders, notifier
}

func TestService_UpdateStatus_ShippedFillsTrackingAndETA(t *testing.T) {
	service, orders, notifier := newTestService()
	order := &domain.Order{ID: uuid.New(), Status: domain.OrderProcessing}

	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, order, domain.OrderProcessing).Return(nil)
	notifier.On("Submit", mock.Anything, domain.NotifyOrderShipped, order.ID).Return(nil)

	got, err := service.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: domain.OrderShipped})

	require.NoError(t, err)
	assert.Equal(t, "TRK20260704AB12CD", *got.TrackingNumber)
	assert.Equal(t, fixedNow.Add(96*time.Hour), *got.EstimatedDelivery)
	notifier.AssertExpectations(t)
}

func TestService_UpdateStatus_KeepsSuppliedTracking(t *testing.T) {
	service, orders, notifier := newTestService()
	order := &domain.Order{ID: uuid.New(), Status: domain.OrderConfirmed}
	tracking := "1Z999"

	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, order, domain.OrderConfirmed).Return(nil)
	notifier.On("Submit", mock.Anything, domain.NotifyOrderShipped, order.ID).Return(nil)

	got, err := service.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: domain.OrderShipped, TrackingNumber: &tracking})

	require.NoError(t, err)
	assert.Equal(t, "1Z999", *got.TrackingNumber)
}

func TestService_UpdateStatus_NotificationFailureIgnored(t *testing.T) {
	service, orders, notifier := newTestService()
	order := &domain.Order{ID: uuid.New(), Status: domain.OrderConfirmed}

	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, order, domain.OrderConfirmed).Return(nil)
	notifier.On("Submit", mock.Anything, domain.NotifyOrderProcessing, order.ID).Return(errors.New("nats down"))

	got, err := service.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: domain.OrderProcessing})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, got.Status)
}

func TestService_UpdateStatus_CancelDoesNotNotify(t *testing.T) {
	service, orders, notifier := newTestService()
	order := &domain.Order{ID: uuid.New(), Status: domain.OrderPending}

	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, order, domain.OrderPending).Return(nil)

	_, err := service.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: domain.OrderCancelled})

	require.NoError(t, err)
	notifier.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateStatus_InvalidTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.OrderStatus
		to   domain.OrderStatus
	}{
		{"backwards", domain.OrderShipped, domain.OrderProcessing},
		{"cancel after shipping", domain.OrderShipped, domain.OrderCancelled},
		{"return before delivery", domain.OrderShipped, domain.OrderReturned},
		{"terminal", domain.OrderCancelled, domain.OrderConfirmed},
		{"same status", domain.OrderConfirmed, domain.OrderConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, orders, _ := newTestService()
			order := &domain.Order{ID: uuid.New(), Status: tt.from}
			orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

			_, err := service.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: tt.to})

			assert.ErrorIs(t, err, domain.ErrStateConflict)
			orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_UpdateStatus_ConcurrentChange(t *testing.T) {
	service, orders, _ := newTestService()
	order := &domain.Order{ID: uuid.New(), Status: domain.OrderConfirmed}

	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, order, domain.OrderConfirmed).Return(domain.ErrConflict)

	_, err := service.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: domain.OrderDelivered})

	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestService_GetForUser_HidesOtherUsersOrders(t *testing.T) {
	service, orders, _ := newTestService()
	owner := uuid.New()
	order := &domain.Order{ID: uuid.New(), UserID: &owner}

	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := service.GetForUser(context.Background(), uuid.New(), order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := service.GetForUser(context.Background(), owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestRandomSuffix(t *testing.T) {
	s := randomSuffix()
	assert.Len(t, s, trackingSuffix)
	for _, r := range s {
		assert.Contains(t, trackingAlphabet, string(r))
	}
}
