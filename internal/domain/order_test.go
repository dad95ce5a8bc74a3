package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderConfirmed, OrderProcessing, true},
		{OrderConfirmed, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderProcessing, false},
		{OrderDelivered, OrderShipped, false},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderReturned, true},
		{OrderShipped, OrderReturned, false},
		{OrderCancelled, OrderConfirmed, false},
		{OrderReturned, OrderDelivered, false},
		{OrderProcessing, OrderProcessing, false},
		{OrderPending, OrderStatus("lost"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			order := &Order{Status: tt.from}
			assert.Equal(t, tt.want, order.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_ApplyShipping_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	order := &Order{Status: OrderProcessing}

	order.ApplyShipping(now, nil, nil, 4*24*time.Hour, "AB12CD")

	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "TRK20260314AB12CD", *order.TrackingNumber)
	require.NotNil(t, order.EstimatedDelivery)
	assert.Equal(t, now.Add(96*time.Hour), *order.EstimatedDelivery)
}

func TestOrder_ApplyShipping_ExplicitValuesWin(t *testing.T) {
	now := time.Now()
	tracking := "1Z999"
	eta := now.Add(48 * time.Hour)
	order := &Order{Status: OrderProcessing}

	order.ApplyShipping(now, &tracking, &eta, 4*24*time.Hour, "XXXXXX")

	assert.Equal(t, "1Z999", *order.TrackingNumber)
	assert.Equal(t, eta, *order.EstimatedDelivery)
}

func TestOrderItems_ScanValue(t *testing.T) {
	var items OrderItems
	require.NoError(t, items.Scan([]byte(`[{"product_id":"6f1c1f52-4f0e-4c0e-9c55-1a3c1f3a6b11","name":"Tee","price":"19.99","quantity":2}]`)))
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "19.99", items[0].Price.String())

	require.NoError(t, items.Scan(nil))
	assert.Empty(t, items)
}
