package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a product analytics event
type EventType string

const (
	EventView      EventType = "view"
	EventAddToCart EventType = "add_to_cart"
	EventPurchase  EventType = "purchase"
)

// Valid reports whether the type is known
func (t EventType) Valid() bool {
	return t == EventView || t == EventAddToCart || t == EventPurchase
}

// ProductEvent is an immutable analytics log entry
type ProductEvent struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	Type      EventType  `json:"type"`
	Quantity  int        `json:"quantity"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// EventBucket aggregates event quantities within one time slot
type EventBucket struct {
	Start      time.Time `json:"start"`
	Views      int       `json:"views"`
	AddToCarts int       `json:"add_to_carts"`
	Purchases  int       `json:"purchases"`
}

// ProductEventRepository defines the interface for the append-only event log
type ProductEventRepository interface {
	// Append stores events
	Append(ctx context.Context, events ...*ProductEvent) error

	// Buckets aggregates a product's events between from and to per interval ("hour" or "day")
	Buckets(ctx context.Context, productID uuid.UUID, from, to time.Time, interval string) ([]EventBucket, error)
}
