package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderReturned   OrderStatus = "returned"
)

// PaymentStatus is the financial state of an order
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// forward progression; cancelled and returned sit outside it
var orderRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderProcessing: 2,
	OrderShipped:    3,
	OrderDelivered:  4,
}

// Valid reports whether the status is known
func (s OrderStatus) Valid() bool {
	if _, ok := orderRank[s]; ok {
		return true
	}
	return s == OrderCancelled || s == OrderReturned
}

// Terminal reports whether no further transitions are allowed
func (s OrderStatus) Terminal() bool {
	return s == OrderCancelled || s == OrderReturned
}

// Notifiable reports whether entering the status notifies the customer
func (s OrderStatus) Notifiable() bool {
	return s == OrderProcessing || s == OrderShipped || s == OrderDelivered
}

// OrderItem is an immutable snapshot of a cart line taken at checkout
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderItems is stored as a JSONB column
type OrderItems []OrderItem

// Value implements driver.Valuer
func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner
func (items *OrderItems) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*items = OrderItems{}
		return nil
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	default:
		return errors.New("order items: unsupported column type")
	}
}

// ShippingAddress is where an order is delivered; stored as JSONB
type ShippingAddress struct {
	FullName   string `json:"full_name" validate:"required,max=200"`
	Phone      string `json:"phone,omitempty" validate:"max=32"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2,omitempty" validate:"max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// Value implements driver.Valuer
func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *ShippingAddress) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ShippingAddress{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("shipping address: unsupported column type")
	}
}

// Order is a purchase placed at checkout
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	GuestEmail        *string         `json:"guest_email,omitempty" db:"guest_email"`
	Items             OrderItems      `json:"items" db:"items"`
	ShippingAddress   ShippingAddress `json:"shipping_address" db:"shipping_address"`
	Total             decimal.Decimal `json:"total" db:"total"`
	Currency          string          `json:"currency" db:"currency"`
	Status            OrderStatus     `json:"status" db:"status"`
	PaymentStatus     PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentReference  *string         `json:"payment_reference,omitempty" db:"payment_reference"`
	AuthorizationCode *string         `json:"authorization_code,omitempty" db:"authorization_code"`
	PaidAt            *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	TrackingNumber    *string         `json:"tracking_number,omitempty" db:"tracking_number"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty" db:"estimated_delivery"`
	InventoryReserved bool            `json:"inventory_reserved" db:"inventory_reserved"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// BelongsTo reports whether the order was placed by the user
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// CanTransitionTo reports whether an admin may move the order to next
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() || o.Status.Terminal() || next == o.Status {
		return false
	}
	switch next {
	case OrderCancelled:
		return o.Status == OrderPending || o.Status == OrderConfirmed || o.Status == OrderProcessing
	case OrderReturned:
		return o.Status == OrderDelivered
	}
	return orderRank[next] > orderRank[o.Status]
}

// ApplyShipping fills tracking number and ETA for a shipped order when not supplied
func (o *Order) ApplyShipping(now time.Time, tracking *string, eta *time.Time, leadTime time.Duration, suffix string) {
	if tracking != nil && *tracking != "" {
		o.TrackingNumber = tracking
	} else if o.TrackingNumber == nil {
		tn := "TRK" + now.Format("20060102") + suffix
		o.TrackingNumber = &tn
	}
	if eta != nil {
		o.EstimatedDelivery = eta
	} else if o.EstimatedDelivery == nil {
		d := now.Add(leadTime)
		o.EstimatedDelivery = &d
	}
}

// StockLines converts the order items into reservation lines
func (o *Order) StockLines() []StockLine {
	lines := make([]StockLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, StockLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// ContactPhone returns the shipping phone when present
func (o *Order) ContactPhone() string {
	return o.ShippingAddress.Phone
}

// ContactEmail returns the best known email on the order itself
func (o *Order) ContactEmail() string {
	if o.ShippingAddress.Email != "" {
		return o.ShippingAddress.Email
	}
	if o.GuestEmail != nil {
		return *o.GuestEmail
	}
	return ""
}

// PaymentConfirmation carries the gateway metadata persisted when an order is paid
type PaymentConfirmation struct {
	Reference         string
	AuthorizationCode string
	PaidAt            time.Time
}

// OrderListFilter narrows order listings
type OrderListFilter struct {
	UserID *uuid.UUID
	Status OrderStatus
	Limit  int
	Offset int
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create stores a new order
	Create(ctx context.Context, order *Order) error

	// GetByID retrieves an order
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByPaymentReference retrieves the order carrying the gateway reference
	GetByPaymentReference(ctx context.Context, reference string) (*Order, error)

	// List retrieves a page of orders
	List(ctx context.Context, filter OrderListFilter) ([]*Order, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter OrderListFilter) (int, error)

	// SetPaymentReference records the reference issued when payment was initialized
	SetPaymentReference(ctx context.Context, id uuid.UUID, reference string) error

	// MarkPaid moves payment to paid and status to confirmed unless already paid.
	// It reports whether this call performed the transition.
	MarkPaid(ctx context.Context, id uuid.UUID, confirmation PaymentConfirmation) (bool, error)

	// MarkPaymentFailed records a failed verification unless the order is already paid
	MarkPaymentFailed(ctx context.Context, id uuid.UUID, reference string) error

	// UpdateStatus persists status, tracking number and ETA when the current status still matches
	UpdateStatus(ctx context.Context, order *Order, from OrderStatus) error

	// ReserveInventory decrements stock for the lines once per order.
	// It reports whether this call performed the reservation.
	ReserveInventory(ctx context.Context, id uuid.UUID, lines []StockLine) (bool, []StockAdjustment, error)

	// RestoreInventory increments stock back for a reserved order once.
	// It reports whether this call performed the restoration and which lines
	// had no stock row left to restore.
	RestoreInventory(ctx context.Context, id uuid.UUID, lines []StockLine) (bool, []StockLine, error)

	// FindPaidOrderWithProduct returns a paid order of the user containing the product, or ErrNotFound
	FindPaidOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (uuid.UUID, error)

	// CountByStatus groups order counts by status
	CountByStatus(ctx context.Context) (map[OrderStatus]int, error)

	// PaidRevenue sums the totals of paid orders
	PaidRevenue(ctx context.Context) (decimal.Decimal, error)
}
