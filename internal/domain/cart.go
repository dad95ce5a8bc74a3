package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceEpsilon is the largest snapshot/live price difference tolerated without correction
var PriceEpsilon = decimal.NewFromFloat(0.01)

// CartOwner identifies a cart by exactly one of user id or guest session id
type CartOwner struct {
	UserID    *uuid.UUID
	SessionID string
}

// UserOwner builds an owner for an authenticated user
func UserOwner(id uuid.UUID) CartOwner {
	return CartOwner{UserID: &id}
}

// GuestOwner builds an owner for an anonymous session
func GuestOwner(sessionID string) CartOwner {
	return CartOwner{SessionID: sessionID}
}

// Valid reports whether exactly one ownership key is set
func (o CartOwner) Valid() bool {
	return (o.UserID != nil) != (o.SessionID != "")
}

// IsGuest reports whether the owner is an anonymous session
func (o CartOwner) IsGuest() bool {
	return o.UserID == nil && o.SessionID != ""
}

// CartItem is a line in a cart with a price snapshot taken when it was added
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// Matches reports whether the line refers to the given product and variant
func (i CartItem) Matches(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariantID == nil || variantID == nil {
		return i.VariantID == nil && variantID == nil
	}
	return *i.VariantID == *variantID
}

// LineTotal returns price × quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the items a shopper intends to buy
type Cart struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCart creates an empty cart for the owner
func NewCart(owner CartOwner) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        uuid.New(),
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
		Items:     []CartItem{},
		Subtotal:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Owner returns the ownership key of the cart
func (c *Cart) Owner() CartOwner {
	if c.UserID != nil {
		return CartOwner{UserID: c.UserID}
	}
	return CartOwner{SessionID: c.SessionID}
}

// Recalculate recomputes subtotal and item count from the items
func (c *Cart) Recalculate() {
	subtotal := decimal.Zero
	count := 0
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.LineTotal())
		count += item.Quantity
	}
	c.Subtotal = subtotal
	c.ItemCount = count
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem merges quantity into an existing line or appends a new one
func (c *Cart) AddItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].Matches(item.ProductID, item.VariantID) {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].Price = item.Price
			c.Recalculate()
			return
		}
	}
	c.Items = append(c.Items, item)
	c.Recalculate()
}

// SetQuantity changes the quantity of a line; zero removes it
func (c *Cart) SetQuantity(productID uuid.UUID, variantID *uuid.UUID, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].Matches(productID, variantID) {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			c.Recalculate()
			return true
		}
	}
	return false
}

// RemoveItem drops a line
func (c *Cart) RemoveItem(productID uuid.UUID, variantID *uuid.UUID) bool {
	return c.SetQuantity(productID, variantID, 0)
}

// Merge folds another cart's items into this one
func (c *Cart) Merge(other *Cart) {
	for _, item := range other.Items {
		c.AddItem(item)
	}
}

// Clear removes every item
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recalculate()
}

// ReconcileResult reports what reconciliation changed in a cart
type ReconcileResult struct {
	IsValid bool       `json:"is_valid"`
	Removed []CartItem `json:"removed"`
	Updated []CartItem `json:"updated"`
	Errors  []string   `json:"errors"`
}

// CartRepository defines the interface for cart storage
type CartRepository interface {
	// GetByOwner retrieves the cart for an owner
	GetByOwner(ctx context.Context, owner CartOwner) (*Cart, error)

	// Save upserts the cart keyed by its owner
	Save(ctx context.Context, cart *Cart) error

	// DeleteByOwner removes the owner's cart; a missing cart is not an error
	DeleteByOwner(ctx context.Context, owner CartOwner) error
}
