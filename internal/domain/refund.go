package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefundStatus is the lifecycle state of a refund request
type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundApproved RefundStatus = "approved"
	RefundRejected RefundStatus = "rejected"
)

// Valid reports whether the status is known
func (s RefundStatus) Valid() bool {
	return s == RefundPending || s == RefundApproved || s == RefundRejected
}

// RefundRequest is a customer's request to refund a paid order
type RefundRequest struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	OrderID    uuid.UUID    `json:"order_id" db:"order_id"`
	UserID     uuid.UUID    `json:"user_id" db:"user_id"`
	Reason     string       `json:"reason" db:"reason" validate:"required,min=3,max=2000"`
	Status     RefundStatus `json:"status" db:"status"`
	AdminNote  *string      `json:"admin_note,omitempty" db:"admin_note"`
	ReviewedBy *uuid.UUID   `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// RefundListFilter narrows refund listings
type RefundListFilter struct {
	UserID *uuid.UUID
	Status RefundStatus
	Limit  int
	Offset int
}

// RefundDecision is what an admin records when closing a request
type RefundDecision struct {
	RefundID uuid.UUID
	OrderID  uuid.UUID
	AdminID  uuid.UUID
	Note     *string
	At       time.Time
}

// RefundRepository defines the interface for refund request data access
type RefundRepository interface {
	// Create stores a new pending request; ErrAlreadyExists on a duplicate (order, user)
	Create(ctx context.Context, refund *RefundRequest) error

	// GetByID retrieves a request
	GetByID(ctx context.Context, id uuid.UUID) (*RefundRequest, error)

	// GetByOrderAndUser retrieves the request for an (order, user) pair
	GetByOrderAndUser(ctx context.Context, orderID, userID uuid.UUID) (*RefundRequest, error)

	// Resubmit moves a rejected request back to pending with a new reason
	Resubmit(ctx context.Context, id uuid.UUID, reason string) (*RefundRequest, error)

	// Approve marks the request approved and the order refunded in one transaction
	Approve(ctx context.Context, decision RefundDecision) error

	// Reject marks a pending request rejected
	Reject(ctx context.Context, decision RefundDecision) error

	// List retrieves a page of requests
	List(ctx context.Context, filter RefundListFilter) ([]*RefundRequest, error)

	// Count returns the number of requests matching the filter
	Count(ctx context.Context, filter RefundListFilter) (int, error)
}
