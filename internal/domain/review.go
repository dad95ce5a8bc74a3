package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
	ReviewFlagged  ReviewStatus = "flagged"
)

// Valid reports whether the status is known
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewFlagged:
		return true
	}
	return false
}

// Review represents a product review in the system
type Review struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	ProductID        uuid.UUID    `json:"product_id" db:"product_id" validate:"required"`
	UserID           uuid.UUID    `json:"user_id" db:"user_id" validate:"required"`
	OrderID          *uuid.UUID   `json:"order_id,omitempty" db:"order_id"`
	Rating           int          `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Title            *string      `json:"title,omitempty" db:"title" validate:"omitempty,max=200"`
	Comment          *string      `json:"comment,omitempty" db:"comment" validate:"omitempty,max=5000"`
	Status           ReviewStatus `json:"status" db:"status"`
	IsVisible        bool         `json:"is_visible" db:"is_visible"`
	VerifiedPurchase bool         `json:"verified_purchase" db:"verified_purchase"`
	HelpfulCount     int          `json:"helpful_count" db:"helpful_count"`
	ReportCount      int          `json:"report_count" db:"report_count"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
}

// HasText reports whether at least one of title or comment is non-empty
func (r *Review) HasText() bool {
	return (r.Title != nil && *r.Title != "") || (r.Comment != nil && *r.Comment != "")
}

// ReportOutcome is the state of a review after a report was counted
type ReportOutcome struct {
	ReportCount int          `json:"report_count"`
	Status      ReviewStatus `json:"status"`
	Flagged     bool         `json:"flagged"`
}

// RatingAggregate is the denormalized rating summary stored on a product
type RatingAggregate struct {
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	ReviewCount   int     `json:"review_count" db:"review_count"`
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Upsert inserts or overwrites the review keyed on (user, product)
	Upsert(ctx context.Context, review *Review) error

	// GetByID retrieves a review by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// GetVisibleByProductID retrieves approved, visible reviews for a product with pagination
	GetVisibleByProductID(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*Review, error)

	// CountVisibleByProductID counts approved, visible reviews for a product
	CountVisibleByProductID(ctx context.Context, productID uuid.UUID) (int, error)

	// ListByStatus lists reviews in a moderation state for admins
	ListByStatus(ctx context.Context, status ReviewStatus, limit, offset int) ([]*Review, error)

	// SetStatus changes moderation status; visibility follows approval
	SetStatus(ctx context.Context, id uuid.UUID, status ReviewStatus) error

	// Delete soft-deletes a review
	Delete(ctx context.Context, id uuid.UUID) error

	// AddReport records a report once per reporter and applies the auto-flag threshold
	AddReport(ctx context.Context, reviewID, reporterID uuid.UUID, reason string, threshold int) (*ReportOutcome, error)

	// AddHelpfulVote records a helpful vote once per voter and returns the new count
	AddHelpfulVote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error)

	// RecomputeProductRating rewrites the product's rating aggregate from approved, visible reviews
	RecomputeProductRating(ctx context.Context, productID uuid.UUID) (*RatingAggregate, error)
}
