package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/database"
)

const refundColumns = `id, order_id, user_id, reason, status, admin_note, reviewed_by, reviewed_at, created_at, updated_at`

// RefundRepository implements domain.RefundRepository for PostgreSQL
type RefundRepository struct {
	db *sqlx.DB
}

// NewRefundRepository creates a new PostgreSQL refund request repository
func NewRefundRepository(db *sqlx.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

// Create stores a new pending request
func (r *RefundRepository) Create(ctx context.Context, refund *domain.RefundRequest) error {
	query := `
		INSERT INTO refund_requests (order_id, user_id, reason, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, status, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, refund.OrderID, refund.UserID, refund.Reason).
		Scan(&refund.ID, &refund.Status, &refund.CreatedAt, &refund.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewError(domain.ErrAlreadyExists, "a refund request already exists for this order")
		}
		return err
	}
	return nil
}

// GetByID retrieves a request
func (r *RefundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	return r.getOne(ctx, `SELECT `+refundColumns+` FROM refund_requests WHERE id = $1`, id)
}

// GetByOrderAndUser retrieves the request for an (order, user) pair
func (r *RefundRepository) GetByOrderAndUser(ctx context.Context, orderID, userID uuid.UUID) (*domain.RefundRequest, error) {
	return r.getOne(ctx, `SELECT `+refundColumns+` FROM refund_requests WHERE order_id = $1 AND user_id = $2`, orderID, userID)
}

func (r *RefundRepository) getOne(ctx context.Context, query string, args ...any) (*domain.RefundRequest, error) {
	var refund domain.RefundRequest
	if err := r.db.GetContext(ctx, &refund, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// Resubmit moves a rejected request back to pending with a new reason
func (r *RefundRepository) Resubmit(ctx context.Context, id uuid.UUID, reason string) (*domain.RefundRequest, error) {
	query := `
		UPDATE refund_requests
		SET status = 'pending', reason = $1, admin_note = NULL, reviewed_by = NULL, reviewed_at = NULL, updated_at = NOW()
		WHERE id = $2 AND status = 'rejected'
		RETURNING ` + refundColumns

	var refund domain.RefundRequest
	if err := r.db.QueryRowxContext(ctx, query, reason, id).StructScan(&refund); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.ErrStateConflict, "only rejected refund requests can be resubmitted")
		}
		return nil, err
	}
	return &refund, nil
}

// Approve marks the request approved and the order payment refunded in one transaction
func (r *RefundRepository) Approve(ctx context.Context, decision domain.RefundDecision) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := closeRefund(ctx, tx, domain.RefundApproved, decision); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE orders SET payment_status = 'refunded', updated_at = NOW() WHERE id = $1 AND payment_status = 'paid'`,
			decision.OrderID,
		)
		if err != nil {
			return err
		}
		return expectOneRow(result, domain.NewError(domain.ErrStateConflict, "order is no longer paid"))
	})
}

// Reject marks a pending request rejected
func (r *RefundRepository) Reject(ctx context.Context, decision domain.RefundDecision) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return closeRefund(ctx, tx, domain.RefundRejected, decision)
	})
}

// List retrieves a page of requests, newest first
func (r *RefundRepository) List(ctx context.Context, filter domain.RefundListFilter) ([]*domain.RefundRequest, error) {
	query := `SELECT ` + refundColumns + `
		FROM refund_requests
		WHERE ($1::uuid IS NULL OR user_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	var refunds []*domain.RefundRequest
	err := r.db.SelectContext(ctx, &refunds, query, filter.UserID, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

// Count returns the number of requests matching the filter
func (r *RefundRepository) Count(ctx context.Context, filter domain.RefundListFilter) (int, error) {
	query := `SELECT COUNT(*) FROM refund_requests WHERE ($1::uuid IS NULL OR user_id = $1) AND ($2 = '' OR status = $2)`

	var count int
	if err := r.db.GetContext(ctx, &count, query, filter.UserID, string(filter.Status)); err != nil {
		return 0, err
	}
	return count, nil
}

func closeRefund(ctx context.Context, tx *sqlx.Tx, status domain.RefundStatus, decision domain.RefundDecision) error {
	query := `
		UPDATE refund_requests
		SET status = $1, admin_note = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4
		WHERE id = $5 AND status = 'pending'
	`
	result, err := tx.ExecContext(ctx, query, status, decision.Note, decision.AdminID, decision.At, decision.RefundID)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.NewError(domain.ErrStateConflict, "refund request is not pending"))
}
