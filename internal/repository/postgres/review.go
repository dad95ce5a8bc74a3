package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/database"
)

const reviewColumns = `id, product_id, user_id, order_id, rating, title, comment, status, is_visible,
	verified_purchase, helpful_count, report_count, created_at, updated_at, deleted_at`

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert inserts the review or overwrites the author's previous one for the product.
// Moderation status and counters of an existing review are kept.
func (r *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	// Return domain.ErrNotFound instead of cryptic foreign key constraint violation
	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND deleted_at IS NULL)`
	if err := r.db.GetContext(ctx, &exists, checkQuery, review.ProductID); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	if review.Status == "" {
		review.Status = domain.ReviewApproved
	}

	query := `
		INSERT INTO reviews (product_id, user_id, order_id, rating, title, comment, status, is_visible, verified_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET order_id = EXCLUDED.order_id,
			rating = EXCLUDED.rating,
			title = EXCLUDED.title,
			comment = EXCLUDED.comment,
			verified_purchase = EXCLUDED.verified_purchase,
			deleted_at = NULL,
			updated_at = NOW()
		RETURNING id, status, is_visible, helpful_count, report_count, created_at, updated_at
	`

	return r.db.QueryRowxContext(
		ctx,
		query,
		review.ProductID,
		review.UserID,
		review.OrderID,
		review.Rating,
		review.Title,
		review.Comment,
		review.Status,
		review.Status == domain.ReviewApproved,
		review.VerifiedPurchase,
	).Scan(
		&review.ID,
		&review.Status,
		&review.IsVisible,
		&review.HelpfulCount,
		&review.ReportCount,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 AND deleted_at IS NULL`

	var review domain.Review
	err := r.db.GetContext(ctx, &review, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// GetVisibleByProductID retrieves approved, visible reviews for a product with pagination
func (r *ReviewRepository) GetVisibleByProductID(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1 AND status = 'approved' AND is_visible AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var reviews []*domain.Review
	if err := r.db.SelectContext(ctx, &reviews, query, productID, limit, offset); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CountVisibleByProductID counts approved, visible reviews for a product
func (r *ReviewRepository) CountVisibleByProductID(ctx context.Context, productID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM reviews
		WHERE product_id = $1 AND status = 'approved' AND is_visible AND deleted_at IS NULL`

	var count int
	if err := r.db.GetContext(ctx, &count, query, productID); err != nil {
		return 0, err
	}
	return count, nil
}

// ListByStatus lists reviews in a moderation state, most reported first
func (r *ReviewRepository) ListByStatus(ctx context.Context, status domain.ReviewStatus, limit, offset int) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE status = $1 AND deleted_at IS NULL
		ORDER BY report_count DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	var reviews []*domain.Review
	if err := r.db.SelectContext(ctx, &reviews, query, status, limit, offset); err != nil {
		return nil, err
	}
	return reviews, nil
}

// SetStatus changes moderation status. Approval makes the review visible and clears its report count.
func (r *ReviewRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) error {
	query := `
		UPDATE reviews
		SET status = $1,
			is_visible = ($1 = 'approved'),
			report_count = CASE WHEN $1 = 'approved' THEN 0 ELSE report_count END,
			updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrNotFound)
}

// Delete soft-deletes a review
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reviews
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrNotFound)
}

// AddReport records one report per reporter and flags the review once the threshold is reached
func (r *ReviewRepository) AddReport(ctx context.Context, reviewID, reporterID uuid.UUID, reason string, threshold int) (*domain.ReportOutcome, error) {
	var outcome domain.ReportOutcome

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockReview(ctx, tx, reviewID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO review_reports (review_id, reporter_id, reason) VALUES ($1, $2, $3)`,
			reviewID, reporterID, reason,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.NewError(domain.ErrAlreadyExists, "review already reported by this user")
			}
			return err
		}

		query := `
			UPDATE reviews
			SET report_count = report_count + 1,
				status = CASE WHEN report_count + 1 >= $1 AND status = 'approved' THEN 'flagged' ELSE status END,
				is_visible = CASE WHEN report_count + 1 >= $1 THEN FALSE ELSE is_visible END,
				updated_at = NOW()
			WHERE id = $2
			RETURNING report_count, status
		`
		return tx.QueryRowxContext(ctx, query, threshold, reviewID).Scan(&outcome.ReportCount, &outcome.Status)
	})
	if err != nil {
		return nil, err
	}

	outcome.Flagged = outcome.ReportCount >= threshold
	return &outcome, nil
}

// AddHelpfulVote records one helpful vote per voter and returns the new count
func (r *ReviewRepository) AddHelpfulVote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error) {
	var count int

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockReview(ctx, tx, reviewID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO review_votes (review_id, voter_id) VALUES ($1, $2)`, reviewID, voterID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.NewError(domain.ErrAlreadyExists, "review already marked helpful by this user")
			}
			return err
		}

		return tx.QueryRowxContext(ctx,
			`UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = $1 RETURNING helpful_count`,
			reviewID,
		).Scan(&count)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecomputeProductRating rewrites average_rating and review_count from approved, visible reviews.
// Full recalculation keeps the aggregate self-correcting.
func (r *ReviewRepository) RecomputeProductRating(ctx context.Context, productID uuid.UUID) (*domain.RatingAggregate, error) {
	query := `
		UPDATE products
		SET
			average_rating = COALESCE(
				(SELECT ROUND(AVG(rating)::numeric, 1)
				 FROM reviews
				 WHERE product_id = $1 AND status = 'approved' AND is_visible AND deleted_at IS NULL),
				0
			),
			review_count = (
				SELECT COUNT(*)
				FROM reviews
				WHERE product_id = $1 AND status = 'approved' AND is_visible AND deleted_at IS NULL
			),
			updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING average_rating, review_count
	`

	var agg domain.RatingAggregate
	if err := r.db.QueryRowxContext(ctx, query, productID, time.Now()).StructScan(&agg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product rating: %w", err)
	}
	return &agg, nil
}

func lockReview(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	var locked uuid.UUID
	err := tx.GetContext(ctx, &locked, `SELECT id FROM reviews WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
