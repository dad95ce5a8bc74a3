package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/validator"
	"github.com/Pesokrava/storefront/internal/repository/cache"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// ReviewCache caches public review pages per product
type ReviewCache interface {
	GetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int) (*cache.ReviewPage, error)
	SetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int, page *cache.ReviewPage) error
	InvalidateReviewsList(ctx context.Context, productID uuid.UUID) error
}

// UpsertInput is a customer's review of a product
type UpsertInput struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=5000"`
}

// ReportInput is a customer's report of an inappropriate review
type ReportInput struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Service handles review business logic with caching
type Service struct {
	repo            domain.ReviewRepository
	orders          domain.OrderRepository
	cache           ReviewCache
	reportThreshold int
	logger          *logger.Logger
}

// NewService creates a new review service
func NewService(
	repo domain.ReviewRepository,
	orders domain.OrderRepository,
	cache ReviewCache,
	reportThreshold int,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:            repo,
		orders:          orders,
		cache:           cache,
		reportThreshold: reportThreshold,
		logger:          log,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Upsert creates the user's review of a product or overwrites their previous one.
// Only customers with a paid order containing the product may review it.
func (s *Service) Upsert(ctx context.Context, userID, productID uuid.UUID, in UpsertInput) (*domain.Review, error) {
	in.Title = trimmed(in.Title)
	in.Comment = trimmed(in.Comment)

	if details, err := validator.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid review").WithDetails(details)
	}

	review := &domain.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
	}
	if !review.HasText() {
		return nil, domain.NewError(domain.ErrInvalidInput, "a title or comment is required")
	}

	orderID, err := s.orders.FindPaidOrderWithProduct(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.ErrForbidden, "only verified purchasers can review this product")
		}
		s.logger.Error("Failed to verify purchase", err)
		return nil, err
	}
	review.OrderID = &orderID
	review.VerifiedPurchase = true

	if err := s.repo.Upsert(ctx, review); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to upsert review", err)
		}
		return nil, err
	}

	s.refreshProduct(ctx, productID)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	}).Info("Review saved successfully")

	return review, nil
}

// refreshProduct recomputes the rating aggregate and drops cached pages.
// Failures are logged; the aggregate is recomputed in full on the next write.
func (s *Service) refreshProduct(ctx context.Context, productID uuid.UUID) {
	if _, err := s.repo.RecomputeProductRating(ctx, productID); err != nil {
		s.logger.Errorf(err, "Failed to recompute rating for product %s", productID)
	}
	if err := s.cache.InvalidateReviewsList(ctx, productID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", productID, err)
	}
}

// GetByID retrieves a review by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Review not found: %s", id)
		} else {
			s.logger.Error("Failed to get review", err)
		}
		return nil, err
	}
	return review, nil
}

// ListForProduct returns the visible reviews of a product, served from cache when possible
func (s *Service) ListForProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*domain.Review, int, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	if page, err := s.cache.GetReviewsList(ctx, productID, limit, offset); err == nil {
		s.logger.Debugf("Cache hit for product %s reviews (limit=%d, offset=%d)", productID, limit, offset)
		return page.Reviews, page.Total, nil
	}

	s.logger.Debugf("Cache miss for product %s reviews (limit=%d, offset=%d)", productID, limit, offset)
	reviews, err := s.repo.GetVisibleByProductID(ctx, productID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to get reviews by product ID", err)
		return nil, 0, err
	}

	total, err := s.repo.CountVisibleByProductID(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to count reviews", err)
		return nil, 0, err
	}

	page := &cache.ReviewPage{Reviews: reviews, Total: total}
	if err := s.cache.SetReviewsList(ctx, productID, limit, offset, page); err != nil {
		s.logger.Warnf("Failed to cache reviews for product %s (limit=%d, offset=%d): %v", productID, limit, offset, err)
	}

	return reviews, total, nil
}

// ListByStatus lists reviews in a moderation state
func (s *Service) ListByStatus(ctx context.Context, status domain.ReviewStatus, limit, offset int) ([]*domain.Review, error) {
	if !status.Valid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "unknown review status")
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// Report records a report against another user's review.
// Reaching the threshold flags and hides the review.
func (s *Service) Report(ctx context.Context, reviewID, reporterID uuid.UUID, in ReportInput) (*domain.ReportOutcome, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if details, err := validator.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid report").WithDetails(details)
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID == reporterID {
		return nil, domain.NewError(domain.ErrInvalidInput, "you cannot report your own review")
	}

	outcome, err := s.repo.AddReport(ctx, reviewID, reporterID, in.Reason, s.reportThreshold)
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			s.logger.Error("Failed to record review report", err)
		}
		return nil, err
	}

	if outcome.Flagged {
		s.logger.WithFields(map[string]interface{}{
			"review_id":    reviewID,
			"report_count": outcome.ReportCount,
		}).Warn("Review flagged by reports")
		s.refreshProduct(ctx, review.ProductID)
	}

	return outcome, nil
}

// Vote marks another user's review as helpful once
func (s *Service) Vote(ctx context.Context, reviewID, voterID uuid.UUID) (int, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	if review.UserID == voterID {
		return 0, domain.NewError(domain.ErrInvalidInput, "you cannot vote on your own review")
	}

	count, err := s.repo.AddHelpfulVote(ctx, reviewID, voterID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.InvalidateReviewsList(ctx, review.ProductID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", review.ProductID, err)
	}
	return count, nil
}

// Moderate sets the review's moderation status; approving also clears its reports
func (s *Service) Moderate(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) (*domain.Review, error) {
	if !status.Valid() || status == domain.ReviewPending {
		return nil, domain.NewError(domain.ErrInvalidInput, "status must be approved, rejected or flagged")
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		s.logger.Error("Failed to set review status", err)
		return nil, err
	}

	s.refreshProduct(ctx, review.ProductID)

	review.Status = status
	review.IsVisible = status == domain.ReviewApproved
	if status == domain.ReviewApproved {
		review.ReportCount = 0
	}

	s.logger.WithFields(map[string]interface{}{
		"review_id": id,
		"status":    status,
	}).Info("Review moderated")

	return review, nil
}

// Delete soft-deletes a review; only its author or an admin may delete it
func (s *Service) Delete(ctx context.Context, requesterID uuid.UUID, admin bool, id uuid.UUID) error {
	// Product ID is needed for recompute and cache invalidation
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !admin && review.UserID != requesterID {
		return domain.NewError(domain.ErrForbidden, "access denied")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete review", err)
		return err
	}

	s.refreshProduct(ctx, review.ProductID)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  id,
		"product_id": review.ProductID,
	}).Info("Review deleted successfully")

	return nil
}
