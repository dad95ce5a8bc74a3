package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/mocks"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/repository/cache"
	"github.com/Pesokrava/storefront/internal/usecase/review"
)

// missCache never holds a page
type missCache struct{}

func (missCache) GetReviewsList(context.Context, uuid.UUID, int, int) (*cache.ReviewPage, error) {
	return nil, domain.ErrNotFound
}

func (missCache) SetReviewsList(context.Context, uuid.UUID, int, int, *cache.ReviewPage) error {
	return nil
}

func (missCache) InvalidateReviewsList(context.Context, uuid.UUID) error { return nil }

func newReviewHandler() (*ReviewHandler, *mocks.ReviewRepository, *mocks.OrderRepository) {
	repo := new(mocks.ReviewRepository)
	orders := new(mocks.OrderRepository)
	log := logger.New("test")
	return NewReviewHandler(review.NewService(repo, orders, missCache{}, 3, log), log), repo, orders
}

func TestReviewHandler_Upsert_VerifiedPurchase(t *testing.T) {
	h, repo, orders := newReviewHandler()
	userID, productID, orderID := uuid.New(), uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String()+"/reviews",
		jsonBody(t, map[string]any{"rating": 5, "comment": "Fits perfectly"}))
	req = asUser(withParams(req, map[string]string{"id": productID.String()}), userID)
	w := httptest.NewRecorder()

	orders.On("FindPaidOrderWithProduct", mock.Anything, userID, productID).Return(orderID, nil)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.VerifiedPurchase && *r.OrderID == orderID && r.Rating == 5
	})).Return(nil)
	repo.On("RecomputeProductRating", mock.Anything, productID).Return(&domain.RatingAggregate{}, nil)

	h.Upsert(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestReviewHandler_Upsert_WithoutPurchase(t *testing.T) {
	h, repo, orders := newReviewHandler()
	userID, productID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String()+"/reviews",
		jsonBody(t, map[string]any{"rating": 4, "title": "Nice"}))
	req = asUser(withParams(req, map[string]string{"id": productID.String()}), userID)
	w := httptest.NewRecorder()

	orders.On("FindPaidOrderWithProduct", mock.Anything, userID, productID).Return(uuid.Nil, domain.ErrNotFound)

	h.Upsert(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestReviewHandler_Upsert_InvalidRating(t *testing.T) {
	h, _, _ := newReviewHandler()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String()+"/reviews",
		jsonBody(t, map[string]any{"rating": 6, "comment": "Too good"}))
	req = asUser(withParams(req, map[string]string{"id": productID.String()}), uuid.New())
	w := httptest.NewRecorder()

	h.Upsert(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "details")
}

func TestReviewHandler_GetByProductID(t *testing.T) {
	h, repo, _ := newReviewHandler()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/reviews?limit=10", nil)
	req = withParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	repo.On("GetVisibleByProductID", mock.Anything, productID, 10, 0).Return([]*domain.Review{{ID: uuid.New()}}, nil)
	repo.On("CountVisibleByProductID", mock.Anything, productID).Return(1, nil)

	h.GetByProductID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "pagination")
}

func TestReviewHandler_Report_WithoutBody(t *testing.T) {
	h, repo, _ := newReviewHandler()
	reporter := uuid.New()
	rv := &domain.Review{ID: uuid.New(), ProductID: uuid.New(), UserID: uuid.New()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/"+rv.ID.String()+"/report", nil)
	req = asUser(withParams(req, map[string]string{"id": rv.ID.String()}), reporter)
	w := httptest.NewRecorder()

	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)
	repo.On("AddReport", mock.Anything, rv.ID, reporter, "", 3).
		Return(&domain.ReportOutcome{ReportCount: 1}, nil)

	h.Report(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReviewHandler_Report_Duplicate(t *testing.T) {
	h, repo, _ := newReviewHandler()
	reporter := uuid.New()
	rv := &domain.Review{ID: uuid.New(), ProductID: uuid.New(), UserID: uuid.New()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/"+rv.ID.String()+"/report",
		jsonBody(t, map[string]string{"reason": "spam"}))
	req = asUser(withParams(req, map[string]string{"id": rv.ID.String()}), reporter)
	w := httptest.NewRecorder()

	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)
	repo.On("AddReport", mock.Anything, rv.ID, reporter, "spam", 3).Return(nil, domain.ErrAlreadyExists)

	h.Report(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewHandler_Delete_NotAuthor(t *testing.T) {
	h, repo, _ := newReviewHandler()
	rv := &domain.Review{ID: uuid.New(), ProductID: uuid.New(), UserID: uuid.New()}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/"+rv.ID.String(), nil)
	req = asUser(withParams(req, map[string]string{"id": rv.ID.String()}), uuid.New())
	w := httptest.NewRecorder()

	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)

	h.Delete(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReviewHandler_Delete_Admin(t *testing.T) {
	h, repo, _ := newReviewHandler()
	rv := &domain.Review{ID: uuid.New(), ProductID: uuid.New(), UserID: uuid.New()}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/"+rv.ID.String(), nil)
	req = asAdmin(withParams(req, map[string]string{"id": rv.ID.String()}), uuid.New())
	w := httptest.NewRecorder()

	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)
	repo.On("Delete", mock.Anything, rv.ID).Return(nil)
	repo.On("RecomputeProductRating", mock.Anything, rv.ProductID).Return(&domain.RatingAggregate{}, nil)

	h.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestReviewHandler_Moderate_Approve(t *testing.T) {
	h, repo, _ := newReviewHandler()
	rv := &domain.Review{ID: uuid.New(), ProductID: uuid.New(), Status: domain.ReviewFlagged, ReportCount: 3}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/reviews/"+rv.ID.String(),
		jsonBody(t, ModerateRequest{Status: domain.ReviewApproved}))
	req = withParams(req, map[string]string{"id": rv.ID.String()})
	w := httptest.NewRecorder()

	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)
	repo.On("SetStatus", mock.Anything, rv.ID, domain.ReviewApproved).Return(nil)
	repo.On("RecomputeProductRating", mock.Anything, rv.ProductID).Return(&domain.RatingAggregate{}, nil)

	h.Moderate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["is_visible"])
	assert.Equal(t, float64(0), data["report_count"])
}

func TestReviewHandler_ListByStatus_DefaultsToFlagged(t *testing.T) {
	h, repo, _ := newReviewHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reviews", nil)
	w := httptest.NewRecorder()

	repo.On("ListByStatus", mock.Anything, domain.ReviewFlagged, 20, 0).Return([]*domain.Review{}, nil)

	h.ListByStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
