package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/review"
)

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// ModerateRequest is an admin's moderation decision
type ModerateRequest struct {
	Status domain.ReviewStatus `json:"status"`
}

// Upsert handles PUT /api/v1/products/{id}/reviews
// @Summary Create or update my review of a product
// @Description Requires a paid order containing the product; one review per customer and product
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param review body review.UpsertInput true "Rating, title and comment"
// @Success 200 {object} map[string]interface{} "Review"
// @Failure 400 {object} map[string]interface{} "Invalid review"
// @Failure 403 {object} map[string]string "No paid purchase of this product"
// @Router /products/{id}/reviews [put]
func (h *ReviewHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var in review.UpsertInput
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rv, err := h.service.Upsert(r.Context(), id.UserID, productID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, rv)
}

// GetByProductID handles GET /api/v1/products/{id}/reviews
// @Summary Get reviews for a product
// @Description Get a paginated list of visible reviews for a specific product
// @Tags Reviews
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of reviews"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Router /products/{id}/reviews [get]
func (h *ReviewHandler) GetByProductID(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	limit, offset := request.GetPaginationParams(r)

	reviews, total, err := h.service.ListForProduct(r.Context(), productID, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Paginated(w, reviews, total, limit, offset)
}

// Report handles POST /api/v1/reviews/{id}/report
// @Summary Report a review
// @Description Enough reports flag the review and hide it until moderated
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Param report body review.ReportInput false "Reason"
// @Success 200 {object} map[string]interface{} "Report outcome"
// @Failure 400 {object} map[string]string "Cannot report own review"
// @Failure 409 {object} map[string]string "Already reported"
// @Router /reviews/{id}/report [post]
func (h *ReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	reviewID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var in review.ReportInput
	if err := request.DecodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.service.Report(r.Context(), reviewID, id.UserID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, outcome)
}

// Vote handles POST /api/v1/reviews/{id}/helpful
// @Summary Mark a review helpful
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Success 200 {object} map[string]interface{} "Helpful count"
// @Failure 409 {object} map[string]string "Already voted"
// @Router /reviews/{id}/helpful [post]
func (h *ReviewHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	reviewID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	count, err := h.service.Vote(r.Context(), reviewID, id.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, map[string]int{"helpful_count": count})
}

// Delete handles DELETE /api/v1/reviews/{id}
// @Summary Delete a review
// @Description Authors may delete their own review; admins may delete any
// @Tags Reviews
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Success 204 "Review deleted successfully"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	reviewID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), id.UserID, id.IsAdmin(), reviewID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.NoContent(w)
}

// ListByStatus handles GET /api/v1/admin/reviews
// @Summary List reviews for moderation
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, rejected or flagged" default(flagged)
// @Param limit query int false "Number of items (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Reviews"
// @Failure 400 {object} map[string]string "Unknown status"
// @Router /admin/reviews [get]
func (h *ReviewHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.ReviewStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ReviewFlagged
	}
	limit, offset := request.GetPaginationParams(r)

	reviews, err := h.service.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, reviews)
}

// Moderate handles PATCH /api/v1/admin/reviews/{id}
// @Summary Moderate a review
// @Description Approving shows the review and clears its reports; rejecting or flagging hides it
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Param decision body ModerateRequest true "Target status"
// @Success 200 {object} map[string]interface{} "Moderated review"
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /admin/reviews/{id} [patch]
func (h *ReviewHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	reviewID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req ModerateRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rv, err := h.service.Moderate(r.Context(), reviewID, req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, rv)
}
