package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/refund"
)

// RefundHandler serves refund requests and their admin review
type RefundHandler struct {
	service *refund.Service
	logger  *logger.Logger
}

// NewRefundHandler creates a new refund handler
func NewRefundHandler(service *refund.Service, log *logger.Logger) *RefundHandler {
	return &RefundHandler{
		service: service,
		logger:  log,
	}
}

// Request handles POST /api/v1/orders/{id}/refund
// @Summary Request a refund
// @Description Allowed for the order owner within the refund window after payment
// @Tags Refunds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID (UUID)"
// @Param refund body refund.RequestInput true "Reason"
// @Success 201 {object} map[string]interface{} "Refund request"
// @Failure 400 {object} map[string]interface{} "Invalid reason"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 409 {object} map[string]string "Order not refundable or already requested"
// @Failure 422 {object} map[string]string "Refund window expired"
// @Router /orders/{id}/refund [post]
func (h *RefundHandler) Request(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	orderID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var in refund.RequestInput
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rr, err := h.service.Request(r.Context(), id.UserID, orderID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, rr)
}

// ListMine handles GET /api/v1/refunds
// @Summary List my refund requests
// @Tags Refunds
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated refund requests"
// @Router /refunds [get]
func (h *RefundHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	limit, offset := request.GetPaginationParams(r)

	items, total, err := h.service.ListForUser(r.Context(), id.UserID, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Paginated(w, items, total, limit, offset)
}

// List handles GET /api/v1/admin/refunds
// @Summary List refund requests
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated refund requests"
// @Router /admin/refunds [get]
func (h *RefundHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)
	status := domain.RefundStatus(r.URL.Query().Get("status"))

	items, total, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Paginated(w, items, total, limit, offset)
}

// Approve handles POST /api/v1/admin/refunds/{id}/approve
// @Summary Approve a refund
// @Description Refunds the payment through the gateway, restocks the items and notifies the customer
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Refund request ID (UUID)"
// @Param decision body refund.DecisionInput false "Admin note"
// @Success 200 {object} map[string]interface{} "Approved refund request"
// @Failure 409 {object} map[string]string "Request is not pending"
// @Failure 502 {object} map[string]string "Gateway refused the refund"
// @Router /admin/refunds/{id}/approve [post]
func (h *RefundHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

// Reject handles POST /api/v1/admin/refunds/{id}/reject
// @Summary Reject a refund
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Refund request ID (UUID)"
// @Param decision body refund.DecisionInput false "Admin note"
// @Success 200 {object} map[string]interface{} "Rejected refund request"
// @Failure 409 {object} map[string]string "Request is not pending"
// @Router /admin/refunds/{id}/reject [post]
func (h *RefundHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

type decisionFunc func(ctx context.Context, adminID, id uuid.UUID, in refund.DecisionInput) (*domain.RefundRequest, error)

func (h *RefundHandler) decide(w http.ResponseWriter, r *http.Request, fn decisionFunc) {
	admin, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid refund request ID")
		return
	}

	var in refund.DecisionInput
	// the note is optional, so is the body
	if err := request.DecodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rr, err := fn(r.Context(), admin.UserID, id, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, rr)
}
