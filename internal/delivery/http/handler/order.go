package handler

import (
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/order"
)

// OrderHandler serves order history and the admin fulfilment workflow
type OrderHandler struct {
	service *order.Service
	logger  *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *order.Service, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  log,
	}
}

// ListMine handles GET /api/v1/orders
// @Summary List my orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated orders, newest first"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /orders [get]
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	limit, offset := request.GetPaginationParams(r)

	orders, total, err := h.service.ListForUser(r.Context(), id.UserID, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Paginated(w, orders, total, limit, offset)
}

// GetMine handles GET /api/v1/orders/{id}
// @Summary Get one of my orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} map[string]interface{} "Order"
// @Failure 404 {object} map[string]string "Order not found"
// @Router /orders/{id} [get]
func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
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

	o, err := h.service.GetForUser(r.Context(), id.UserID, orderID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, o)
}

// List handles GET /api/v1/admin/orders
// @Summary List all orders
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status filter"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated orders"
// @Failure 400 {object} map[string]string "Unknown status"
// @Router /admin/orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)
	status := domain.OrderStatus(r.URL.Query().Get("status"))

	orders, total, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Paginated(w, orders, total, limit, offset)
}

// Get handles GET /api/v1/admin/orders/{id}
// @Summary Get any order
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} map[string]interface{} "Order"
// @Failure 404 {object} map[string]string "Order not found"
// @Router /admin/orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	o, err := h.service.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, o)
}

// UpdateStatus handles PATCH /api/v1/admin/orders/{id}/status
// @Summary Move an order through its lifecycle
// @Description Shipping assigns a tracking number and estimated delivery when omitted; customers are notified
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID (UUID)"
// @Param update body order.StatusUpdate true "Target status"
// @Success 200 {object} map[string]interface{} "Updated order"
// @Failure 400 {object} map[string]interface{} "Invalid status"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 409 {object} map[string]interface{} "Transition not allowed"
// @Router /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var in order.StatusUpdate
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), orderID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, o)
}
