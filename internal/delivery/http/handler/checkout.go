package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/checkout"
)

// CheckoutHandler places orders and confirms their payments
type CheckoutHandler struct {
	service *checkout.Service
	cookies config.AuthConfig
	logger  *logger.Logger
}

// NewCheckoutHandler creates a new checkout handler; cookies names the guest session to expire after payment
func NewCheckoutHandler(service *checkout.Service, cookies config.AuthConfig, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		cookies: cookies,
		logger:  log,
	}
}

// ConfirmRequest identifies the payment the client just completed
type ConfirmRequest struct {
	Reference string     `json:"reference"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
}

// Create handles POST /api/v1/checkout
// @Summary Place an order from the cart
// @Description Snapshots the reconciled cart into a pending order and opens a payment
// @Tags Checkout
// @Accept json
// @Produce json
// @Param checkout body checkout.Input true "Contact email and shipping address"
// @Success 201 {object} map[string]interface{} "Order and payment client secret"
// @Failure 400 {object} map[string]interface{} "Invalid input or empty cart"
// @Failure 409 {object} map[string]interface{} "Cart changed during reconciliation"
// @Failure 502 {object} map[string]string "Payment gateway unavailable"
// @Router /checkout [post]
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in checkout.Input
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Owner = cartOwner(r)

	result, err := h.service.CreateOrder(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, result)
}

// Confirm handles POST /api/v1/checkout/confirm
// @Summary Confirm a payment
// @Description Verifies the payment with the gateway and marks the order paid; safe to repeat. Expires the guest session cookie on success.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param confirmation body ConfirmRequest true "Payment reference"
// @Success 200 {object} map[string]interface{} "Paid order"
// @Failure 400 {object} map[string]string "Missing reference"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 409 {object} map[string]string "Payment not successful"
// @Failure 422 {object} map[string]interface{} "Amount mismatch"
// @Router /checkout/confirm [post]
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Reference) == "" {
		response.Error(w, http.StatusBadRequest, "Payment reference is required")
		return
	}

	order, err := h.service.ConfirmPayment(r.Context(), checkout.Confirmation{
		Reference: strings.TrimSpace(req.Reference),
		OrderID:   req.OrderID,
		SessionID: middleware.GuestSessionFrom(r.Context()),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// the guest cart is gone; a stale session must not bring it back
	middleware.ExpireGuestSession(w, h.cookies)
	response.Success(w, order)
}
