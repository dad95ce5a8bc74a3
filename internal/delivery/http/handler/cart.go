package handler

import (
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/cart"
)

// CartHandler handles the shopper's cart for both guests and signed-in users
type CartHandler struct {
	service *cart.Service
	logger  *logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *cart.Service, log *logger.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  log,
	}
}

// Get handles GET /api/v1/cart
// @Summary Get the current cart
// @Description Returns the caller's cart reconciled against live stock and prices
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{} "Reconciled cart"
// @Router /cart [get]
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), cartOwner(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, view)
}

// AddItem handles POST /api/v1/cart/items
// @Summary Add an item to the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param item body cart.ItemInput true "Product, optional variant and quantity"
// @Success 200 {object} map[string]interface{} "Updated cart"
// @Failure 400 {object} map[string]interface{} "Invalid item or insufficient stock"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in cart.ItemInput
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.AddItem(r.Context(), cartOwner(r), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, view)
}

// UpdateQuantity handles PUT /api/v1/cart/items
// @Summary Set the quantity of a cart line
// @Description A quantity of zero removes the line
// @Tags Cart
// @Accept json
// @Produce json
// @Param item body cart.ItemInput true "Product, optional variant and new quantity"
// @Success 200 {object} map[string]interface{} "Updated cart"
// @Failure 400 {object} map[string]interface{} "Invalid quantity or insufficient stock"
// @Failure 404 {object} map[string]string "Line not in cart"
// @Router /cart/items [put]
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var in cart.ItemInput
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), cartOwner(r), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, view)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
// @Summary Remove a cart line
// @Tags Cart
// @Produce json
// @Param productId path string true "Product ID (UUID)"
// @Param variant_id query string false "Variant ID (UUID)"
// @Success 200 {object} map[string]interface{} "Updated cart"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "productId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	variantID, err := request.GetOptionalUUIDQuery(r, "variant_id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid variant ID")
		return
	}

	view, err := h.service.RemoveItem(r.Context(), cartOwner(r), productID, variantID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, view)
}

// Clear handles DELETE /api/v1/cart
// @Summary Empty the cart
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{} "Empty cart"
// @Router /cart [delete]
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Clear(r.Context(), cartOwner(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, c)
}

// Merge handles POST /api/v1/cart/merge
// @Summary Merge the guest cart into the user's cart
// @Description Called after sign-in; the guest session cookie identifies the guest cart
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Merged cart"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /cart/merge [post]
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	view, err := h.service.Merge(r.Context(), id.UserID, middleware.GuestSessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, view)
}
