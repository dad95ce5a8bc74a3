package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/product"
)

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	service *product.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *product.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// VariantRequest is one size/color combination of a product
type VariantRequest struct {
	ID        *uuid.UUID       `json:"id,omitempty"`
	Size      string           `json:"size"`
	Color     string           `json:"color"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Inventory int              `json:"inventory"`
}

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	Images      []string         `json:"images,omitempty"`
	Inventory   int              `json:"inventory"`
	Variants    []VariantRequest `json:"variants,omitempty"`
	Version     *int             `json:"version,omitempty"`
}

func (req ProductRequest) toDomain(id uuid.UUID) *domain.Product {
	p := &domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Images:      req.Images,
		Inventory:   req.Inventory,
	}
	for _, v := range req.Variants {
		variant := domain.Variant{
			ProductID: id,
			Size:      v.Size,
			Color:     v.Color,
			Price:     v.Price,
			Inventory: v.Inventory,
		}
		if v.ID != nil {
			variant.ID = *v.ID
		}
		p.Variants = append(p.Variants, variant)
	}
	return p
}

// Create handles POST /api/v1/admin/products
// @Summary Create a product
// @Description Create a catalog product with optional size/color variants
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := req.toDomain(uuid.Nil)
	if err := h.service.Create(r.Context(), p); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, p)
}

// GetByID handles GET /api/v1/products/{id}
// @Summary Get a product by ID
// @Description Get a product with variants, rating aggregate and popularity counters; counts a view
// @Tags Products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var userID *uuid.UUID
	if c, ok := caller(r); ok {
		userID = &c.UserID
	}
	if err := h.service.RecordView(r.Context(), id, userID); err != nil {
		h.logger.Warnf("Failed to record view for product %s: %v", id, err)
	}

	response.Success(w, p)
}

// List handles GET /api/v1/products
// @Summary List products
// @Description Get a paginated list of products filtered by category and sorted
// @Tags Products
// @Produce json
// @Param category query string false "Category"
// @Param sort query string false "newest, popular, price_asc or price_desc" default(newest)
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Failure 400 {object} map[string]string "Unsupported sort"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)
	q := r.URL.Query()

	products, total, err := h.service.List(r.Context(), domain.ProductListFilter{
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Paginated(w, products, total, limit, offset)
}

// Popular handles GET /api/v1/products/popular
// @Summary Popular products
// @Description Top products by popularity score
// @Tags Products
// @Produce json
// @Param limit query int false "Number of products (max 100)" default(10)
// @Success 200 {object} map[string]interface{} "Products"
// @Router /products/popular [get]
func (h *ProductHandler) Popular(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Popular(r.Context(), request.GetIntQuery(r, "limit", 10))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, products)
}

// Search handles GET /api/v1/products/search
// @Summary Search products
// @Description Full-text search over name, description and category
// @Tags Products
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Number of products (max 100)" default(20)
// @Success 200 {object} map[string]interface{} "Products ranked by relevance"
// @Failure 502 {object} map[string]string "Search unavailable"
// @Router /products/search [get]
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), request.GetIntQuery(r, "limit", 20))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, products)
}

// Update handles PUT /api/v1/admin/products/{id}
// @Summary Update a product
// @Description Replace product details and variants
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param product body ProductRequest true "Updated product details"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Conflict - product was modified"
// @Router /admin/products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req ProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := req.toDomain(id)
	if req.Version != nil {
		p.Version = *req.Version
	} else {
		// Version field required for optimistic locking but not provided in update request
		existing, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		p.Version = existing.Version
	}

	if err := h.service.Update(r.Context(), p); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, p)
}

// Delete handles DELETE /api/v1/admin/products/{id}
// @Summary Delete a product
// @Description Soft delete a product and drop it from search
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product deleted successfully"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /admin/products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.NoContent(w)
}
