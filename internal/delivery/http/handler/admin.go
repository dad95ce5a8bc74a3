package handler

import (
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/analytics"
)

// AnalyticsHandler serves the admin dashboard and product event series
type AnalyticsHandler struct {
	service *analytics.Service
	logger  *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analytics.Service, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  log,
	}
}

// Dashboard handles GET /api/v1/admin/dashboard
// @Summary Admin dashboard
// @Description Order counts, paid revenue, pending refunds, queued SMS, low stock and top products
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} analytics.Dashboard "Dashboard"
// @Router /admin/dashboard [get]
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, d)
}

// ProductSeries handles GET /api/v1/admin/products/{id}/events
// @Summary Product event time series
// @Description Views, add-to-cart and purchases bucketed by hour or day
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param from query string false "Start (RFC3339 or YYYY-MM-DD), defaults to 30 days ago"
// @Param to query string false "End (RFC3339 or YYYY-MM-DD), defaults to now"
// @Param interval query string false "hour or day" default(day)
// @Success 200 {object} map[string]interface{} "Buckets"
// @Failure 400 {object} map[string]string "Invalid range"
// @Router /admin/products/{id}/events [get]
func (h *AnalyticsHandler) ProductSeries(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	from, err := request.GetTimeQuery(r, "from")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid from")
		return
	}
	to, err := request.GetTimeQuery(r, "to")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid to")
		return
	}

	buckets, err := h.service.ProductTimeSeries(r.Context(), productID, from, to, r.URL.Query().Get("interval"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, buckets)
}
