package handler

import (
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/smsqueue"
)

// SMSHandler exposes the SMS queue to admins and the scheduler
type SMSHandler struct {
	service *smsqueue.Service
	logger  *logger.Logger
}

// NewSMSHandler creates a new SMS queue handler
func NewSMSHandler(service *smsqueue.Service, log *logger.Logger) *SMSHandler {
	return &SMSHandler{
		service: service,
		logger:  log,
	}
}

// Tick handles POST /internal/sms/tick
// @Summary Process due SMS messages
// @Description Called by the scheduler; concurrent ticks are skipped
// @Tags Internal
// @Produce json
// @Param X-Cron-Token header string true "Scheduler token"
// @Success 200 {object} map[string]interface{} "Tick summary"
// @Failure 401 {object} map[string]string "Invalid scheduler token"
// @Router /internal/sms/tick [post]
func (h *SMSHandler) Tick(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ProcessTick(r.Context())
	if err != nil {
		// per-message failures are already recorded on the messages
		logger.FromContext(r.Context(), h.logger).Warnf("SMS tick finished with errors: %v", err)
	}
	response.Success(w, result)
}

// List handles GET /api/v1/admin/sms
// @Summary List queued SMS messages
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, processing, sent, failed or cancelled" default(pending)
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated messages"
// @Router /admin/sms [get]
func (h *SMSHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)
	status := domain.SMSStatus(r.URL.Query().Get("status"))

	messages, total, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Paginated(w, messages, total, limit, offset)
}

// Enqueue handles POST /api/v1/admin/sms
// @Summary Queue an SMS message
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body smsqueue.EnqueueInput true "Message"
// @Success 201 {object} map[string]interface{} "Queued message"
// @Failure 400 {object} map[string]interface{} "Invalid message"
// @Router /admin/sms [post]
func (h *SMSHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var in smsqueue.EnqueueInput
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.service.Enqueue(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, msg)
}

// Get handles GET /api/v1/admin/sms/{id}
// @Summary Get a queued SMS message
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID (UUID)"
// @Success 200 {object} map[string]interface{} "Message"
// @Failure 404 {object} map[string]string "Message not found"
// @Router /admin/sms/{id} [get]
func (h *SMSHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	msg, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, msg)
}

// Cancel handles DELETE /api/v1/admin/sms/{id}
// @Summary Cancel a pending SMS message
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Message ID (UUID)"
// @Success 204 "Message cancelled"
// @Failure 404 {object} map[string]string "Message not found"
// @Failure 409 {object} map[string]string "Message is no longer pending"
// @Router /admin/sms/{id} [delete]
func (h *SMSHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	if err := h.service.Cancel(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w)
}
