package handler

import (
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/gateway/payment"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/checkout"
)

// WebhookParser verifies a signed gateway payload
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error)
}

// WebhookHandler receives payment gateway callbacks
type WebhookHandler struct {
	parser   WebhookParser
	checkout *checkout.Service
	logger   *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(parser WebhookParser, checkout *checkout.Service, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		parser:   parser,
		checkout: checkout,
		logger:   log,
	}
}

// Stripe handles POST /webhooks/stripe
// @Summary Stripe webhook
// @Description Verifies the Stripe-Signature header and applies payment events once
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Event accepted"
// @Failure 400 {object} map[string]string "Invalid signature or payload"
// @Failure 502 {object} map[string]string "Event could not be applied, retry later"
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := request.ReadBody(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.parser.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.FromContext(r.Context(), h.logger).Warnf("Rejected webhook: %v", err)
		response.Error(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	if err := h.checkout.HandleWebhook(r.Context(), event); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, map[string]string{"status": "received"})
}
