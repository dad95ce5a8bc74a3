package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/refund"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/Pesokrava/storefront/internal/config"
)

// Stripe webhook event types routed into checkout
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

var errAPIKeyRequired = errors.New("stripe secret key is required")

// StripeGateway implements Gateway with PaymentIntents
type StripeGateway struct {
	signingSecret string
	currency      string
}

// NewStripeGateway configures the Stripe SDK once
func NewStripeGateway(cfg config.StripeConfig) (*StripeGateway, error) {
	key := strings.TrimSpace(cfg.SecretKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	stripe.Key = key

	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}

	return &StripeGateway{
		signingSecret: strings.TrimSpace(cfg.WebhookSecret),
		currency:      currency,
	}, nil
}

// InitializePayment creates a PaymentIntent tagged with the order id
func (g *StripeGateway) InitializePayment(ctx context.Context, req InitRequest) (Initialization, error) {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = g.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.AddMetadata("order_id", req.OrderID.String())
	params.SetIdempotencyKey("order-" + req.OrderID.String())
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return Initialization{}, fmt.Errorf("create payment intent: %w", err)
	}
	return Initialization{Reference: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// VerifyPayment loads the PaymentIntent and its latest charge
func (g *StripeGateway) VerifyPayment(ctx context.Context, reference string) (Verification, error) {
	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	params.Context = ctx

	pi, err := paymentintent.Get(reference, params)
	if err != nil {
		return Verification{}, fmt.Errorf("get payment intent: %w", err)
	}
	return verificationFromIntent(pi), nil
}

// RefundPayment refunds amountMinor of the PaymentIntent; the key makes retries safe
func (g *StripeGateway) RefundPayment(ctx context.Context, reference string, amountMinor int64, idempotencyKey string) (RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(reference),
		Amount:        stripe.Int64(amountMinor),
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return RefundResult{}, fmt.Errorf("create refund: %w", err)
	}

	result := RefundResult{ID: r.ID, Status: string(r.Status)}
	if r.FailureReason != "" {
		result.Message = string(r.FailureReason)
	}
	return result, nil
}

// ParseWebhook verifies the signature and extracts the PaymentIntent id
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.signingSecret == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}

	event, err := webhook.ConstructEvent(payload, signature, g.signingSecret)
	if err != nil {
		return nil, fmt.Errorf("verify signature: %w", err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil && len(event.Data.Raw) > 0 {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("decode event object: %w", err)
		}
		out.Reference = obj.ID
	}
	return out, nil
}

func verificationFromIntent(pi *stripe.PaymentIntent) Verification {
	v := Verification{
		Success:     pi.Status == stripe.PaymentIntentStatusSucceeded,
		Reference:   pi.ID,
		AmountMinor: pi.AmountReceived,
		Currency:    string(pi.Currency),
		Status:      string(pi.Status),
	}
	if v.AmountMinor == 0 {
		v.AmountMinor = pi.Amount
	}
	if pi.Metadata != nil {
		v.OrderID = pi.Metadata["order_id"]
	}

	if ch := pi.LatestCharge; ch != nil {
		v.AuthorizationCode = ch.AuthorizationCode
		if ch.Created > 0 {
			paid := time.Unix(ch.Created, 0).UTC()
			v.PaidAt = &paid
		}
	}
	if v.Success && v.PaidAt == nil {
		paid := time.Now().UTC()
		v.PaidAt = &paid
	}
	return v
}
