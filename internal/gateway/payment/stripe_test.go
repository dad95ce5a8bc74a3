package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/Pesokrava/storefront/internal/config"
)

func TestVerificationFromIntent_Succeeded(t *testing.T) {
	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	pi := &stripe.PaymentIntent{
		ID:             "pi_123",
		Amount:         5000,
		AmountReceived: 5000,
		Currency:       "usd",
		Status:         stripe.PaymentIntentStatusSucceeded,
		Metadata:       map[string]string{"order_id": "ord-1"},
		LatestCharge:   &stripe.Charge{AuthorizationCode: "A1B2", Created: created.Unix()},
	}

	v := verificationFromIntent(pi)

	assert.True(t, v.Success)
	assert.Equal(t, int64(5000), v.AmountMinor)
	assert.Equal(t, "A1B2", v.AuthorizationCode)
	assert.Equal(t, "ord-1", v.OrderID)
	require.NotNil(t, v.PaidAt)
	assert.True(t, created.Equal(*v.PaidAt))
}

func TestVerificationFromIntent_NotSucceeded(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:     "pi_456",
		Amount: 4999,
		Status: stripe.PaymentIntentStatusRequiresPaymentMethod,
	}

	v := verificationFromIntent(pi)

	assert.False(t, v.Success)
	assert.Equal(t, int64(4999), v.AmountMinor)
	assert.Nil(t, v.PaidAt)
}

func TestRefundResult_Succeeded(t *testing.T) {
	assert.True(t, RefundResult{Status: "succeeded"}.Succeeded())
	assert.True(t, RefundResult{Status: "pending"}.Succeeded())
	assert.False(t, RefundResult{Status: "failed"}.Succeeded())
}

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway(config.StripeConfig{})
	assert.ErrorIs(t, err, errAPIKeyRequired)
}

func TestParseWebhook(t *testing.T) {
	gw, err := NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_123", WebhookSecret: "whsec_test"})
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        EventPaymentSucceeded,
		"api_version": stripe.APIVersion,
		"data": map[string]any{
			"object": map[string]any{"id": "pi_789", "object": "payment_intent"},
		},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	event, err := gw.ParseWebhook(signed.Payload, signed.Header)

	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_789", event.Reference)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	gw, err := NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_123", WebhookSecret: "whsec_test"})
	require.NoError(t, err)

	_, err = gw.ParseWebhook([]byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef")

	assert.Error(t, err)
}
