package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InitRequest describes a payment to open for an order
type InitRequest struct {
	OrderID     uuid.UUID
	AmountMinor int64
	Currency    string
	Email       string
}

// Initialization is what the client needs to complete payment
type Initialization struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Verification is the gateway's view of a payment
type Verification struct {
	Success           bool
	Reference         string
	AmountMinor       int64
	Currency          string
	Status            string
	PaidAt            *time.Time
	AuthorizationCode string
	OrderID           string
}

// RefundResult reports the outcome of a refund call
type RefundResult struct {
	ID      string
	Status  string
	Message string
}

// Succeeded reports whether the refund was accepted by the gateway
func (r RefundResult) Succeeded() bool {
	return r.Status == "succeeded" || r.Status == "pending"
}

// WebhookEvent is a verified gateway notification reduced to what checkout needs
type WebhookEvent struct {
	ID        string
	Type      string
	Reference string
}

// Gateway is the payment processor contract
type Gateway interface {
	InitializePayment(ctx context.Context, req InitRequest) (Initialization, error)
	VerifyPayment(ctx context.Context, reference string) (Verification, error)
	RefundPayment(ctx context.Context, reference string, amountMinor int64, idempotencyKey string) (RefundResult, error)
}
