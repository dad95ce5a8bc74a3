package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SMSStatus is the delivery state of a queued SMS
type SMSStatus string

const (
	SMSPending    SMSStatus = "pending"
	SMSProcessing SMSStatus = "processing"
	SMSSent       SMSStatus = "sent"
	SMSFailed     SMSStatus = "failed"
	SMSCancelled  SMSStatus = "cancelled"
)

// Default SMS priorities; lower is more urgent
const (
	SMSPriorityHigh   = 1
	SMSPriorityNormal = 5
	SMSPriorityLow    = 10
)

// DefaultSMSMaxRetries bounds delivery attempts per message
const DefaultSMSMaxRetries = 3

// SMSMessage is an outbound text message waiting for delivery
type SMSMessage struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Phone             string     `json:"phone" db:"phone" validate:"required,e164"`
	Message           string     `json:"message" db:"message" validate:"required,max=1600"`
	Type              string     `json:"type" db:"type" validate:"required,max=64"`
	Priority          int        `json:"priority" db:"priority" validate:"gte=0,lte=100"`
	Status            SMSStatus  `json:"status" db:"status"`
	RetryCount        int        `json:"retry_count" db:"retry_count"`
	MaxRetries        int        `json:"max_retries" db:"max_retries"`
	ScheduledAt       time.Time  `json:"scheduled_at" db:"scheduled_at"`
	ClaimedAt         *time.Time `json:"claimed_at,omitempty" db:"claimed_at"`
	SentAt            *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	LastError         *string    `json:"last_error,omitempty" db:"last_error"`
	ProviderMessageID *string    `json:"provider_message_id,omitempty" db:"provider_message_id"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// SMSLog is one delivery attempt
type SMSLog struct {
	ID                uuid.UUID `json:"id" db:"id"`
	MessageID         uuid.UUID `json:"message_id" db:"message_id"`
	Attempt           int       `json:"attempt" db:"attempt"`
	Status            SMSStatus `json:"status" db:"status"`
	ProviderMessageID *string   `json:"provider_message_id,omitempty" db:"provider_message_id"`
	Error             *string   `json:"error,omitempty" db:"error"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// SMSRepository defines the interface for the SMS queue
type SMSRepository interface {
	// Enqueue stores a pending message
	Enqueue(ctx context.Context, msg *SMSMessage) error

	// GetByID retrieves a message
	GetByID(ctx context.Context, id uuid.UUID) (*SMSMessage, error)

	// ReclaimStale returns processing messages claimed before the cutoff to pending
	ReclaimStale(ctx context.Context, cutoff time.Time) (int, error)

	// ClaimDue atomically moves up to limit due pending messages to processing,
	// ordered by priority then schedule time
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*SMSMessage, error)

	// MarkSent records a successful delivery
	MarkSent(ctx context.Context, id uuid.UUID, providerID string, at time.Time) error

	// MarkAttemptFailed records a failed delivery and either reschedules or fails the message
	MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) (SMSStatus, error)

	// Cancel moves a pending message to cancelled
	Cancel(ctx context.Context, id uuid.UUID) error

	// List retrieves messages by status
	List(ctx context.Context, status SMSStatus, limit, offset int) ([]*SMSMessage, error)

	// CountByStatus counts messages in a status
	CountByStatus(ctx context.Context, status SMSStatus) (int, error)

	// AppendLog records a delivery attempt
	AppendLog(ctx context.Context, entry *SMSLog) error
}
