package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// NotificationKind selects the copy and channels of a notification
type NotificationKind string

const (
	NotifyOrderProcessing NotificationKind = "order_processing"
	NotifyOrderShipped    NotificationKind = "order_shipped"
	NotifyOrderDelivered  NotificationKind = "order_delivered"
	NotifyRefundApproved  NotificationKind = "refund_approved"
)

// NotificationKindFor maps an order status to its notification
func NotificationKindFor(status OrderStatus) (NotificationKind, bool) {
	switch status {
	case OrderProcessing:
		return NotifyOrderProcessing, true
	case OrderShipped:
		return NotifyOrderShipped, true
	case OrderDelivered:
		return NotifyOrderDelivered, true
	}
	return "", false
}

// TaskStatus is the lifecycle of a notification task
type TaskStatus string

const (
	TaskSubmitted TaskStatus = "submitted"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// Notification channels
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// NotificationTask is a unit of best-effort customer notification work
type NotificationTask struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	Kind              NotificationKind `json:"kind" db:"kind"`
	OrderID           uuid.UUID        `json:"order_id" db:"order_id"`
	Status            TaskStatus       `json:"status" db:"status"`
	Attempts          int              `json:"attempts" db:"attempts"`
	CompletedChannels pq.StringArray   `json:"completed_channels" db:"completed_channels"`
	LastError         *string          `json:"last_error,omitempty" db:"last_error"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// ChannelDone reports whether an earlier attempt already settled the channel
func (t *NotificationTask) ChannelDone(channel string) bool {
	for _, c := range t.CompletedChannels {
		if c == channel {
			return true
		}
	}
	return false
}

// NotificationTaskRepository defines the interface for notification task bookkeeping
type NotificationTaskRepository interface {
	// Create stores a submitted task
	Create(ctx context.Context, task *NotificationTask) error

	// GetByID retrieves a task
	GetByID(ctx context.Context, id uuid.UUID) (*NotificationTask, error)

	// MarkRunning moves a task to running and bumps its attempt counter
	MarkRunning(ctx context.Context, id uuid.UUID) (*NotificationTask, error)

	// MarkSucceeded completes a task
	MarkSucceeded(ctx context.Context, id uuid.UUID) error

	// MarkFailed records a failure
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// CompleteChannel records that a channel needs no further attempts
	CompleteChannel(ctx context.Context, id uuid.UUID, channel string) error
}
