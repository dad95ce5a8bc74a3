package notification

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/metrics"
)

// EventPublisher defines the interface for publishing task messages
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// TaskMessage is the payload published for each submitted task
type TaskMessage struct {
	TaskID uuid.UUID `json:"task_id"`
}

// Dispatcher records notification tasks and hands them to the task stream
type Dispatcher struct {
	tasks     domain.NotificationTaskRepository
	publisher EventPublisher
	subject   string
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewDispatcher creates a dispatcher publishing on subject
func NewDispatcher(tasks domain.NotificationTaskRepository, publisher EventPublisher, subject string, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		tasks:     tasks,
		publisher: publisher,
		subject:   subject,
		metrics:   m,
		logger:    log,
	}
}

// Submit creates a task for the order and publishes it.
// A task that cannot be published is marked failed.
func (d *Dispatcher) Submit(ctx context.Context, kind domain.NotificationKind, orderID uuid.UUID) error {
	task := &domain.NotificationTask{
		Kind:    kind,
		OrderID: orderID,
		Status:  domain.TaskSubmitted,
	}
	if err := d.tasks.Create(ctx, task); err != nil {
		return err
	}

	data, err := json.Marshal(TaskMessage{TaskID: task.ID})
	if err != nil {
		return err
	}

	if err := d.publisher.Publish(ctx, d.subject, data); err != nil {
		d.metrics.IncNotification(string(kind), "publish_failed")
		if markErr := d.tasks.MarkFailed(ctx, task.ID, "publish: "+err.Error()); markErr != nil {
			d.logger.Errorf(markErr, "Failed to mark task %s failed", task.ID)
		}
		return domain.WrapError(domain.ErrDependency, err, "notification queue unavailable")
	}

	d.metrics.IncNotification(string(kind), "submitted")
	d.logger.WithFields(map[string]interface{}{
		"task_id":  task.ID,
		"kind":     kind,
		"order_id": orderID,
	}).Debug("Notification task submitted")

	return nil
}
