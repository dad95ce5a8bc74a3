package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/gateway/email"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/metrics"
	"github.com/Pesokrava/storefront/internal/usecase/smsqueue"
)

// SMSQueue accepts text messages for later delivery
type SMSQueue interface {
	Enqueue(ctx context.Context, in smsqueue.EnqueueInput) (*domain.SMSMessage, error)
}

// Executor runs notification tasks
type Executor struct {
	tasks   domain.NotificationTaskRepository
	orders  domain.OrderRepository
	users   domain.UserRepository
	queue   SMSQueue
	mail    email.Sender
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewExecutor creates a task executor
func NewExecutor(
	tasks domain.NotificationTaskRepository,
	orders domain.OrderRepository,
	users domain.UserRepository,
	queue SMSQueue,
	mail email.Sender,
	m *metrics.Metrics,
	log *logger.Logger,
) *Executor {
	return &Executor{
		tasks:   tasks,
		orders:  orders,
		users:   users,
		queue:   queue,
		mail:    mail,
		metrics: m,
		logger:  log,
	}
}

// Execute runs the task once. Finished or unknown tasks are ignored;
// a returned error means the task was marked failed and may be redelivered.
func (e *Executor) Execute(ctx context.Context, taskID uuid.UUID) error {
	task, err := e.tasks.MarkRunning(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrStateConflict) {
			e.logger.Debugf("Notification task %s already completed", taskID)
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Warnf("Notification task %s not found", taskID)
			return nil
		}
		return err
	}

	log := e.logger.WithFields(map[string]interface{}{
		"task_id":  task.ID,
		"kind":     task.Kind,
		"order_id": task.OrderID,
		"attempt":  task.Attempts,
	})

	start := time.Now()
	runErr := e.run(ctx, task)
	e.metrics.ObserveJob("notification", time.Since(start), runErr)

	if runErr != nil {
		e.metrics.IncNotification(string(task.Kind), "failed")
		if markErr := e.tasks.MarkFailed(ctx, task.ID, runErr.Error()); markErr != nil {
			log.Error("Failed to mark notification task failed", markErr)
		}
		log.Error("Notification task failed", runErr)
		return runErr
	}

	if err := e.tasks.MarkSucceeded(ctx, task.ID); err != nil {
		log.Error("Failed to mark notification task succeeded", err)
		return err
	}
	e.metrics.IncNotification(string(task.Kind), "succeeded")
	log.Info("Notification task succeeded")
	return nil
}

func (e *Executor) run(ctx context.Context, task *domain.NotificationTask) error {
	order, err := e.orders.GetByID(ctx, task.OrderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	var user *domain.User
	if order.UserID != nil {
		user, err = e.users.GetByID(ctx, *order.UserID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("load user: %w", err)
		}
	}

	content, err := Render(task.Kind, order, user)
	if err != nil {
		return err
	}

	phone, address := resolvePhone(order, user), resolveEmail(order, user)
	if phone == "" && address == "" {
		e.logger.Warnf("No contact for order %s, skipping %s notification", order.ID, task.Kind)
		return nil
	}

	var smsErr, mailErr error
	var g errgroup.Group

	if phone != "" && !task.ChannelDone(domain.ChannelSMS) {
		g.Go(func() error {
			priority := domain.SMSPriorityNormal
			if task.Kind == domain.NotifyOrderShipped {
				priority = domain.SMSPriorityHigh
			}
			_, err := e.queue.Enqueue(ctx, smsqueue.EnqueueInput{
				Phone:    phone,
				Message:  content.SMS,
				Type:     string(task.Kind),
				Priority: &priority,
			})
			switch {
			case errors.Is(err, domain.ErrInvalidInput):
				// an unusable number never gets better on retry
				e.metrics.IncNotification(string(task.Kind), "sms_rejected")
				e.logger.WithFields(map[string]any{
					"task_id":  task.ID,
					"order_id": order.ID,
				}).Warnf("Skipping SMS, recipient rejected: %v", err)
			case err != nil:
				smsErr = fmt.Errorf("sms: %w", err)
				return nil
			}
			e.completeChannel(ctx, task.ID, domain.ChannelSMS)
			return nil
		})
	}

	if address != "" && !task.ChannelDone(domain.ChannelEmail) {
		g.Go(func() error {
			if err := e.mail.Send(ctx, email.Message{
				To:      address,
				Subject: content.Subject,
				Text:    content.Text,
				HTML:    content.HTML,
			}); err != nil {
				mailErr = fmt.Errorf("email: %w", err)
				return nil
			}
			e.completeChannel(ctx, task.ID, domain.ChannelEmail)
			return nil
		})
	}

	_ = g.Wait()
	return multierr.Combine(smsErr, mailErr)
}

// completeChannel keeps a redelivered task from repeating a channel that already went out
func (e *Executor) completeChannel(ctx context.Context, taskID uuid.UUID, channel string) {
	if err := e.tasks.CompleteChannel(ctx, taskID, channel); err != nil {
		e.logger.Warnf("Failed to record %s delivery for task %s: %v", channel, taskID, err)
	}
}

// resolvePhone prefers the profile phone over the shipping phone
func resolvePhone(o *domain.Order, u *domain.User) string {
	if u != nil && u.Phone != nil && *u.Phone != "" {
		return *u.Phone
	}
	return o.ContactPhone()
}

// resolveEmail prefers the profile email over addresses captured at checkout
func resolveEmail(o *domain.Order, u *domain.User) string {
	if u != nil && u.Email != "" {
		return u.Email
	}
	return o.ContactEmail()
}
