package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/delivery/events"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/notification"
)

// defaultTaskTimeout bounds one task execution
const defaultTaskTimeout = 30 * time.Second

var errShuttingDown = errors.New("worker is shutting down")

// TaskExecutor runs a notification task by id
type TaskExecutor interface {
	Execute(ctx context.Context, taskID uuid.UUID) error
}

// NotificationWorker executes notification tasks delivered from JetStream
type NotificationWorker struct {
	executor    TaskExecutor
	taskTimeout time.Duration
	logger      *logger.Logger

	mu       sync.Mutex
	inFlight int
	closed   bool
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(executor TaskExecutor, taskTimeout time.Duration, log *logger.Logger) *NotificationWorker {
	if taskTimeout <= 0 {
		taskTimeout = defaultTaskTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &NotificationWorker{
		executor:    executor,
		taskTimeout: taskTimeout,
		logger:      log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// HandleDelivery executes the task named by a delivery.
// Malformed messages are dropped; a failed execution is redelivered until the final attempt.
func (w *NotificationWorker) HandleDelivery(ctx context.Context, d events.Delivery) error {
	var msg notification.TaskMessage
	if err := json.Unmarshal(d.Data, &msg); err != nil || msg.TaskID == uuid.Nil {
		w.logger.WithFields(map[string]any{
			"payload_size": len(d.Data),
		}).Warn("Dropping malformed notification message")
		return nil
	}

	if !w.begin() {
		return errShuttingDown
	}
	defer w.done()

	log := w.logger.WithFields(map[string]any{
		"task_id": msg.TaskID.String(),
		"attempt": d.Attempt,
	})

	// shutdown cancels w.ctx; ctx is the consumer loop's
	execCtx, cancel := context.WithTimeout(w.ctx, w.taskTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := w.executor.Execute(log.IntoContext(execCtx), msg.TaskID)
	if err == nil {
		return nil
	}

	if d.Final {
		log.Error("Notification task failed on final delivery, giving up", err)
		return nil
	}
	log.Warnf("Notification task failed, will be redelivered: %v", err)
	return err
}

func (w *NotificationWorker) begin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.inFlight++
	w.wg.Add(1)
	return true
}

func (w *NotificationWorker) done() {
	w.mu.Lock()
	w.inFlight--
	w.mu.Unlock()
	w.wg.Done()
}

// Shutdown stops accepting deliveries and waits for in-flight tasks
func (w *NotificationWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down notification worker...")

	w.mu.Lock()
	w.closed = true
	pending := w.inFlight
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"in_flight": pending,
	}).Info("Waiting for in-flight tasks")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		w.logger.Info("All in-flight tasks completed")
		return nil
	case <-ctx.Done():
		// abort the stragglers; their tasks stay failed or running and are redelivered
		w.cancel()
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// InFlight returns the number of executing tasks
func (w *NotificationWorker) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}
