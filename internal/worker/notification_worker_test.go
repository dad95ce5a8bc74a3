package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/delivery/events"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/notification"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, taskID uuid.UUID) error {
	return m.Called(ctx, taskID).Error(0)
}

func delivery(t *testing.T, taskID uuid.UUID, attempt int, final bool) events.Delivery {
	t.Helper()
	data, err := json.Marshal(notification.TaskMessage{TaskID: taskID})
	require.NoError(t, err)
	return events.Delivery{Data: data, Attempt: attempt, Final: final}
}

func TestNotificationWorker_HandleDelivery_Success(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))
	taskID := uuid.New()

	exec.On("Execute", mock.Anything, taskID).Return(nil)

	err := w.HandleDelivery(context.Background(), delivery(t, taskID, 1, false))

	assert.NoError(t, err)
	exec.AssertExpectations(t)
	assert.Equal(t, 0, w.InFlight())
}

func TestNotificationWorker_HandleDelivery_InvalidJSON(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))

	err := w.HandleDelivery(context.Background(), events.Delivery{Data: []byte(`{invalid json}`), Attempt: 1})

	assert.NoError(t, err)
	exec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestNotificationWorker_HandleDelivery_MissingTaskID(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))

	err := w.HandleDelivery(context.Background(), events.Delivery{Data: []byte(`{}`), Attempt: 1})

	assert.NoError(t, err)
	exec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestNotificationWorker_HandleDelivery_FailureIsRedelivered(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))
	taskID := uuid.New()
	boom := errors.New("sendgrid: status 503")

	exec.On("Execute", mock.Anything, taskID).Return(boom)

	err := w.HandleDelivery(context.Background(), delivery(t, taskID, 2, false))

	assert.ErrorIs(t, err, boom)
}

func TestNotificationWorker_HandleDelivery_FinalFailureAcked(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))
	taskID := uuid.New()

	exec.On("Execute", mock.Anything, taskID).Return(errors.New("still failing"))

	err := w.HandleDelivery(context.Background(), delivery(t, taskID, 5, true))

	assert.NoError(t, err)
}

func TestNotificationWorker_HandleDelivery_AppliesTimeout(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, 50*time.Millisecond, logger.New("test"))
	taskID := uuid.New()

	exec.On("Execute", mock.Anything, taskID).Return(nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
	})

	require.NoError(t, w.HandleDelivery(context.Background(), delivery(t, taskID, 1, false)))
}

func TestNotificationWorker_Shutdown_WaitsForInFlight(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))
	taskID := uuid.New()

	started := make(chan struct{})
	release := make(chan struct{})
	exec.On("Execute", mock.Anything, taskID).Return(nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.HandleDelivery(context.Background(), delivery(t, taskID, 1, false)))
	}()
	<-started
	assert.Equal(t, 1, w.InFlight())

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- w.Shutdown(context.Background()) }()

	select {
	case <-shutdownErr:
		t.Fatal("shutdown returned while a task was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.NoError(t, <-shutdownErr)
	wg.Wait()
}

func TestNotificationWorker_RejectsAfterShutdown(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))

	require.NoError(t, w.Shutdown(context.Background()))

	err := w.HandleDelivery(context.Background(), delivery(t, uuid.New(), 1, false))

	assert.ErrorIs(t, err, errShuttingDown)
	exec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestNotificationWorker_Shutdown_Timeout(t *testing.T) {
	exec := new(mockExecutor)
	w := NewNotificationWorker(exec, time.Second, logger.New("test"))
	taskID := uuid.New()

	started := make(chan struct{})
	exec.On("Execute", mock.Anything, taskID).Return(nil).Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	})

	go func() { _ = w.HandleDelivery(context.Background(), delivery(t, taskID, 1, false)) }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, w.Shutdown(ctx), context.DeadlineExceeded)
}
