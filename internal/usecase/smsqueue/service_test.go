package smsqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/mocks"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

var fixedNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

func newTestService(store *memoryStore) (*Service, *mocks.SMSRepository, *mocks.SMSSender) {
	repo := new(mocks.SMSRepository)
	sender := new(mocks.SMSSender)
	s := NewService(repo, sender, store, Options{
		MaxRetries:     3,
		BatchSize:      10,
		StaleAfter:     5 * time.Minute,
		RetryBaseDelay: time.Minute,
		LockTTL:        time.Minute,
	}, nil, logger.New("test"))
	s.now = func() time.Time { return fixedNow }
	return s, repo, sender
}

func TestService_ProcessTick_SendsClaimedMessages(t *testing.T) {
	store := newMemoryStore()
	service, repo, sender := newTestService(store)
	urgent := &domain.SMSMessage{ID: uuid.New(), Phone: "+15550001111", Message: "shipped", Priority: 1}
	normal := &domain.SMSMessage{ID: uuid.New(), Phone: "+15550002222", Message: "promo", Priority: 5}

	repo.On("ReclaimStale", mock.Anything, fixedNow.Add(-5*time.Minute)).Return(0, nil)
	repo.On("ClaimDue", mock.Anything, fixedNow, 10).Return([]*domain.SMSMessage{urgent, normal}, nil)
	sender.On("Send", mock.Anything, urgent.Phone, urgent.Message).Return("SM1", nil).Once()
	sender.On("Send", mock.Anything, normal.Phone, normal.Message).Return("SM2", nil).Once()
	repo.On("MarkSent", mock.Anything, urgent.ID, "SM1", fixedNow).Return(nil)
	repo.On("MarkSent", mock.Anything, normal.ID, "SM2", fixedNow).Return(nil)
	repo.On("AppendLog", mock.Anything, mock.MatchedBy(func(l *domain.SMSLog) bool {
		return l.Status == domain.SMSSent && l.Attempt == 1
	})).Return(nil).Twice()

	result, err := service.ProcessTick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, TickResult{Claimed: 2, Sent: 2}, result)
	repo.AssertExpectations(t)
	assert.Empty(t, store.values, "lock should be released")
}

func TestService_ProcessTick_RetryWithBackoff(t *testing.T) {
	service, repo, sender := newTestService(newMemoryStore())
	msg := &domain.SMSMessage{ID: uuid.New(), Phone: "+15550001111", Message: "hi", RetryCount: 1, MaxRetries: 3}

	repo.On("ReclaimStale", mock.Anything, mock.Anything).Return(0, nil)
	repo.On("ClaimDue", mock.Anything, fixedNow, 10).Return([]*domain.SMSMessage{msg}, nil)
	sender.On("Send", mock.Anything, msg.Phone, msg.Message).Return("", errors.New("carrier timeout"))
	// second attempt waits base * 2^1
	repo.On("MarkAttemptFailed", mock.Anything, msg.ID, "carrier timeout", fixedNow.Add(2*time.Minute)).
		Return(domain.SMSPending, nil)
	repo.On("AppendLog", mock.Anything, mock.MatchedBy(func(l *domain.SMSLog) bool {
		return l.Attempt == 2 && l.Error != nil && *l.Error == "carrier timeout"
	})).Return(nil)

	result, err := service.ProcessTick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Retried)
	repo.AssertExpectations(t)
}

func TestService_ProcessTick_FinalFailure(t *testing.T) {
	service, repo, sender := newTestService(newMemoryStore())
	msg := &domain.SMSMessage{ID: uuid.New(), Phone: "+15550001111", Message: "hi", RetryCount: 2, MaxRetries: 3}

	repo.On("ReclaimStale", mock.Anything, mock.Anything).Return(1, nil)
	repo.On("ClaimDue", mock.Anything, mock.Anything, 10).Return([]*domain.SMSMessage{msg}, nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("invalid number"))
	repo.On("MarkAttemptFailed", mock.Anything, msg.ID, "invalid number", mock.Anything).Return(domain.SMSFailed, nil)
	repo.On("AppendLog", mock.Anything, mock.Anything).Return(nil)

	result, err := service.ProcessTick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, TickResult{Reclaimed: 1, Claimed: 1, Failed: 1}, result)
}

func TestService_ProcessTick_SkipsWhenLocked(t *testing.T) {
	store := newMemoryStore()
	store.values[tickLockKey] = "other-holder"
	service, repo, _ := newTestService(store)

	result, err := service.ProcessTick(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	repo.AssertNotCalled(t, "ClaimDue", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, "other-holder", store.values[tickLockKey])
}

func TestService_ProcessTick_BookkeepingErrorsAggregated(t *testing.T) {
	service, repo, sender := newTestService(newMemoryStore())
	a := &domain.SMSMessage{ID: uuid.New(), Phone: "+15550001111", Message: "a"}
	b := &domain.SMSMessage{ID: uuid.New(), Phone: "+15550002222", Message: "b"}

	repo.On("ReclaimStale", mock.Anything, mock.Anything).Return(0, nil)
	repo.On("ClaimDue", mock.Anything, mock.Anything, 10).Return([]*domain.SMSMessage{a, b}, nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("SM", nil)
	repo.On("MarkSent", mock.Anything, a.ID, "SM", mock.Anything).Return(errors.New("db gone"))
	repo.On("MarkSent", mock.Anything, b.ID, "SM", mock.Anything).Return(nil)
	repo.On("AppendLog", mock.Anything, mock.Anything).Return(nil)

	result, err := service.ProcessTick(context.Background())

	assert.EqualError(t, err, "db gone")
	assert.Equal(t, 1, result.Sent)
}

func TestService_Enqueue_Defaults(t *testing.T) {
	service, repo, _ := newTestService(newMemoryStore())

	repo.On("Enqueue", mock.Anything, mock.MatchedBy(func(m *domain.SMSMessage) bool {
		return m.Priority == domain.SMSPriorityNormal &&
			m.MaxRetries == 3 &&
			m.Status == domain.SMSPending &&
			m.ScheduledAt.Equal(fixedNow)
	})).Return(nil)

	msg, err := service.Enqueue(context.Background(), EnqueueInput{
		Phone:   " +15550001111 ",
		Message: "Your order shipped",
		Type:    "order_shipped",
	})

	require.NoError(t, err)
	assert.Equal(t, "+15550001111", msg.Phone)
}

func TestService_Enqueue_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   EnqueueInput
	}{
		{"bad phone", EnqueueInput{Phone: "555-1234", Message: "x", Type: "t"}},
		{"empty message", EnqueueInput{Phone: "+15550001111", Type: "t"}},
		{"missing type", EnqueueInput{Phone: "+15550001111", Message: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := newTestService(newMemoryStore())

			_, err := service.Enqueue(context.Background(), tt.in)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			repo.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Backoff(t *testing.T) {
	service, _, _ := newTestService(newMemoryStore())

	assert.Equal(t, time.Minute, service.backoff(0))
	assert.Equal(t, 4*time.Minute, service.backoff(2))
	assert.Equal(t, maxBackoff, service.backoff(20))
}
