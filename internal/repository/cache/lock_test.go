package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
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

func TestRedisLock_ExclusiveUntilReleased(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	first, err := NewRedisLock(store, "sms:tick", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "sms:tick", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// a non-owner release must not free the lock
	require.NoError(t, second.Release(ctx))
	_, held := store.values["sms:tick"]
	assert.True(t, held)

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ReleaseAfterTakeover(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)
	_, err = lock.Acquire(ctx)
	require.NoError(t, err)

	// simulate expiry and a new holder
	store.values["k"] = "someone-else"

	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.values["k"])
}

func TestRedisLock_StoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")

	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)

	_, err = lock.Acquire(context.Background())
	assert.Error(t, err)
}

func TestNewRedisLock_Validation(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(newMemoryStore(), "", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(newMemoryStore(), "k", 0)
	assert.Error(t, err)
}

func TestIdempotencyGuard(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, guard.Forget(ctx, "evt_1"))
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = guard.CheckAndMark(ctx, "")
	assert.Error(t, err)
}
