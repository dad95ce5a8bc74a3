package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyStore is the subset of Redis used by guards and locks
type KeyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisStore adapts a go-redis client to KeyStore
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SetNX sets key only when absent
func (s *RedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

// Get returns the value of key or redis.Nil
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

// Del removes keys
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}
