package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/storefront/internal/domain"
)

// ReviewPage is a cached page of visible reviews with its total
type ReviewPage struct {
	Reviews []*domain.Review `json:"reviews"`
	Total   int              `json:"total"`
}

// RedisCache caches public review listings per product
type RedisCache struct {
	client         *redis.Client
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		reviewsListTTL: reviewsListTTL,
	}
}

func (c *RedisCache) reviewsListKey(productID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("product:%s:reviews:limit:%d:offset:%d", productID.String(), limit, offset)
}

func (c *RedisCache) productCacheKeysSet(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:cache_keys", productID.String())
}

// GetReviewsList retrieves a cached reviews page for a product
func (c *RedisCache) GetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int) (*ReviewPage, error) {
	key := c.reviewsListKey(productID, limit, offset)
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var page ReviewPage
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SetReviewsList stores a reviews page and tracks its key in a per-product SET
func (c *RedisCache) SetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int, page *ReviewPage) error {
	key := c.reviewsListKey(productID, limit, offset)
	trackingKey := c.productCacheKeysSet(productID)

	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reviewsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reviewsListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateReviewsList removes every cached review page of a product
func (c *RedisCache) InvalidateReviewsList(ctx context.Context, productID uuid.UUID) error {
	trackingKey := c.productCacheKeysSet(productID)

	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, trackingKey)
		return c.client.Unlink(ctx, keys...).Err()
	}
	return nil
}
