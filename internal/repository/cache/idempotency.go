package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// IdempotencyGuard remembers processed event ids for a TTL
type IdempotencyGuard struct {
	store KeyStore
	ttl   time.Duration
	scope string
}

// NewIdempotencyGuard creates a guard whose keys live under scope
func NewIdempotencyGuard(store KeyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope}, nil
}

func (g *IdempotencyGuard) key(eventID string) string {
	return fmt.Sprintf("idempotency:%s:%s", g.scope, eventID)
}

// CheckAndMark marks the event as seen and reports whether it had been seen before
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	set, err := g.store.SetNX(ctx, g.key(eventID), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Forget removes the mark so a failed event can be redelivered
func (g *IdempotencyGuard) Forget(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.key(eventID))
}
