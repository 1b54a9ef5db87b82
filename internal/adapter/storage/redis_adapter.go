package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/workshop-parts/internal/core/domain"
)

const (
	draftOrderKey            = "draft:current"
	idempotencyKeyPrefix     = "idempotency:"
	defaultIdempotencyKeyTTL = 24 * time.Hour
)

type RedisAdapter struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

type RedisOption func(*RedisAdapter)

// WithNamespace prefixes every key, e.g. "workshop:" so several workshops can
// share one Redis.
func WithNamespace(ns string) RedisOption {
	return func(r *RedisAdapter) { r.namespace = ns }
}

func WithIdempotencyTTL(ttl time.Duration) RedisOption {
	return func(r *RedisAdapter) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func NewRedisAdapter(client *redis.Client, opts ...RedisOption) *RedisAdapter {
	r := &RedisAdapter{client: client, ttl: defaultIdempotencyKeyTTL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisAdapter) LoadCurrentDraftOrder(ctx context.Context) (*domain.Order, error) {
	raw, err := r.client.Get(ctx, r.key(draftOrderKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft order: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode draft order: %w", err)
	}
	return &order, nil
}

func (r *RedisAdapter) SaveCurrentDraftOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return r.client.Del(ctx, r.key(draftOrderKey)).Err()
	}

	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode draft order: %w", err)
	}
	return r.client.Set(ctx, r.key(draftOrderKey), raw, 0).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(idempotencyKeyPrefix+key), 1, r.ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(idempotencyKeyPrefix+key)).Err()
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisAdapter) key(k string) string {
	return r.namespace + k
}
