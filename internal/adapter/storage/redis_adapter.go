package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

const itemKeyPrefix = "item:"

// RedisAdapter implements port.ItemCache. Entries are JSON snapshots keyed by
// item id with a per-entry TTL; Redis handles expiry.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func itemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

func (r *RedisAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	payload, err := r.client.Get(ctx, itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var item domain.Item
	if err := json.Unmarshal(payload, &item); err != nil {
		// A corrupt entry is as good as a miss; drop it.
		r.client.Del(ctx, itemKey(id))
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &item, nil
}

func (r *RedisAdapter) SetItem(ctx context.Context, item domain.Item, ttl time.Duration) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := r.client.Set(ctx, itemKey(item.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (r *RedisAdapter) DeleteItem(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, itemKey(id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
