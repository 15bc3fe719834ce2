package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyItem(itemID string) string { return "catalog:item:" + itemID }

func (c *Cache) GetItem(ctx context.Context, itemID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyItem(itemID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetItem(ctx context.Context, itemID string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyItem(itemID), b, ttl).Err()
}
