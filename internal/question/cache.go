package question

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache keeps per-module category lists in Redis. The select screen hits
// this on every render, so it is worth keeping off the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(module string) string {
	return "question:categories:" + module
}

// GetCategories returns the cached category list, or nil on miss.
func (c *Cache) GetCategories(ctx context.Context, module string) ([]string, error) {
	data, err := c.client.Get(ctx, c.key(module)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SetCategories stores the category list for a module.
func (c *Cache) SetCategories(ctx context.Context, module string, categories []string) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(module), data, c.ttl).Err()
}

// Invalidate drops the cached list after a create/update/delete.
func (c *Cache) Invalidate(ctx context.Context, module string) error {
	return c.client.Del(ctx, c.key(module)).Err()
}
