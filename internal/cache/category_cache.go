package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ms-fyyur/internal/logger"

	"github.com/go-redis/redis/v8"
)

// CategoriesKey holds the JSON encoded {"id": "type"} category map.
const CategoriesKey = "trivia:categories"

// Redis is the part of the go-redis client the cache uses.
type Redis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Connect opens a client to addr and checks it answers before returning it.
func Connect(ctx context.Context, addr string, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s for category caching", addr))
	return client, nil
}

type CategoryCache struct {
	Client Redis
	TTL    time.Duration
}

func NewCategoryCache(client Redis, ttl time.Duration) *CategoryCache {
	return &CategoryCache{Client: client, TTL: ttl}
}

// Load returns the cached categories. ok is false when nothing is cached.
func (c *CategoryCache) Load(ctx context.Context) (map[string]string, bool, error) {
	raw, err := c.Client.Get(ctx, CategoriesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", CategoriesKey, err)
	}

	var categories map[string]string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, false, fmt.Errorf("unmarshal %s: %w", CategoriesKey, err)
	}
	return categories, true, nil
}

func (c *CategoryCache) Store(ctx context.Context, categories map[string]string) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	if err := c.Client.Set(ctx, CategoriesKey, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("set %s: %w", CategoriesKey, err)
	}
	return nil
}
