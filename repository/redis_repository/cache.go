package redis_repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "hyperscout:search:"

// ErrCacheMiss is returned when no cached response exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ResultCache stores rendered search responses in Redis with a TTL. The
// search pipeline never depends on it; it only shortcuts repeat queries at
// the server layer.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Get unmarshals the cached value for key into dest.
func (c *ResultCache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, searchKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set stores value under key for the cache TTL.
func (c *ResultCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKeyPrefix+key, data, c.ttl).Err()
}
