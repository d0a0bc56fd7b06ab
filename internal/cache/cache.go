// Package cache stores serialized query responses for a short time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a byte-oriented key value cache
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache keeps entries in Redis under a key prefix
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to addr and verifies the connection
func NewRedisCache(ctx context.Context, addr, password string, db int, prefix string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, prefix: prefix}, nil
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop is a cache that never holds anything
type Nop struct{}

// Get implements Cache
func (Nop) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

// Set implements Cache
func (Nop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }
