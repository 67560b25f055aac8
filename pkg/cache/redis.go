package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces cache keys in a shared Redis database.
const DefaultRedisPrefix = "wzrd:cache:"

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithRedisPrefix overrides DefaultRedisPrefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db)
// and verifies the connection. A failed ping is retryable.
func NewRedisCache(ctx context.Context, url string, opts ...RedisOption) (*RedisCache, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, Retryable(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	return NewRedisCacheFromClient(client, opts...), nil
}

// NewRedisCacheFromClient wraps an existing client. Close closes the client.
func NewRedisCacheFromClient(client redis.UniversalClient, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(fmt.Errorf("redis get: %w", err))
	}
	return data, true, nil
}

// Set stores a value; a zero ttl keeps it until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return Retryable(fmt.Errorf("redis set: %w", err))
	}
	return nil
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
