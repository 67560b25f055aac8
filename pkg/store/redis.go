package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	backend "github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces graph keys in a shared Redis database.
const DefaultRedisPrefix = "wzrd:graph:"

// RedisStore keeps documents as Redis strings and tracks keys in a set.
type RedisStore struct {
	client backend.UniversalClient
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix overrides DefaultRedisPrefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore connects to the server at url (redis://host:port/db).
func NewRedisStore(ctx context.Context, url string, opts ...RedisOption) (*RedisStore, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := backend.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStoreFromClient(client, opts...), nil
}

// NewRedisStoreFromClient wraps an existing client. Close closes the client.
func NewRedisStoreFromClient(client backend.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Save writes the document and records the key in the index.
func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(key), data, 0)
	pipe.SAdd(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("get from redis: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.SRem(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
