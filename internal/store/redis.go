package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces canvas keys in a shared Redis.
const DefaultRedisPrefix = "langcanvas:"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "langcanvas:"
	TTL      time.Duration // Expiration for saved state, default 0 (no expiration)
}

// RedisKV implements KV on Redis strings under a key prefix.
type RedisKV struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisKV creates a Redis-backed store.
func NewRedisKV(opts RedisOptions) *RedisKV {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisKVFromClient(client, opts.Prefix, opts.TTL)
}

// NewRedisKVFromClient wraps an existing client. An empty prefix means DefaultRedisPrefix.
func NewRedisKVFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisKV {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisKV{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisKV) key(k string) string {
	return s.prefix + k
}

// Ping checks the connection.
func (s *RedisKV) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q from redis: %w", key, err)
	}
	return data, nil
}

func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %q to redis: %w", key, err)
	}
	return nil
}

func (s *RedisKV) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %q from redis: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisKV) Close() error { return s.client.Close() }

var _ KV = (*RedisKV)(nil)
