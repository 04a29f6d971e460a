// Package cache is a best-effort TTL cache in front of the store. Nothing
// it returns is authoritative.
package cache

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Backend.Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Backend is a byte-oriented TTL key-value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// RedisBackend shares entries between instances.
type RedisBackend struct {
	client redis.UniversalClient
}

func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return val, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, val, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.client.Del(ctx, keys...).Err()
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// MemoryBackend keeps entries in process. Fine for a single instance.
type MemoryBackend struct {
	c *gocache.Cache
}

// NewMemoryBackend purges expired entries every cleanupInterval.
func NewMemoryBackend(cleanupInterval time.Duration) *MemoryBackend {
	return &MemoryBackend{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := b.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	buf := v.([]byte)
	return append([]byte(nil), buf...), nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	b.c.Set(key, append([]byte(nil), val...), ttl)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		b.c.Delete(k)
	}
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }
