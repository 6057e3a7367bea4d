package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// KV holds one key per live session so that revocation takes effect before
// the token expires.
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type redisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) KV {
	return &redisKV{client: client}
}

func (r *redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// memoryKV is used when no Redis URL is configured. Sessions do not survive
// a restart and are not shared between instances.
type memoryKV struct {
	c *cache.Cache
}

func NewMemoryKV() KV {
	return &memoryKV{c: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (m *memoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *memoryKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.c.Get(key)
	return ok, nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}
