package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores scopes as prefixed Redis keys.
type RedisBackend struct {
	client redis.Cmdable
	prefix string
}

// NewRedisBackend namespaces every key under prefix.
func NewRedisBackend(client redis.Cmdable, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// Scope implements Backend.
func (b *RedisBackend) Scope(prefix string, defaultTTL time.Duration) Storage {
	return &redisStorage{client: b.client, prefix: b.prefix + prefix, ttl: defaultTTL}
}

type redisStorage struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func (s *redisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *redisStorage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	d := effectiveTTL(ttl, s.ttl)
	if d < 0 {
		d = 0
	}
	if err := s.client.Set(ctx, s.prefix+key, value, d).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStorage) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *redisStorage) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s*: %w", s.prefix, err)
	}
	return nil
}
