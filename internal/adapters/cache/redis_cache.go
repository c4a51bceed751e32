package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements providers.Cache on top of Redis. Entry expiry is
// delegated to Redis key TTLs.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

var _ providers.Cache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client. Keys are namespaced with prefix.
func NewRedisCache(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, prefix: prefix, logger: logger}
}

// NewRedisClient builds a client from connection settings and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", slog.String("key", key))
		return false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", slog.String("key", key), slog.String("error", err.Error()))
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		r.logger.Error("Redis cache unmarshal error", slog.String("key", key), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	r.logger.Debug("Redis cache hit", slog.String("key", key))
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.logger.Debug("Redis cache set", slog.String("key", key), slog.Duration("ttl", ttl))
	return nil
}

func (r *RedisCache) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}
