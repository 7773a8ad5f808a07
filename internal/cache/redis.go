package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a Redis instance, for deployments that
// share the cache between replicas. Entries carry their own expiry so
// no sweep is needed.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type redisEntry struct {
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRedis connects to the given Redis URL and verifies the connection.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		// Fallback for plain host:port addresses.
		opt = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{client: client, ttl: ttl}, nil
}

// NewRedisWithClient wraps an existing client, for tests.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, time.Time, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis cache read failed, treating as miss", "key", key, "error", err)
		}
		return nil, time.Time{}, false
	}
	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		slog.Warn("dropping corrupt redis cache entry", "key", key, "error", err)
		r.client.Del(ctx, key)
		return nil, time.Time{}, false
	}
	return entry.Payload, entry.Timestamp, true
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte, ts time.Time) {
	raw, err := json.Marshal(redisEntry{Payload: payload, Timestamp: ts})
	if err != nil {
		slog.Warn("redis cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		slog.Warn("redis cache write failed", "key", key, "error", err)
	}
}

func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("redis cache delete failed", "error", err)
	}
}

func (r *Redis) DeletePrefix(ctx context.Context, prefix string) {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("redis cache scan failed", "prefix", prefix, "error", err)
		return
	}
	r.Delete(ctx, keys...)
}

// DeleteOlderThan is a no-op: Redis expires entries server-side.
func (r *Redis) DeleteOlderThan(context.Context, time.Time) int {
	return 0
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
