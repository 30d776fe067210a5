// Package cache keeps the last known remote snapshot of class state in Redis so that
// reconciliation does not have to read the store on every edit.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "classhub:snapshot:"

type RedisSnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSnapshotCache(rdb *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{rdb: rdb, ttl: ttl}
}

// Connect dials addr and pings it. The caller runs without a cache when it fails.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Get decodes the snapshot under key into dst. A miss returns false and no error.
func (c *RedisSnapshotCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("error reading snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("error decoding snapshot %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding snapshot %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("error writing snapshot %s: %w", key, err)
	}
	return nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("error deleting snapshot %s: %w", key, err)
	}
	return nil
}
