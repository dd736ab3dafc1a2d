// Package cache keeps each sitter's merged calendar data in Redis. Entries
// are dropped on every block or booking write; a missing or unreadable entry
// is recomputed from the database, never read as an empty calendar.
//
// Every write also bumps a per-sitter generation. An entry computed before the
// latest write carries an older generation and reads as a miss, so a slow
// reader cannot park stale data in the cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	availabilityerrors "petsitter/internal/availability/errors"
	"petsitter/pkg/calendar"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "availability:"

type Cache interface {
	// Get returns the cached data, or ErrCacheMiss along with the generation
	// the caller must pass to Set.
	Get(ctx context.Context, sitterID string) (calendar.SnapshotData, int64, error)
	Set(ctx context.Context, sitterID string, generation int64, data calendar.SnapshotData) error
	Invalidate(ctx context.Context, sitterID string) error
}

func Key(sitterID string) string {
	return keyPrefix + sitterID
}

func generationKey(sitterID string) string {
	return keyPrefix + sitterID + ":gen"
}

type entry struct {
	Generation int64                 `json:"generation"`
	Data       calendar.SnapshotData `json:"data"`
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, sitterID string) (calendar.SnapshotData, int64, error) {
	values, err := c.client.MGet(ctx, Key(sitterID), generationKey(sitterID)).Result()
	if err != nil {
		return calendar.SnapshotData{}, 0, fmt.Errorf("redis mget: %w", err)
	}

	var generation int64
	if raw, ok := values[1].(string); ok {
		if generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return calendar.SnapshotData{}, 0, fmt.Errorf("decode cache generation: %w", err)
		}
	}

	raw, ok := values[0].(string)
	if !ok {
		return calendar.SnapshotData{}, generation, availabilityerrors.ErrCacheMiss
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return calendar.SnapshotData{}, 0, fmt.Errorf("decode cached availability: %w", err)
	}
	if e.Generation != generation {
		return calendar.SnapshotData{}, generation, availabilityerrors.ErrCacheMiss
	}
	return e.Data, generation, nil
}

func (c *RedisCache) Set(ctx context.Context, sitterID string, generation int64, data calendar.SnapshotData) error {
	raw, err := json.Marshal(entry{Generation: generation, Data: data})
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	if err := c.client.Set(ctx, Key(sitterID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, sitterID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(sitterID))
		pipe.Del(ctx, Key(sitterID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

// NoopCache always misses. Used when Redis is not configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (calendar.SnapshotData, int64, error) {
	return calendar.SnapshotData{}, 0, availabilityerrors.ErrCacheMiss
}

func (NoopCache) Set(context.Context, string, int64, calendar.SnapshotData) error { return nil }

func (NoopCache) Invalidate(context.Context, string) error { return nil }

// New picks the Redis cache when a client is available.
func New(client *redis.Client, ttl time.Duration) Cache {
	if client == nil {
		return NoopCache{}
	}
	return NewRedisCache(client, ttl)
}

// IsMiss reports whether err is a plain miss rather than a cache failure.
func IsMiss(err error) bool {
	return errors.Is(err, availabilityerrors.ErrCacheMiss)
}
