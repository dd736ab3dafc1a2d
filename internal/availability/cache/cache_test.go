package cache

import (
	"context"
	"testing"
	"time"

	"petsitter/pkg/calendar"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, 5*time.Minute), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, gen, err := c.Get(ctx, "sitter-1")
	assert.True(t, IsMiss(err))
	assert.Equal(t, int64(0), gen)

	data := calendar.SnapshotData{
		Blocked:   []calendar.Day{calendar.MustParseDay("2025-03-10")},
		Requested: []calendar.Day{calendar.MustParseDay("2025-03-11")},
		Booked:    []calendar.Day{calendar.MustParseDay("2025-03-12")},
	}
	require.NoError(t, c.Set(ctx, "sitter-1", gen, data))
	assert.True(t, mr.Exists("availability:sitter-1"))
	assert.Equal(t, 5*time.Minute, mr.TTL("availability:sitter-1"))

	got, _, err := c.Get(ctx, "sitter-1")
	require.NoError(t, err)
	assert.Equal(t, data.Blocked, got.Blocked)
	assert.Equal(t, data.Requested, got.Requested)
	assert.Equal(t, data.Booked, got.Booked)

	require.NoError(t, c.Invalidate(ctx, "sitter-1"))
	_, gen, err = c.Get(ctx, "sitter-1")
	assert.True(t, IsMiss(err))
	assert.Equal(t, int64(1), gen)
}

func TestRedisCacheRejectsEntryFromBeforeInvalidation(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	// A reader computes at generation 0, a write lands, then the reader stores.
	_, gen, err := c.Get(ctx, "sitter-1")
	require.True(t, IsMiss(err))
	require.NoError(t, c.Invalidate(ctx, "sitter-1"))
	require.NoError(t, c.Set(ctx, "sitter-1", gen, calendar.SnapshotData{}))

	_, current, err := c.Get(ctx, "sitter-1")
	assert.True(t, IsMiss(err))
	assert.Equal(t, int64(1), current)

	require.NoError(t, c.Set(ctx, "sitter-1", current, calendar.SnapshotData{}))
	_, _, err = c.Get(ctx, "sitter-1")
	assert.NoError(t, err)
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "sitter-1", 0, calendar.SnapshotData{}))
	mr.FastForward(6 * time.Minute)

	_, _, err := c.Get(ctx, "sitter-1")
	assert.True(t, IsMiss(err))
}

func TestRedisCacheCorruptEntryIsAnError(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("availability:sitter-1", "not json"))

	_, _, err := c.Get(context.Background(), "sitter-1")
	require.Error(t, err)
	assert.False(t, IsMiss(err))
}

func TestRedisCacheUnreachable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "sitter-1")
	require.Error(t, err)
	assert.False(t, IsMiss(err))
}

func TestNewWithoutClient(t *testing.T) {
	c := New(nil, time.Minute)
	_, _, err := c.Get(context.Background(), "x")
	assert.True(t, IsMiss(err))
	assert.NoError(t, c.Invalidate(context.Background(), "x"))
}
