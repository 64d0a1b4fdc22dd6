package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client), mr
}

func TestRedisSetGet(t *testing.T) {
	r, _ := testRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestRedisMiss(t *testing.T) {
	r, _ := testRedis(t)

	_, err := r.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisExpiry(t *testing.T) {
	r, mr := testRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisInvalidate(t *testing.T) {
	r, _ := testRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, r.Invalidate(ctx, "k"))

	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisDownIsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	r := NewRedis(client)
	mr.Close()

	ctx := context.Background()
	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, r.Set(ctx, "k", []byte("v"), time.Minute), ErrUnavailable)
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)
}
