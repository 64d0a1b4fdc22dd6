package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	_, err := m.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryLazyExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Second))

	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	// two seconds later the entry reads as a miss, not as stale data
	now = now.Add(2 * time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemorySetReplacesWholesale(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("old"), time.Minute))
	require.NoError(t, m.Set(ctx, "k", []byte("new"), time.Minute))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryInvalidate(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Invalidate(ctx, "k"))

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemorySweepRemovesExpired(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "dead", []byte("v"), time.Second))
	require.NoError(t, m.Set(ctx, "live", []byte("v"), time.Hour))
	now = now.Add(time.Minute)

	// run one sweep pass directly
	m.mu.Lock()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	assert.NotContains(t, m.entries, "dead")
	assert.Contains(t, m.entries, "live")
}

func TestTTLConfigFallsBackPerCategory(t *testing.T) {
	cfg := TTLConfig{Search: time.Minute}

	assert.Equal(t, time.Minute, cfg.For(CategorySearch))
	assert.Equal(t, DefaultTTLs.Tags, cfg.For(CategoryTags))
	assert.Equal(t, DefaultTTLs.Feed, cfg.For(CategoryFeed))
}
