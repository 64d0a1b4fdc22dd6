package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, "https://api.mangadex.org", cfg.Upstream.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 3, cfg.Upstream.RetryAttempts)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TagsTTL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.FeedTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTDuration)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MANGAPROXY_ADDR", ":9999")
	t.Setenv("MANGAPROXY_DB_PATH", "/tmp/test.db")
	t.Setenv("MANGAPROXY_CACHE", "redis")
	t.Setenv("MANGAPROXY_REDIS_ADDR", "redis:6379")
	t.Setenv("MANGAPROXY_TTL_SEARCH", "90s")
	t.Setenv("MANGAPROXY_UPSTREAM_CLIENT_ID", "cid")
	t.Setenv("MANGAPROXY_UPSTREAM_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 90*time.Second, cfg.Cache.SearchTTL)
	assert.Equal(t, "cid", cfg.Upstream.ClientID)
	assert.Equal(t, 2.5, cfg.Upstream.RateLimit)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("MANGAPROXY_TTL_SEARCH", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
