package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration, loaded from MANGAPROXY_*
// environment variables.
type Config struct {
	ListenAddr string `env:"MANGAPROXY_ADDR" envDefault:":8080"`
	DBPath     string `env:"MANGAPROXY_DB_PATH"`

	Upstream UpstreamConfig
	Cache    CacheConfig
	Auth     AuthConfig
}

// UpstreamConfig configures the outbound catalog client.
type UpstreamConfig struct {
	BaseURL      string `env:"MANGAPROXY_UPSTREAM_URL" envDefault:"https://api.mangadex.org"`
	AuthURL      string `env:"MANGAPROXY_UPSTREAM_AUTH_URL" envDefault:"https://auth.mangadex.org/realms/mangadex/protocol/openid-connect/token"`
	ClientID     string `env:"MANGAPROXY_UPSTREAM_CLIENT_ID"`
	ClientSecret string `env:"MANGAPROXY_UPSTREAM_CLIENT_SECRET"`

	Timeout        time.Duration `env:"MANGAPROXY_UPSTREAM_TIMEOUT" envDefault:"12s"`
	RetryAttempts  int           `env:"MANGAPROXY_UPSTREAM_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"MANGAPROXY_UPSTREAM_RETRY_DELAY" envDefault:"250ms"`

	// Outbound rate limit, to stay under the catalog service's thresholds.
	RateLimit float64 `env:"MANGAPROXY_UPSTREAM_RPS" envDefault:"4"`
	RateBurst int     `env:"MANGAPROXY_UPSTREAM_BURST" envDefault:"8"`
}

// CacheConfig selects the cache backend and the TTL per resource
// category. Taxonomy data barely changes, chapter feeds churn; a single
// global TTL would either hammer upstream or serve stale feeds.
type CacheConfig struct {
	Backend   string `env:"MANGAPROXY_CACHE" envDefault:"memory"` // memory | redis
	RedisAddr string `env:"MANGAPROXY_REDIS_ADDR" envDefault:"localhost:6379"`

	SearchTTL  time.Duration `env:"MANGAPROXY_TTL_SEARCH" envDefault:"5m"`
	MangaTTL   time.Duration `env:"MANGAPROXY_TTL_MANGA" envDefault:"30m"`
	FeedTTL    time.Duration `env:"MANGAPROXY_TTL_FEED" envDefault:"2m"`
	ChapterTTL time.Duration `env:"MANGAPROXY_TTL_CHAPTER" envDefault:"15m"`
	TagsTTL    time.Duration `env:"MANGAPROXY_TTL_TAGS" envDefault:"24h"`
	AuthorTTL  time.Duration `env:"MANGAPROXY_TTL_AUTHOR" envDefault:"6h"`
	GroupTTL   time.Duration `env:"MANGAPROXY_TTL_GROUP" envDefault:"6h"`
}

// AuthConfig configures JWT issuance for the app's own users.
type AuthConfig struct {
	JWTSecret   string        `env:"MANGAPROXY_JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer   string        `env:"MANGAPROXY_JWT_ISSUER" envDefault:"mangaproxy"`
	JWTDuration time.Duration `env:"MANGAPROXY_JWT_TTL" envDefault:"24h"`
}

// Load parses configuration from the environment and fills in the
// local default DB path when none is given.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = "."
		}
		cfg.DBPath = filepath.Join(home, ".mangaproxy", "data.db")
	}

	return cfg, nil
}
