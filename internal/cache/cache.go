package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMiss is returned by Get when no live entry exists for the key.
	// Expired entries report ErrMiss, not stale data.
	ErrMiss = errors.New("cache: miss")

	// ErrUnavailable is returned when the backend itself cannot be
	// reached (networked backends only). Callers degrade to a direct
	// upstream fetch rather than failing the request.
	ErrUnavailable = errors.New("cache: backend unavailable")
)

// Store is a TTL key-value store for validated catalog payloads.
// Payloads are opaque bytes written and replaced as whole units; a Set
// for an existing key fully replaces the previous entry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Category classifies cached resources. Each category carries its own
// TTL: taxonomy data barely changes, chapter feeds churn constantly.
type Category string

const (
	CategorySearch  Category = "search"
	CategoryManga   Category = "manga"
	CategoryFeed    Category = "feed"
	CategoryChapter Category = "chapter"
	CategoryTags    Category = "tags"
	CategoryAuthor  Category = "author"
	CategoryGroup   Category = "group"
)

// TTLConfig holds the time-to-live per resource category.
type TTLConfig struct {
	Search  time.Duration
	Manga   time.Duration
	Feed    time.Duration
	Chapter time.Duration
	Tags    time.Duration
	Author  time.Duration
	Group   time.Duration
}

// DefaultTTLs are the fallback durations used when config leaves a
// category unset.
var DefaultTTLs = TTLConfig{
	Search:  5 * time.Minute,
	Manga:   30 * time.Minute,
	Feed:    2 * time.Minute,
	Chapter: 15 * time.Minute,
	Tags:    24 * time.Hour,
	Author:  6 * time.Hour,
	Group:   6 * time.Hour,
}

// For returns the TTL for the given category, falling back to the
// default for that category when unset.
func (c TTLConfig) For(cat Category) time.Duration {
	d := c.pick(cat)
	if d <= 0 {
		d = DefaultTTLs.pick(cat)
	}
	return d
}

func (c TTLConfig) pick(cat Category) time.Duration {
	switch cat {
	case CategorySearch:
		return c.Search
	case CategoryManga:
		return c.Manga
	case CategoryFeed:
		return c.Feed
	case CategoryChapter:
		return c.Chapter
	case CategoryTags:
		return c.Tags
	case CategoryAuthor:
		return c.Author
	case CategoryGroup:
		return c.Group
	default:
		return time.Minute
	}
}
