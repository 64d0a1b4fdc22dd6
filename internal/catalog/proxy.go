package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"mangaproxy/internal/cache"
)

// Proxy is the read-through orchestrator: cache key, hit/miss decision,
// single-flight upstream fetch on miss, cache population. Failures are
// never cached, so a bad upstream answer cannot poison future requests.
type Proxy struct {
	store cache.Store
	ttls  cache.TTLConfig
	group singleflight.Group
	log   zerolog.Logger
}

func NewProxy(store cache.Store, ttls cache.TTLConfig, log zerolog.Logger) *Proxy {
	return &Proxy{
		store: store,
		ttls:  ttls,
		log:   log.With().Str("component", "proxy").Logger(),
	}
}

// Envelope is the uniform response shape every catalog endpoint
// returns, success or failure. Clients depend on this shape.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Cached  bool            `json:"cached"`
	Message string          `json:"message,omitempty"`
}

// Through serves one request through the cache. fetch runs the full
// miss path (upstream call, validation, normalization) and returns the
// value to marshal, cache and serve. The returned bool reports whether
// the payload came from the cache.
//
// Concurrent misses on the same key are coalesced: only one fetch runs,
// all callers share its result. Followers report cached=false since
// they received a fresh fetch, not a stored entry.
func (p *Proxy) Through(ctx context.Context, key string, cat cache.Category,
	fetch func(ctx context.Context) (any, error)) (json.RawMessage, bool, error) {

	payload, err := p.store.Get(ctx, key)
	if err == nil {
		return payload, true, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		// cache backend trouble: degrade to a direct fetch
		p.log.Warn().Str("key", key).Err(err).Msg("cache get failed, fetching direct")
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		body, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}

		if err := p.store.Set(ctx, key, body, p.ttls.For(cat)); err != nil {
			p.log.Warn().Str("key", key).Err(err).Msg("cache set failed")
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(json.RawMessage), false, nil
}

// Invalidate drops one cache entry. Used by the warm CLI and admin
// tooling; regular request flow only reads and sets.
func (p *Proxy) Invalidate(ctx context.Context, key string) error {
	return p.store.Invalidate(ctx, key)
}
