package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Expiry is lazy: Get treats an expired
// entry as a miss. A background sweep reclaims memory for keys that are
// never read again; it is an optimization, not a correctness mechanism.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memEntry

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type memEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemory creates a memory store and starts its sweep goroutine.
// Call Close to stop it.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]memEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go m.sweep(time.Minute)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().After(e.expiresAt) {
		return nil, ErrMiss
	}
	return e.payload, nil
}

func (m *Memory) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memEntry{payload: payload, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Close stops the sweep goroutine.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := m.now()
			m.mu.Lock()
			for key, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
