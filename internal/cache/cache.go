// Package cache provides the cache port used for derived, read-mostly data such as
// dashboard statistics. Entries expire after a fixed TTL and can be invalidated explicitly.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache stores JSON-serializable values by key.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

type entry struct {
	data     []byte
	storedAt time.Time
}

// Memory keeps one timestamped slot per key in process memory.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// NewMemory returns a process-local cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && m.ttl > 0 && m.now().Sub(e.storedAt) >= m.ttl {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dest)
}

func (m *Memory) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = entry{data: data, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}
