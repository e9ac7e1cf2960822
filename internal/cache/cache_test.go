package cache

import (
	"context"
	"testing"
	"time"
)

type payload struct {
	Count int `json:"count"`
}

func TestMemoryExpiresAfterTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "stats", payload{Count: 3}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	ok, err := m.Get(ctx, "stats", &got)
	if err != nil || !ok || got.Count != 3 {
		t.Fatalf("expected cached value, got ok=%v err=%v value=%+v", ok, err, got)
	}

	now = now.Add(time.Minute)
	ok, err = m.Get(ctx, "stats", &got)
	if err != nil || ok {
		t.Fatalf("expected expired entry, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryInvalidate(t *testing.T) {
	m := NewMemory(time.Hour)
	ctx := context.Background()
	_ = m.Set(ctx, "a", payload{Count: 1})
	_ = m.Set(ctx, "b", payload{Count: 2})

	if err := m.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	var got payload
	if ok, _ := m.Get(ctx, "a", &got); ok {
		t.Fatalf("expected a to be invalidated")
	}
	if ok, _ := m.Get(ctx, "b", &got); !ok || got.Count != 2 {
		t.Fatalf("expected b to survive, got ok=%v value=%+v", ok, got)
	}
}
