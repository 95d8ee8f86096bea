package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("a = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	c := NewLRUCache[int](10, time.Minute)
	c.clock = clock

	c.Set("k", 42)
	clock.Advance(30 * time.Second)
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Fatalf("expected hit before expiry, got %d, %v", v, ok)
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	c := NewLRUCache[int](10, time.Minute)
	c.clock = clock

	c.Set("old", 1)
	clock.Advance(45 * time.Second)
	c.Set("new", 2)
	clock.Advance(30 * time.Second)

	m := NewManager()
	m.Register(c)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("swept %d entries, want 1", n)
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("expected new to survive the sweep")
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := NewLRUCache[int](10, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}
	if c.Size() != 1 {
		t.Errorf("size after delete = %d", c.Size())
	}
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewManager().Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
