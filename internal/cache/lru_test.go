package cache

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	// touch a so b becomes the eviction candidate
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("unexpected a: %v %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatalf("unexpected c: %v %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("expected len 2, got %d", c.Len())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed, len=%d", c.Len())
	}
}

func TestLRUCacheNoTTLNeverExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](1, 0)
	c.now = func() time.Time { return now }
	c.Set("k", 1)
	now = now.Add(1000 * time.Hour)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected entry without ttl to survive")
	}
}

func TestLRUCacheOverwrite(t *testing.T) {
	c := NewLRUCache[int](3, 0)
	c.Set("k", 1)
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 {
		t.Fatalf("expected overwritten value 2, got %d", v)
	}
	if c.Len() != 1 {
		t.Fatalf("expected len 1, got %d", c.Len())
	}
}

func TestLRUCacheStats(t *testing.T) {
	c := NewLRUCache[int](4, 0)
	for i := 0; i < 3; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	c.Get("0")
	c.Get("1")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if r := s.HitRatio(); r < 0.66 || r > 0.67 {
		t.Fatalf("unexpected hit ratio %v", r)
	}
	if (Stats{}).HitRatio() != 0 {
		t.Fatalf("empty stats should have ratio 0")
	}
}

func TestNewLRUCacheClampsSize(t *testing.T) {
	c := NewLRUCache[int](0, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Len() != 1 {
		t.Fatalf("expected size clamp to 1, got %d", c.Len())
	}
}
