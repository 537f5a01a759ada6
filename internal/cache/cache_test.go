package cache

import (
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](time.Minute, 10)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("Get(a) = %d, %v, want 1, true", got, ok)
	}

	c.Set("a", 2)
	got, _ = c.Get("a")
	if got != 2 {
		t.Fatalf("Get(a) after re-set = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := New[string, string](5*time.Minute, 10)
	c.nowFn = func() time.Time { return now }

	c.Set("k", "v")

	now = now.Add(5*time.Minute - time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not removed, Len() = %d", c.Len())
	}
}

func TestCacheEvictsOldestInserted(t *testing.T) {
	c := New[int, int](time.Minute, 3)
	for i := 1; i <= 3; i++ {
		c.Set(i, i)
	}

	// Re-setting key 1 must not refresh its eviction position.
	c.Set(1, 100)
	c.Set(4, 4)

	if _, ok := c.Get(1); ok {
		t.Fatal("oldest-inserted key survived eviction")
	}
	for _, key := range []int{2, 3, 4} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("key %d evicted unexpectedly", key)
		}
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string, int](time.Minute, 10)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted key still present")
	}
	c.Delete("a") // double delete is a no-op

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", c.Len())
	}
	c.Set("c", 3)
	if got, ok := c.Get("c"); !ok || got != 3 {
		t.Fatal("cache unusable after Clear")
	}
}
