package telegram

import (
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache[string](time.Minute, 10)

	if _, ok := c.Get(1); ok {
		t.Fatal("empty cache returned a value")
	}

	c.Set(1, "fa")
	got, ok := c.Get(1)
	if !ok || got != "fa" {
		t.Fatalf("Get(1) = %q, %v; want \"fa\", true", got, ok)
	}

	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Fatal("value survived Delete")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache[struct{}](time.Minute, 10)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set(1, struct{}{})
	if _, ok := c.Get(1); !ok {
		t.Fatal("fresh entry missing")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.Get(1); ok {
		t.Fatal("expired entry still served")
	}

	c.Set(2, struct{}{})
	if removed := c.PurgeExpired(); removed != 1 {
		t.Fatalf("PurgeExpired removed %d entries, want 1", removed)
	}
	if _, ok := c.Get(2); !ok {
		t.Fatal("live entry removed by purge")
	}
}

func TestCacheCapacityBound(t *testing.T) {
	c := NewCache[int](time.Minute, 3)

	for i := int64(0); i < 10; i++ {
		c.Set(i, int(i))
	}

	if len(c.entries) > 3 {
		t.Fatalf("cache holds %d entries, capacity is 3", len(c.entries))
	}
}

func TestCacheEvictsExpiredFirst(t *testing.T) {
	c := NewCache[int](time.Minute, 2)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set(1, 1)
	current = current.Add(2 * time.Minute)
	c.Set(2, 2)
	c.Set(3, 3)

	if _, ok := c.Get(2); !ok {
		t.Fatal("live entry evicted while an expired one remained")
	}
	if _, ok := c.Get(1); ok {
		t.Fatal("expired entry survived eviction")
	}
}
