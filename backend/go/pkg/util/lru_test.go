package util

import (
	"testing"
	"time"
)

func TestNewLRURequiresLimit(t *testing.T) {
	if _, err := NewLRU[string, int](CacheConfig{}); err == nil {
		t.Fatal("expected error when neither Capacity nor MaxWeight is set")
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRU[string, int](CacheConfig{Capacity: 2})
	if err != nil {
		t.Fatal(err)
	}
	c.Put("a", 1, 1)
	c.Put("b", 2, 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}
	c.Put("c", 3, 1)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUWeightLimit(t *testing.T) {
	c, _ := NewLRU[string, string](CacheConfig{MaxWeight: 10})
	c.Put("small", "x", 3)
	c.Put("medium", "y", 4)
	c.Put("large", "z", 8)

	if c.Weight() != 8 {
		t.Errorf("Weight() = %d, want 8", c.Weight())
	}
	if _, ok := c.Get("small"); ok {
		t.Error("expected small to be evicted")
	}
}

func TestLRUTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, _ := NewLRU[string, int](CacheConfig{
		Capacity: 4,
		TTL:      time.Minute,
		Now:      func() time.Time { return now },
	})
	c.Put("k", 1, 1)

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", c.Len())
	}
}

func TestLRUGetOrCreate(t *testing.T) {
	c, _ := NewLRU[string, *int](CacheConfig{Capacity: 2})
	calls := 0
	create := func() *int {
		calls++
		v := calls
		return &v
	}
	first := c.GetOrCreate("ip", create)
	second := c.GetOrCreate("ip", create)
	if first != second || calls != 1 {
		t.Errorf("GetOrCreate created %d values, want 1", calls)
	}
}

func TestLRUOnEvict(t *testing.T) {
	var evicted []any
	c, _ := NewLRU[int, int](CacheConfig{Capacity: 1, OnEvict: func(k any) { evicted = append(evicted, k) }})
	c.Put(1, 1, 1)
	c.Put(2, 2, 1)
	if len(evicted) != 1 || evicted[0] != 1 {
		t.Errorf("evicted = %v, want [1]", evicted)
	}
	if !c.Remove(2) || c.Remove(2) {
		t.Error("Remove should report presence exactly once")
	}
}
