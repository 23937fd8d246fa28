// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/pawmap/internal/metrics"
)

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()

	c := New("test-basic", time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Fatal("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists := c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	c := New("test-expiration", 50*time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	c.SetWithTTL("key2", "value2", time.Minute)
	if _, exists := c.Get("key1"); !exists {
		t.Fatal("Expected key1 to exist immediately after set")
	}

	time.Sleep(100 * time.Millisecond)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
	if _, exists := c.Get("key2"); !exists {
		t.Error("Expected key2 with custom TTL to survive")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New("test-clear", time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")

	c.Delete("key1")
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}

	c.Clear()
	for _, key := range []string{"key2", "key3"} {
		if _, exists := c.Get(key); exists {
			t.Errorf("Expected %s to be cleared", key)
		}
	}
	if got := c.GetStats().TotalKeys; got != 0 {
		t.Errorf("TotalKeys = %d, want 0", got)
	}
}

func TestCacheStats(t *testing.T) {
	t.Parallel()

	c := New("test-stats", time.Minute)
	defer c.Close()

	hits := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("test-stats"))
	misses := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("test-stats"))

	c.Set("key1", "value1")
	c.Get("key1") // hit
	c.Get("key2") // miss
	c.Get("key1") // hit

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}

	hitRate := c.HitRate()
	expected := 200.0 / 3.0
	if hitRate < expected-0.01 || hitRate > expected+0.01 {
		t.Errorf("Expected hit rate around %.2f%%, got %.2f%%", expected, hitRate)
	}

	if got := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("test-stats")) - hits; got != 2 {
		t.Errorf("cache_hits_total delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("test-stats")) - misses; got != 1 {
		t.Errorf("cache_misses_total delta = %v, want 1", got)
	}
}

func TestCacheCleanup(t *testing.T) {
	t.Parallel()

	c := NewWithCleanup("test-cleanup", time.Minute, 0)
	defer c.Close()

	c.SetWithTTL("short-lived", "value1", 20*time.Millisecond)
	c.SetWithTTL("long-lived", "value2", time.Minute)

	time.Sleep(50 * time.Millisecond)
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 1 {
		t.Errorf("Expected 1 total key, got %d", stats.TotalKeys)
	}
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
	if _, exists := c.Get("long-lived"); !exists {
		t.Error("Expected long-lived key to still exist")
	}
}

func TestCacheCleanupLoop(t *testing.T) {
	t.Parallel()

	c := NewWithCleanup("test-loop", 5*time.Millisecond, 10*time.Millisecond)
	defer c.Close()
	c.Set("key", "value")

	deadline := time.Now().Add(2 * time.Second)
	for c.GetStats().TotalKeys != 0 {
		if time.Now().After(deadline) {
			t.Fatal("background sweep never removed the expired key")
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.Close()
	c.Close()
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	type params struct {
		Category string
		Offset   int
	}

	key1 := GenerateKey("markers", params{Category: "cafe", Offset: 0})
	key2 := GenerateKey("markers", params{Category: "cafe", Offset: 0})
	key3 := GenerateKey("markers", params{Category: "cafe", Offset: 50})
	key4 := GenerateKey("places", params{Category: "cafe", Offset: 0})

	if key1 != key2 {
		t.Error("Expected same params to generate same key")
	}
	if key1 == key3 {
		t.Error("Expected different params to generate different key")
	}
	if key1 == key4 {
		t.Error("Expected different prefixes to generate different keys")
	}
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()

	c := New("test-concurrency", time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("key", id)
				c.Get("key")
				if j%10 == 0 {
					c.Delete("key")
				}
			}
		}(i)
	}
	wg.Wait()

	stats := c.GetStats()
	if stats.Hits+stats.Misses != 1000 {
		t.Errorf("Expected 1000 lookups, got %d", stats.Hits+stats.Misses)
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New("bench", time.Minute)
	defer c.Close()
	c.Set("key", "value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key")
	}
}
