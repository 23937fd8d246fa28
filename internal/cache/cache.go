// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pawmap/internal/metrics"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = 5 * time.Minute

// Entry is a cached value with its expiry.
type Entry struct {
	Data      any
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache. Every Get is counted in the
// cache_hits_total/cache_misses_total metrics under the cache name.
type Cache struct {
	name string

	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// Stats tracks cache activity.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New returns a cache whose entries live for ttl and starts its cleanup
// goroutine. Call Close to stop it.
//
// Example:
//
//	c := cache.New("markers", 30*time.Second)
//	defer c.Close()
//	c.Set(cache.GenerateKey("markers", params), page)
func New(name string, ttl time.Duration) *Cache {
	return NewWithCleanup(name, ttl, DefaultCleanupInterval)
}

// NewWithCleanup is New with a custom sweep interval. A non-positive
// interval disables the background sweep.
func NewWithCleanup(name string, ttl, interval time.Duration) *Cache {
	c := &Cache{
		name:    name,
		entries: make(map[string]Entry),
		ttl:     ttl,
		stats:   Stats{LastCleanup: time.Now()},
		stop:    make(chan struct{}),
	}
	if interval > 0 {
		go c.cleanupLoop(interval)
	}
	return c
}

// Name returns the metrics label of the cache.
func (c *Cache) Name() string { return c.name }

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the value stored under key. Expired entries are removed and
// reported as misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if !time.Now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check: another goroutine may have refreshed the entry.
		if cur, ok := c.entries[key]; ok && !time.Now().Before(cur.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}

	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.mu.Unlock()
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.recordEviction()
}

// Clear drops every entry, e.g. after the place data was reloaded.
func (c *Cache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// GetStats returns a snapshot of the cache statistics.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries.
func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := int64(0)
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.RecordCacheAccess(c.name, true)
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.RecordCacheAccess(c.name, false)
}

func (c *Cache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}

// GenerateKey builds a compact cache key from a prefix and any
// JSON-serializable parameters.
func GenerateKey(prefix string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}
