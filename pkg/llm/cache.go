package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Cache is a TTL-bounded in-memory response cache. Attribute and store
// lookups hit the same prompts repeatedly across a batch; freshness-
// sensitive workloads (validation, newcomer detection) must not use it.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	store   map[string]cacheEntry
	hits    int
	misses  int
	now     func() time.Time
}

type cacheEntry struct {
	value string
	at    time.Time
}

// Stats is a point-in-time cache counters snapshot.
type Stats struct {
	Hits    int
	Misses  int
	Size    int
	HitRate float64
}

// NewCache builds a cache holding at most maxSize entries for ttl each.
func NewCache(ttl time.Duration, maxSize int) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxSize <= 0 {
		maxSize = 500
	}
	return &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		store:   make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Key derives the cache key for one completion call.
func Key(prompt, model string, temperature float64) string {
	raw := prompt + "|" + model + "|" + strconv.FormatFloat(temperature, 'g', -1, 64)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response, or ok=false on miss or expiry.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok {
		c.misses++
		return "", false
	}
	if c.now().Sub(entry.at) > c.ttl {
		delete(c.store, key)
		c.misses++
		return "", false
	}
	c.hits++
	return entry.value, true
}

// Set stores a response, evicting the oldest entry when full.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxSize {
		c.evictOldest()
	}
	c.store[key] = cacheEntry{value: value, at: c.now()}
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.store {
		if oldestKey == "" || e.at.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.at
		}
	}
	if oldestKey != "" {
		delete(c.store, oldestKey)
	}
}

// Clear drops all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Stats reports hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.store), HitRate: rate}
}

// String renders the counters for log lines.
func (s Stats) String() string {
	return fmt.Sprintf("hits=%d misses=%d size=%d hit_rate=%.2f", s.Hits, s.Misses, s.Size, s.HitRate)
}

// cachingClient decorates a Client with the response cache.
type cachingClient struct {
	inner Client
	cache *Cache
}

// WithCache wraps client so identical requests within the TTL are served
// from memory.
func WithCache(client Client, cache *Cache) Client {
	return &cachingClient{inner: client, cache: cache}
}

func (c *cachingClient) Complete(ctx context.Context, req Request) (string, error) {
	r := req.withDefaults()
	key := Key(r.System+"\n"+r.Prompt, r.Model, r.Temperature)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	out, err := c.inner.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, out)
	return out, nil
}
