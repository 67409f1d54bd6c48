package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/domain"
)

// PredictionCache implements domain.PredictionCache with a per-process memory
// layer in front of an optional shared Redis layer. A nil rdb runs memory-only.
type PredictionCache struct {
	rdb     goredis.Cmdable
	mem     *memoryCache
	clock   clockwork.Clock
	metrics *metrics.CacheMetrics
}

var _ domain.PredictionCache = (*PredictionCache)(nil)

func NewPredictionCache(rdb goredis.Cmdable, memCacheTTL time.Duration, clock clockwork.Clock, m *metrics.CacheMetrics) *PredictionCache {
	return &PredictionCache{
		rdb:     rdb,
		mem:     newMemoryCache(memCacheTTL, clock),
		clock:   clock,
		metrics: m,
	}
}

// StartEvictionTimer runs a periodic goroutine that evicts expired in-memory cache entries.
// Returns a stop function that should be deferred.
func (c *PredictionCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				evicted := c.mem.evictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired prediction cache entries", "count", evicted, "remaining", c.mem.size())
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}

func (c *PredictionCache) Get(ctx context.Context, key string) ([]int, error) {
	// Layer 1: in-memory cache
	if indices, ok := c.mem.get(key); ok {
		c.metrics.Hits.WithLabelValues(metrics.LayerMemory).Inc()
		return indices, nil
	}
	c.metrics.Misses.WithLabelValues(metrics.LayerMemory).Inc()

	if c.rdb == nil {
		return nil, domain.ErrCacheMiss
	}

	// Layer 2: Redis
	data, err := c.rdb.Get(ctx, predictionKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.metrics.Misses.WithLabelValues(metrics.LayerRedis).Inc()
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		c.metrics.Errors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("prediction cache GET failed: %w", err)
	}

	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		c.metrics.Errors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("failed to unmarshal cached prediction: %w", err)
	}

	c.metrics.Hits.WithLabelValues(metrics.LayerRedis).Inc()
	c.mem.set(key, indices)
	return slices.Clone(indices), nil
}

func (c *PredictionCache) Set(ctx context.Context, key string, indices []int, ttl time.Duration) error {
	c.mem.set(key, indices)

	if c.rdb == nil {
		return nil
	}

	encoded, err := json.Marshal(indices)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	if err := c.rdb.Set(ctx, predictionKey(key), encoded, ttl).Err(); err != nil {
		c.metrics.Errors.WithLabelValues("set").Inc()
		return fmt.Errorf("prediction cache SET failed: %w", err)
	}
	return nil
}

func predictionKey(key string) string {
	return "prediction:" + key
}

// memoryCache is an in-memory L1 cache with TTL-based expiry.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type memoryCacheEntry struct {
	indices   []int
	expiresAt time.Time
}

func newMemoryCache(ttl time.Duration, clock clockwork.Clock) *memoryCache {
	return &memoryCache{
		entries: make(map[string]memoryCacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *memoryCache) get(key string) ([]int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}
	return slices.Clone(entry.indices), true
}

func (c *memoryCache) set(key string, indices []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryCacheEntry{
		indices:   slices.Clone(indices),
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *memoryCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}
