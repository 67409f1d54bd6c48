package redis

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/domain"
)

// --- In-memory cache unit tests (no Redis needed) ---

func TestMemoryCache_Miss(t *testing.T) {
	cache := newMemoryCache(10*time.Second, clockwork.NewFakeClock())

	_, hit := cache.get("aspects/v1:missing")
	assert.False(t, hit)
}

func TestMemoryCache_HitReturnsCopy(t *testing.T) {
	cache := newMemoryCache(10*time.Second, clockwork.NewFakeClock())

	stored := []int{0, 3, 0, 1}
	cache.set("k", stored)
	stored[1] = 2

	got, hit := cache.get("k")
	require.True(t, hit)
	assert.Equal(t, []int{0, 3, 0, 1}, got)

	got[0] = 9
	again, _ := cache.get("k")
	assert.Equal(t, 0, again[0])
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := newMemoryCache(10*time.Second, clock)

	cache.set("k", []int{1})

	clock.Advance(9 * time.Second)
	_, hit := cache.get("k")
	assert.True(t, hit, "Should still hit before TTL")

	clock.Advance(2 * time.Second)
	_, hit = cache.get("k")
	assert.False(t, hit, "Should miss after TTL")
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := newMemoryCache(10*time.Second, clock)

	cache.set("old", []int{1})
	clock.Advance(6 * time.Second)
	cache.set("new", []int{2})
	clock.Advance(5 * time.Second)

	assert.Equal(t, 1, cache.evictExpired())
	assert.Equal(t, 1, cache.size())
}

func TestPredictionCache_StartEvictionTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewPredictionCache(nil, time.Second, clock, metrics.NewCacheMetrics(prometheus.NewRegistry()))
	c.mem.set("k", []int{1})

	stop := c.StartEvictionTimer(time.Minute)
	defer stop()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool { return c.mem.size() == 0 }, time.Second, 5*time.Millisecond)
}

// --- Memory-only PredictionCache ---

func TestPredictionCache_MemoryOnly(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewCacheMetrics(prometheus.NewRegistry())
	c := NewPredictionCache(nil, time.Minute, clockwork.NewFakeClock(), m)

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []int{0, 3}, time.Hour))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, got)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues(metrics.LayerMemory)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Misses.WithLabelValues(metrics.LayerMemory)), 0)
}
