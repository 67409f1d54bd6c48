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

func setupTestPredictionCache(t *testing.T) (*PredictionCache, *clockwork.FakeClock, *metrics.CacheMetrics) {
	t.Helper()
	client := setupTestClient(t)
	clock := clockwork.NewFakeClock()
	m := metrics.NewCacheMetrics(prometheus.NewRegistry())
	return NewPredictionCache(client, 10*time.Second, clock, m), clock, m
}

func TestPredictionCache_SetWritesThroughToRedis(t *testing.T) {
	c, _, _ := setupTestPredictionCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "aspects/v1:abc", []int{0, 3, 0, 0, 1, 0, 0, 0, 0, 0}, time.Hour))

	raw, err := c.rdb.Get(ctx, "prediction:aspects/v1:abc").Result()
	require.NoError(t, err)
	assert.Equal(t, "[0,3,0,0,1,0,0,0,0,0]", raw)

	ttl, err := c.rdb.TTL(ctx, "prediction:aspects/v1:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}

func TestPredictionCache_FallsBackToRedisAfterMemoryExpiry(t *testing.T) {
	c, clock, m := setupTestPredictionCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []int{2, 1}, time.Hour))
	clock.Advance(11 * time.Second)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, got)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues(metrics.LayerRedis)), 0)

	// Repopulated into memory.
	_, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues(metrics.LayerMemory)), 0)
}

func TestPredictionCache_SharedAcrossInstances(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	m := metrics.NewCacheMetrics(prometheus.NewRegistry())

	a := NewPredictionCache(client, time.Minute, clockwork.NewFakeClock(), m)
	b := NewPredictionCache(client, time.Minute, clockwork.NewFakeClock(), m)

	require.NoError(t, a.Set(ctx, "k", []int{3}, time.Hour))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got)
}

func TestPredictionCache_MissInBothLayers(t *testing.T) {
	c, _, m := setupTestPredictionCache(t)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Misses.WithLabelValues(metrics.LayerRedis)), 0)
}

func TestPredictionCache_CorruptEntryIsAnError(t *testing.T) {
	c, _, m := setupTestPredictionCache(t)
	ctx := context.Background()

	require.NoError(t, c.rdb.Set(ctx, "prediction:k", "{not json", time.Hour).Err())

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("decode")), 0)
}
