package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache layers reported in the layer label.
const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
)

// CacheMetrics holds Prometheus metrics for the prediction cache.
type CacheMetrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Errors *prometheus.CounterVec

	BreakerState prometheus.Gauge
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prediction_cache",
			Name:      "hits_total",
			Help:      "Total number of prediction cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prediction_cache",
			Name:      "misses_total",
			Help:      "Total number of prediction cache misses, by layer.",
		}, []string{"layer"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prediction_cache",
			Name:      "errors_total",
			Help:      "Total number of prediction cache backend errors, by operation.",
		}, []string{"operation"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "circuit_breaker_state",
			Help:      "Redis circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Errors, m.BreakerState)
	return m
}
