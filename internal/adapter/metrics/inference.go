package metrics

import "github.com/prometheus/client_golang/prometheus"

// InferenceMetrics holds Prometheus metrics for calls to the remote model server.
type InferenceMetrics struct {
	RequestDuration *prometheus.HistogramVec
	Failures        *prometheus.CounterVec
	BreakerState    prometheus.Gauge
}

// NewInferenceMetrics creates and registers inference metrics on the given registry.
func NewInferenceMetrics(reg prometheus.Registerer) *InferenceMetrics {
	m := &InferenceMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "request_duration_seconds",
			Help:      "Duration of model server requests in seconds, by endpoint.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "failures_total",
			Help:      "Total number of failed model server requests, by endpoint and reason.",
		}, []string{"endpoint", "reason"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inference",
			Name:      "circuit_breaker_state",
			Help:      "Model server circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.Failures, m.BreakerState)
	return m
}
