package metrics

import "github.com/prometheus/client_golang/prometheus"

// AnalysisMetrics holds Prometheus metrics for review analysis outcomes.
type AnalysisMetrics struct {
	Analyses    *prometheus.CounterVec
	Predictions *prometheus.CounterVec
}

// NewAnalysisMetrics creates and registers analysis metrics on the given registry.
func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total number of analyze requests, by result.",
		}, []string{"result"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "predictions_total",
			Help:      "Total number of mentioned aspects decoded, by category and polarity.",
		}, []string{"category", "polarity"}),
	}

	reg.MustRegister(m.Analyses, m.Predictions)
	return m
}
