package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pscheid92/reviewpulse/internal/platform/version"
)

const namespace = "reviewpulse"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RegisterBuildInfo exports a constant 1 labelled with the build and the
// aspect schema, so dashboards can tell which schema produced a prediction.
func RegisterBuildInfo(reg prometheus.Registerer, schemaID string) {
	info := version.WithSchema(schemaID)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build and aspect schema of the running service.",
		ConstLabels: prometheus.Labels{
			"version":       info.Version,
			"commit":        info.Commit,
			"go_version":    info.GoVersion,
			"aspect_schema": info.SchemaID,
		},
	}, func() float64 { return 1 }))
}
