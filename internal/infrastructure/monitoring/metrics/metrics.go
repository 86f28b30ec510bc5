// Package metrics exposes Prometheus instrumentation for the curation
// pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements the curation service's instrumentation hooks.
type Metrics struct {
	registry *prometheus.Registry

	accepted  prometheus.Counter
	rejected  *prometheus.CounterVec
	runs      prometheus.Counter
	runTime   prometheus.Histogram
	runOutput *prometheus.CounterVec
}

// New builds a Metrics set registered on its own registry, so tests and
// multiple workers never collide on the global default.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smiclean",
			Name:      "molecules_accepted_total",
			Help:      "Molecules that passed every filter criterion.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smiclean",
			Name:      "molecules_rejected_total",
			Help:      "Molecules rejected, labelled by the first failing criterion.",
		}, []string{"criterion"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smiclean",
			Name:      "runs_total",
			Help:      "Completed curation runs.",
		}),
		runTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smiclean",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of curation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}),
		runOutput: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smiclean",
			Name:      "run_molecules_total",
			Help:      "Per-run molecule outcomes.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.accepted, m.rejected, m.runs, m.runTime, m.runOutput)
	return m
}

// MoleculeAccepted counts one accepted molecule.
func (m *Metrics) MoleculeAccepted() { m.accepted.Inc() }

// MoleculeRejected counts one rejection under its criterion.
func (m *Metrics) MoleculeRejected(criterion string) {
	m.rejected.WithLabelValues(criterion).Inc()
}

// RunCompleted records the aggregate outcome of a finished run.
func (m *Metrics) RunCompleted(accepted, rejected int, elapsed time.Duration) {
	m.runs.Inc()
	m.runTime.Observe(elapsed.Seconds())
	m.runOutput.WithLabelValues("accepted").Add(float64(accepted))
	m.runOutput.WithLabelValues("rejected").Add(float64(rejected))
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
