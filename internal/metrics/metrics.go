// Package metrics exposes Prometheus collectors for visibility computations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "lsvis_"

// Computation outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeNoNight = "no_night"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	computations   *prometheus.CounterVec
	duration       prometheus.Histogram
	visibleWindows prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "computations_total",
				Help: "Visibility computations by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "computation_seconds",
				Help:    "Visibility computation duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		visibleWindows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "visible_windows",
				Help:    "True-visibility windows per successful computation.",
				Buckets: []float64{0, 1, 2, 3, 5, 8},
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.computations, m.duration, m.visibleWindows)
	}
	return m
}

// Observe records one computation.
func (m *Metrics) Observe(outcome string, elapsed time.Duration, visible int) {
	if m == nil {
		return
	}
	m.computations.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		m.visibleWindows.Observe(float64(visible))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
