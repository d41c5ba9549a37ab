// Package metrics exposes Prometheus collectors for a ratings run.
//
// Collectors live on a private registry so each run (and each test) starts from zero.
// A run's final values can be written in the node-exporter textfile format for batch
// job monitoring. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the collectors for one run
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec
	extractTotal  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	events        prometheus.Gauge
}

// New creates collectors registered on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_ratings_fetch_total",
				Help: "Event page HTTP attempts, including retries, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		extractTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_ratings_extract_total",
				Help: "Completed event tasks, labeled by failing stage or ok.",
			},
			[]string{"stage"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "event_ratings_fetch_duration_seconds",
				Help:    "Latency of single event page HTTP attempts, excluding backoff waits.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		events: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "event_ratings_events",
				Help: "Number of events in the current run.",
			},
		),
	}

	m.registry.MustRegister(m.fetchTotal, m.extractTotal, m.fetchDuration, m.events)
	return m
}

// Registry returns the registry holding the run's collectors
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch records one HTTP attempt and its latency
func (m *Metrics) ObserveFetch(err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(duration.Seconds())
}

// ObserveTask records a finished task under the stage that failed, or "ok"
func (m *Metrics) ObserveTask(stage string) {
	if m == nil {
		return
	}
	if stage == "" {
		stage = "ok"
	}
	m.extractTotal.WithLabelValues(stage).Inc()
}

// SetEvents records the number of events in the run
func (m *Metrics) SetEvents(n int) {
	if m == nil {
		return
	}
	m.events.Set(float64(n))
}

// WriteTextfile writes all collectors to path in the Prometheus text format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
