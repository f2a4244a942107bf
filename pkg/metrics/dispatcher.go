package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatcherMetrics records drain outcomes on the device side.
type DispatcherMetrics struct {
	drains   *prometheus.CounterVec
	items    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewDispatcherMetrics registers dispatcher metrics on the provided
// registerer.
func NewDispatcherMetrics(reg prometheus.Registerer) *DispatcherMetrics {
	if reg == nil {
		return &DispatcherMetrics{}
	}
	drains := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_drains_total",
		Help: "Drain attempts by outcome (completed, skipped, offline).",
	}, []string{"outcome"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_queue_items_total",
		Help: "Queue items processed by result (synced, conflict, failed).",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_drain_duration_seconds",
		Help:    "Duration of queue drains in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(drains, items, duration)
	return &DispatcherMetrics{
		drains:   drains,
		items:    items,
		duration: duration,
	}
}

// IncDrain counts a drain attempt by outcome.
func (m *DispatcherMetrics) IncDrain(outcome string) {
	if m == nil || m.drains == nil {
		return
	}
	m.drains.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncItem counts one processed queue item by result.
func (m *DispatcherMetrics) IncItem(result string) {
	if m == nil || m.items == nil {
		return
	}
	m.items.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveDrain records a drain duration.
func (m *DispatcherMetrics) ObserveDrain(d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
