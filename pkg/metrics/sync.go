package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records reconciliation outcomes on the server side.
type SyncMetrics struct {
	duration  *prometheus.HistogramVec
	applied   *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewSyncMetrics registers the reconciler metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_reconcile_duration_seconds",
		Help:    "Duration of mutation reconciliation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table", "action"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_mutations_applied_total",
		Help: "Mutations accepted and applied to the tenant store.",
	}, []string{"table", "action"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_conflicts_total",
		Help: "Version-mismatch conflicts detected during reconciliation.",
	}, []string{"table"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_mutations_rejected_total",
		Help: "Mutations rejected before or during reconciliation.",
	}, []string{"table", "reason"})
	reg.MustRegister(duration, applied, conflicts, rejected)
	return &SyncMetrics{
		duration:  duration,
		applied:   applied,
		conflicts: conflicts,
		rejected:  rejected,
	}
}

// ObserveDuration records a reconciliation duration.
func (m *SyncMetrics) ObserveDuration(table, action string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(table), normalizeLabel(action)).Observe(d.Seconds())
}

// IncApplied counts an accepted mutation.
func (m *SyncMetrics) IncApplied(table, action string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(table), normalizeLabel(action)).Inc()
}

// IncConflict counts a detected version conflict.
func (m *SyncMetrics) IncConflict(table string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(table)).Inc()
}

// IncRejected counts a rejected mutation by reason.
func (m *SyncMetrics) IncRejected(table, reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(table), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
