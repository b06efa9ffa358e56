// internal/app/system/metrics/metrics.go

// Package metrics holds the Prometheus collectors for the admin console.
//
// All recording methods are safe on a nil *Console so components can be
// constructed without metrics in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "travelhub"

// Console groups the console engine's collectors.
type Console struct {
	loadPasses      prometheus.Counter
	loadDuration    prometheus.Histogram
	fetchFailures   *prometheus.CounterVec
	refreshTriggers *prometheus.CounterVec
	bulkRecords     *prometheus.CounterVec
	inlineEdits     *prometheus.CounterVec
	sessions        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Console {
	m := &Console{
		loadPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "console", Name: "load_passes_total",
			Help: "Aggregate loader passes completed.",
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "console", Name: "load_duration_seconds",
			Help:    "Wall time of one aggregate loader pass.",
			Buckets: prometheus.DefBuckets,
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "console", Name: "fetch_failures_total",
			Help: "Per-resource fetch failures substituted with empty data.",
		}, []string{"resource", "kind"}),
		refreshTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "console", Name: "refresh_triggers_total",
			Help: "Refresh triggers by source and outcome (started, dropped).",
		}, []string{"source", "outcome"}),
		bulkRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "console", Name: "bulk_records_total",
			Help: "Per-record bulk operation outcomes.",
		}, []string{"resource", "op", "outcome"}),
		inlineEdits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "console", Name: "inline_edits_total",
			Help: "Inline edit submissions by outcome (saved, invalid, failed).",
		}, []string{"resource", "outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "console", Name: "sessions",
			Help: "Open operator console sessions.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.loadPasses, m.loadDuration, m.fetchFailures,
			m.refreshTriggers, m.bulkRecords, m.inlineEdits, m.sessions)
	}
	return m
}

func (m *Console) ObserveLoad(took time.Duration) {
	if m == nil {
		return
	}
	m.loadPasses.Inc()
	m.loadDuration.Observe(took.Seconds())
}

func (m *Console) FetchFailed(resource, kind string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(resource, kind).Inc()
}

func (m *Console) RefreshTrigger(source, outcome string) {
	if m == nil {
		return
	}
	m.refreshTriggers.WithLabelValues(source, outcome).Inc()
}

func (m *Console) BulkRecord(resource, op, outcome string) {
	if m == nil {
		return
	}
	m.bulkRecords.WithLabelValues(resource, op, outcome).Inc()
}

func (m *Console) InlineEdit(resource, outcome string) {
	if m == nil {
		return
	}
	m.inlineEdits.WithLabelValues(resource, outcome).Inc()
}

func (m *Console) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Console) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
