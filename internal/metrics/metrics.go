// Package metrics exposes Prometheus metrics for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes
const (
	OutcomeOK            = "ok"
	OutcomeNoCombination = "no_combination"
	OutcomeRejected      = "rejected"
)

// Manager owns the dashboard's collectors and their registry
type Manager struct {
	registry *prometheus.Registry

	relaySearches     *prometheus.CounterVec
	relayDuration     prometheus.Histogram
	relayOrderings    prometheus.Counter
	teamsConfirmed    prometheus.Counter
	poolResets        prometheus.Counter
	sheetSyncs        *prometheus.CounterVec
	sheetRowErrors    prometheus.Counter
	entriesRecorded   *prometheus.CounterVec
	lastSyncTimestamp prometheus.Gauge
}

// Option configures a Manager
type Option func(*options)

type options struct {
	namespace string
	runtime   bool
}

// WithNamespace sets the metric namespace (default "clubdash")
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors
func WithRuntimeCollectors() Option {
	return func(o *options) { o.runtime = true }
}

// NewManager creates a Manager on its own registry
func NewManager(opts ...Option) *Manager {
	o := options{namespace: "clubdash"}
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	if o.runtime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	auto := promauto.With(reg)

	return &Manager{
		registry: reg,
		relaySearches: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "relay",
			Name: "searches_total",
			Help: "Relay searches by outcome",
		}, []string{"mode", "outcome"}),
		relayDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace, Subsystem: "relay",
			Name:    "search_duration_seconds",
			Help:    "Wall time of relay searches",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}),
		relayOrderings: auto.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "relay",
			Name: "orderings_evaluated_total",
			Help: "Leg orderings scored across all searches",
		}),
		teamsConfirmed: auto.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "relay",
			Name: "teams_confirmed_total",
			Help: "Teams confirmed in simulator sessions",
		}),
		poolResets: auto.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "relay",
			Name: "pool_resets_total",
			Help: "Simulator pool resets",
		}),
		sheetSyncs: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "sheet",
			Name: "syncs_total",
			Help: "Roster syncs by source and outcome",
		}, []string{"source", "outcome"}),
		sheetRowErrors: auto.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "sheet",
			Name: "row_errors_total",
			Help: "Sheet rows rejected while decoding",
		}),
		entriesRecorded: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "entries",
			Name: "recorded_total",
			Help: "Manually entered records by kind",
		}, []string{"kind"}),
		lastSyncTimestamp: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: o.namespace, Subsystem: "sheet",
			Name: "last_sync_timestamp_seconds",
			Help: "Unix time of the last successful sync",
		}),
	}
}

// Registry returns the registry holding the collectors
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSearch records one optimizer run
func (m *Manager) RecordSearch(mode, outcome string, d time.Duration, orderings int) {
	if m == nil {
		return
	}
	m.relaySearches.WithLabelValues(mode, outcome).Inc()
	m.relayDuration.Observe(d.Seconds())
	m.relayOrderings.Add(float64(orderings))
}

func (m *Manager) TeamConfirmed() {
	if m == nil {
		return
	}
	m.teamsConfirmed.Inc()
}

func (m *Manager) PoolReset() {
	if m == nil {
		return
	}
	m.poolResets.Inc()
}

// RecordSync records a roster sync; rowErrors counts rejected rows
func (m *Manager) RecordSync(source string, err error, rowErrors int, at time.Time) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = "error"
	} else {
		m.lastSyncTimestamp.Set(float64(at.Unix()))
	}
	m.sheetSyncs.WithLabelValues(source, outcome).Inc()
	m.sheetRowErrors.Add(float64(rowErrors))
}

// EntryRecorded counts a manually entered record ("time_trial", "relay_result")
func (m *Manager) EntryRecorded(kind string) {
	if m == nil {
		return
	}
	m.entriesRecorded.WithLabelValues(kind).Inc()
}
