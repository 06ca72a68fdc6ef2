// Package metrics provides Prometheus metrics for import and relink runs.
// stindex is a batch tool, so metrics are written to a node-exporter
// textfile at the end of a run rather than served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for stindex. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	LastRunSuccess *prometheus.GaugeVec

	FilesTotal         prometheus.Counter
	EntriesTotal       *prometheus.CounterVec
	ScriptureRefsTotal *prometheus.CounterVec
	CrossRefsTotal     prometheus.Counter
	RelinkedTotal      prometheus.Counter
}

// New creates all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stindex_runs_total",
			Help: "Total number of import and relink runs",
		},
		[]string{"kind", "status"},
	)
	m.RunDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stindex_run_duration_seconds",
			Help:    "Duration of runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	m.LastRunSuccess = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stindex_last_run_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		},
		[]string{"kind"},
	)
	m.FilesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "stindex_source_files_total",
		Help: "Source files parsed",
	})
	m.EntriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stindex_entries_total",
			Help: "Doctrine entries built, by entry type",
		},
		[]string{"type"},
	)
	m.ScriptureRefsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stindex_scripture_refs_total",
			Help: "Scripture index rows written, by run kind",
		},
		[]string{"kind"},
	)
	m.CrossRefsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "stindex_cross_refs_total",
		Help: "Related-chapter edges written",
	})
	m.RelinkedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "stindex_relinked_entries_total",
		Help: "Entries whose content the relink pass rewrote",
	})
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRun records the outcome and duration of a run.
func (m *Metrics) ObserveRun(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(kind, status).Inc()
	m.RunDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.LastRunSuccess.WithLabelValues(kind).SetToCurrentTime()
	}
}

// AddFiles counts parsed source files.
func (m *Metrics) AddFiles(n int) {
	if m == nil {
		return
	}
	m.FilesTotal.Add(float64(n))
}

// AddEntries counts built entries by type.
func (m *Metrics) AddEntries(byType map[string]int) {
	if m == nil {
		return
	}
	for typ, n := range byType {
		m.EntriesTotal.WithLabelValues(typ).Add(float64(n))
	}
}

// AddIndexed counts written scripture rows, edges and relinked entries.
func (m *Metrics) AddIndexed(kind string, refs, crossRefs, relinked int) {
	if m == nil {
		return
	}
	m.ScriptureRefsTotal.WithLabelValues(kind).Add(float64(refs))
	m.CrossRefsTotal.Add(float64(crossRefs))
	m.RelinkedTotal.Add(float64(relinked))
}

// WriteTextfile writes the metrics in the text exposition format, atomically
// replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
