// Package metrics exposes Prometheus instrumentation for the remote branch
// engine. A nil *Recorder is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "remotes"

// Save status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder holds the engine's collectors.
type Recorder struct {
	saves          *prometheus.CounterVec
	recordsWritten *prometheus.CounterVec
	saveDuration   prometheus.Histogram
	tableBuilds    prometheus.Counter
	tableSize      prometheus.Gauge
	skipped        *prometheus.CounterVec
}

// New registers the engine's collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		saves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Total number of remote state saves, labelled by remote, exchange and status.",
		}, []string{"remote", "exchange", "status"}),

		recordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Total number of store records written, labelled by remote.",
		}, []string{"remote"}),

		saveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_ms",
			Help:      "Remote state save latency in milliseconds, lock wait included.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),

		tableBuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_builds_total",
			Help:      "Total number of remote branch table computations.",
		}),

		tableSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_size",
			Help:      "Number of names in the last computed remote branch table.",
		}),

		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Store records left out of the table, labelled by reason.",
		}, []string{"reason"}),
	}
}

// Save records one save attempt.
func (r *Recorder) Save(remote, exchange string, err error, written int, durationMs float64) {
	if r == nil {
		return
	}

	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.saves.WithLabelValues(remote, exchange, status).Inc()
	r.saveDuration.Observe(durationMs)
	if err == nil {
		r.recordsWritten.WithLabelValues(remote).Add(float64(written))
	}
}

// TableBuilt records a table computation that produced size names.
func (r *Recorder) TableBuilt(size int) {
	if r == nil {
		return
	}
	r.tableBuilds.Inc()
	r.tableSize.Set(float64(size))
}

// Skipped records a store record left out of the table.
func (r *Recorder) Skipped(reason string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(reason).Inc()
}
