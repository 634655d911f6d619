package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FeatMerge/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
// It owns its registry so a batch run can be flushed to a textfile collector.
type Recorder struct {
	registry          *prometheus.Registry
	sourceUnavailable *prometheus.CounterVec
	rowsDropped       *prometheus.CounterVec
	rowsKept          *prometheus.CounterVec
	outcomes          *prometheus.CounterVec
	mergedRows        *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		sourceUnavailable: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featmerge_source_unavailable_total",
				Help: "Sources that could not be loaded, per symbol and timeframe",
			},
			[]string{"symbol", "timeframe"},
		),
		rowsDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featmerge_rows_dropped_total",
				Help: "Rows removed while building feature tables",
			},
			[]string{"timeframe", "reason"},
		),
		rowsKept: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featmerge_rows_kept_total",
				Help: "Complete feature rows produced",
			},
			[]string{"timeframe"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featmerge_symbol_outcomes_total",
				Help: "Symbol results by outcome",
			},
			[]string{"outcome"},
		),
		mergedRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "featmerge_merged_rows",
				Help: "Rows in the last merged table of a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featmerge_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSourceUnavailable counts a (symbol, timeframe) that could not be loaded.
func (r *Recorder) RecordSourceUnavailable(symbol string, tf models.Timeframe) {
	r.sourceUnavailable.WithLabelValues(symbol, string(tf)).Inc()
}

// RecordRowsDropped counts rows removed for a reason such as "malformed" or "warmup".
func (r *Recorder) RecordRowsDropped(tf models.Timeframe, reason string, n int) {
	if n <= 0 {
		return
	}
	r.rowsDropped.WithLabelValues(string(tf), reason).Add(float64(n))
}

// RecordRowsKept counts complete feature rows.
func (r *Recorder) RecordRowsKept(tf models.Timeframe, n int) {
	r.rowsKept.WithLabelValues(string(tf)).Add(float64(n))
}

// RecordOutcome records the terminal state of a symbol.
func (r *Recorder) RecordOutcome(symbol string, outcome models.Outcome, rows int) {
	r.outcomes.WithLabelValues(string(outcome)).Inc()
	r.mergedRows.WithLabelValues(symbol).Set(float64(rows))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// WriteTextfile flushes all metrics in the text exposition format, for node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
