// Package metrics provides Prometheus metrics for the scoreboard converters.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager holds the converter metrics on one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         *prometheus.Registry

	runs          *prometheus.CounterVec
	extracted     *prometheus.CounterVec
	skipped       prometheus.Counter
	warnings      *prometheus.CounterVec
	sinkRows      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	batchWorkers  prometheus.Gauge
}

// Global metrics manager instance.
var globalManager atomic.Pointer[Manager] //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager.Store(NewManager())
}

// NewManager creates a metrics manager on its own registry unless
// WithPrometheusRegistry is given. Go runtime collectors are not registered.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nbtscore",
		subsystem:        "convert",
		histogramBuckets: prometheus.ExponentialBuckets(1, 4, 10),
		enabled:          true,
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Conversion runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.extracted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_extracted_total",
		Help:        "Records extracted from scoreboard files by kind (objective, entry)",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.skipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_skipped_total",
		Help:        "Records dropped for missing or mistyped fields",
		ConstLabels: m.constLabels,
	})

	m.warnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "warnings_total",
		Help:        "Non-fatal problems by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.sinkRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sink_rows_total",
		Help:        "Rows written by sink and table",
		ConstLabels: m.constLabels,
	}, []string{"sink", "table"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Pipeline stage duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.batchWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_workers",
		Help:        "Workers currently converting files in batch mode",
		ConstLabels: m.constLabels,
	})
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordRun counts a finished run.
func (m *Manager) RecordRun(outcome string) {
	if m.enabled {
		m.runs.WithLabelValues(outcome).Inc()
	}
}

// RecordExtracted adds n extracted records of kind.
func (m *Manager) RecordExtracted(kind string, n int) {
	if m.enabled && n > 0 {
		m.extracted.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordSkipped adds n dropped records.
func (m *Manager) RecordSkipped(n int) {
	if m.enabled && n > 0 {
		m.skipped.Add(float64(n))
	}
}

// RecordWarning counts one warning of kind.
func (m *Manager) RecordWarning(kind string) {
	if m.enabled {
		m.warnings.WithLabelValues(kind).Inc()
	}
}

// RecordSinkRows adds n rows written to table by sink.
func (m *Manager) RecordSinkRows(sink, table string, n int64) {
	if m.enabled && n > 0 {
		m.sinkRows.WithLabelValues(sink, table).Add(float64(n))
	}
}

// ObserveStage records how long stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(float64(d.Microseconds()) / 1000)
	}
}

// AddBatchWorkers moves the busy worker gauge by delta.
func (m *Manager) AddBatchWorkers(delta int) {
	if m.enabled {
		m.batchWorkers.Add(float64(delta))
	}
}

// WriteTextfile writes every metric in the node-exporter textfile format.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// Global convenience functions.

// Default returns the process-wide manager.
func Default() *Manager { return globalManager.Load() }

// SetDefault replaces the process-wide manager. Tests use it to observe
// metrics on a private registry.
func SetDefault(m *Manager) {
	if m != nil {
		globalManager.Store(m)
	}
}

func RecordRun(outcome string)                   { Default().RecordRun(outcome) }
func RecordExtracted(kind string, n int)         { Default().RecordExtracted(kind, n) }
func RecordSkipped(n int)                        { Default().RecordSkipped(n) }
func RecordWarning(kind string)                  { Default().RecordWarning(kind) }
func RecordSinkRows(sink, table string, n int64) { Default().RecordSinkRows(sink, table, n) }
func ObserveStage(stage string, d time.Duration) { Default().ObserveStage(stage, d) }
func AddBatchWorkers(delta int)                  { Default().AddBatchWorkers(delta) }
func WriteTextfile(path string) error            { return Default().WriteTextfile(path) }

// GetRegistry returns the registry of the process-wide manager.
func GetRegistry() *prometheus.Registry { return Default().Registry() }
