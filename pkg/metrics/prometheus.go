// Package metrics provides Prometheus metrics for the attendance sync service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the sync service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics - staging to normalized records
	eventsStaged      prometheus.Counter
	payloadsMissing   prometheus.Counter
	recordsNormalized prometheus.Counter
	duplicateIDs      prometheus.Counter
	parseFailures     *prometheus.CounterVec

	// Queue metrics
	queueCapacity prometheus.Gauge
	queueSize     prometheus.Gauge
	enqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// Merge metrics - the reconciler's view of the canonical table
	mergeBatchSize   prometheus.Gauge
	mergeDuration    prometheus.Histogram
	mergeRowsWritten prometheus.Counter
	mergeFailures    prometheus.Counter

	// Run metrics
	runsTotal *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "attendance",
		subsystem:        "sync",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsStaged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_staged_total",
		Help:      "Total number of staged raw events read for reconciliation",
	})

	m.payloadsMissing = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "payloads_missing_total",
		Help:      "Total number of staged rows filtered out for a null payload",
	})

	m.recordsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_normalized_total",
		Help:      "Total number of normalized attendance records produced",
	})

	m.duplicateIDs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_ids_total",
		Help:      "Total number of records that collapsed onto an id already in the batch",
	})

	m.parseFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "parse_failures_total",
			Help:      "Total number of record-level parse failures by field",
		},
		[]string{"field"},
	)

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the raw event queue",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the raw event queue",
	})

	m.enqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueues (closed or full queue)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of normalization workers in the pool",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Histogram of per-event normalization latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.mergeBatchSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_batch_size",
		Help:      "Size of the most recent merge batch",
	})

	m.mergeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_duration_milliseconds",
		Help:      "Histogram of canonical table merge duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.mergeRowsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_rows_written_total",
		Help:      "Total rows reported affected by canonical table merges",
	})

	m.mergeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_failures_total",
		Help:      "Total number of merge transactions rolled back",
	})

	m.runsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "runs_total",
			Help:      "Total sync runs by outcome",
		},
		[]string{"outcome"},
	)
}

// Package-level helpers on the global manager.

// RecordEventStaged increments the staged event counter.
func RecordEventStaged() {
	globalManager.eventsStaged.Inc()
}

// RecordPayloadMissing increments the null-payload filter counter.
func RecordPayloadMissing() {
	globalManager.payloadsMissing.Inc()
}

// RecordRecordNormalized increments the normalized record counter.
func RecordRecordNormalized() {
	globalManager.recordsNormalized.Inc()
}

// RecordDuplicateID increments the in-batch duplicate identity counter.
func RecordDuplicateID() {
	globalManager.duplicateIDs.Inc()
}

// RecordParseFailure increments the parse failure counter for a field.
func RecordParseFailure(field string) {
	globalManager.parseFailures.WithLabelValues(field).Inc()
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() {
	globalManager.enqueueErrors.Inc()
}

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-event normalization latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// UpdateMergeBatchSize sets the merge batch size gauge.
func UpdateMergeBatchSize(size int) {
	globalManager.mergeBatchSize.Set(float64(size))
}

// RecordMergeDuration records the duration of a merge transaction.
func RecordMergeDuration(latencyMs float64) {
	globalManager.mergeDuration.Observe(latencyMs)
}

// RecordMergeRowsWritten adds to the affected-row counter.
func RecordMergeRowsWritten(rows int64) {
	globalManager.mergeRowsWritten.Add(float64(rows))
}

// RecordMergeFailure increments the rolled-back merge counter.
func RecordMergeFailure() {
	globalManager.mergeFailures.Inc()
}

// RecordRun counts a completed sync run by outcome ("success" or "failure").
func RecordRun(outcome string) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
