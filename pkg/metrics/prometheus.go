// Package metrics provides Prometheus metrics for the credit assessment service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	scoreBuckets   []float64
	enabled        bool
	customLabels   map[string]string
	registry       prometheus.Registerer

	// Scoring
	assessments *prometheus.CounterVec
	creditScore prometheus.Histogram

	// Simulation and history
	simulations         *prometheus.CounterVec
	simulationChange    prometheus.Histogram
	historyAppends      prometheus.Counter
	historyAppendErrors *prometheus.CounterVec

	// Ledger
	transactionsIngested  prometheus.Counter
	transactionsDuplicate prometheus.Counter

	// Service state
	dedupeEntries  prometheus.Gauge
	historyRecords prometheus.Gauge

	// Stores
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
	storeRetries *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "creditsim",
		latencyBuckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		scoreBuckets:   prometheus.LinearBuckets(300, 50, 12),
		enabled:        true,
		customLabels:   make(map[string]string),
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all metric definitions
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.assessments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "assessments_total",
		Help: "Credit assessments by outcome",
	}, []string{"outcome"})

	m.creditScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "credit_score",
		Help:    "Distribution of computed credit scores",
		Buckets: m.scoreBuckets,
	})

	m.simulations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "simulations_total",
		Help: "Scenario simulations by scenario type and outcome",
	}, []string{"scenario", "outcome"})

	m.simulationChange = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "simulation_score_change",
		Help:    "Score change produced by successful simulations",
		Buckets: []float64{-100, -50, -20, -10, -5, -1, 0, 1, 5, 10, 20, 50, 100},
	})

	m.historyAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "history_appends_total",
		Help: "Simulation records appended to history",
	})

	m.historyAppendErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "history_append_errors_total",
		Help: "Failed history appends by error kind",
	}, []string{"kind"})

	m.transactionsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "transactions_ingested_total",
		Help: "Transactions appended to the ledger",
	})

	m.transactionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "transactions_duplicate_total",
		Help: "Transactions ignored because their id was already ingested",
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "store_operation_duration_milliseconds",
		Help:    "Store call latency in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"store", "operation"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "store_errors_total",
		Help: "Store failures by store and error kind",
	}, []string{"store", "kind"})

	m.storeRetries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "store_retries_total",
		Help: "Retried store reads by operation",
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "errors_by_component_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "errors_by_endpoint_total",
		Help: "API errors by endpoint, method and error code",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "system_memory_usage_bytes",
		Help: "Heap bytes in use",
	})

	m.dedupeEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "dedupe_entries",
		Help: "Transaction ids held in the idempotency cache",
	})

	m.historyRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "history_records",
		Help: "Simulation records held by an in-process history store",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "system_gc_pause_milliseconds",
		Help:    "Most recent GC pause in milliseconds",
		Buckets: m.latencyBuckets,
	})
}

// RecordAssessment counts an assessment; score is observed only on success.
func (m *Manager) RecordAssessment(outcome string, score float64) {
	if !m.enabled {
		return
	}
	m.assessments.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.creditScore.Observe(score)
	}
}

// RecordSimulation counts a simulation; change is observed only on success.
func (m *Manager) RecordSimulation(scenario, outcome string, change float64) {
	if !m.enabled {
		return
	}
	m.simulations.WithLabelValues(scenario, outcome).Inc()
	if outcome == OutcomeSuccess {
		m.simulationChange.Observe(change)
	}
}

// RecordHistoryAppend counts an append; an empty kind means success.
func (m *Manager) RecordHistoryAppend(kind string) {
	if !m.enabled {
		return
	}
	if kind == "" {
		m.historyAppends.Inc()
		return
	}
	m.historyAppendErrors.WithLabelValues(kind).Inc()
}

// RecordStoreOperation observes the latency of one store call.
func (m *Manager) RecordStoreOperation(store, operation string, latencyMs float64) {
	if m.enabled {
		m.storeLatency.WithLabelValues(store, operation).Observe(latencyMs)
	}
}

// UpdateDedupeEntries sets the idempotency cache size.
func (m *Manager) UpdateDedupeEntries(n int64) {
	if m.enabled {
		m.dedupeEntries.Set(float64(n))
	}
}

// UpdateHistoryRecords sets the number of stored simulation records.
func (m *Manager) UpdateHistoryRecords(n int) {
	if m.enabled {
		m.historyRecords.Set(float64(n))
	}
}

// Outcome label values shared by callers.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// UpdateDedupeEntries sets the idempotency cache size on the global manager.
func UpdateDedupeEntries(n int64) { globalManager.UpdateDedupeEntries(n) }

// UpdateHistoryRecords sets the stored record count on the global manager.
func UpdateHistoryRecords(n int) { globalManager.UpdateHistoryRecords(n) }

// RecordAssessment records an assessment on the global manager.
func RecordAssessment(outcome string, score float64) { globalManager.RecordAssessment(outcome, score) }

// RecordSimulation records a simulation on the global manager.
func RecordSimulation(scenario, outcome string, change float64) {
	globalManager.RecordSimulation(scenario, outcome, change)
}

// RecordHistoryAppend records a history append on the global manager.
func RecordHistoryAppend(kind string) { globalManager.RecordHistoryAppend(kind) }

// RecordTransactionIngested counts a newly stored transaction.
func RecordTransactionIngested() {
	if globalManager.enabled {
		globalManager.transactionsIngested.Inc()
	}
}

// RecordTransactionDuplicate counts a replayed transaction id.
func RecordTransactionDuplicate() {
	if globalManager.enabled {
		globalManager.transactionsDuplicate.Inc()
	}
}

// RecordStoreOperation observes the latency of one store call.
func RecordStoreOperation(store, operation string, latencyMs float64) {
	globalManager.RecordStoreOperation(store, operation, latencyMs)
}

// RecordStoreError counts a failed store call.
func RecordStoreError(store, kind string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(store, kind).Inc()
	}
}

// RecordStoreRetry counts a retried store read.
func RecordStoreRetry(operation string) {
	if globalManager.enabled {
		globalManager.storeRetries.WithLabelValues(operation).Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent records errors by component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint records errors by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom registry for metrics exposure.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
