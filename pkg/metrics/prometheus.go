// Package metrics provides Prometheus metrics for the recall study service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the recall service and agent.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core Business Metrics
	answersRecorded  prometheus.Counter
	answersDuplicate prometheus.Counter
	answersRejected  prometheus.Counter
	statsQueries     prometheus.Counter

	// Outcome Log Metrics
	logAppendLatency prometheus.Histogram
	logScanLatency   prometheus.Histogram
	logErrors        prometheus.Counter

	// Offline Queue Metrics
	queueDepth         prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueAcknowledged  prometheus.Counter
	queueDropped       prometheus.Counter
	queuePersistErrors prometheus.Counter

	// Reconciler Metrics
	reconcileRuns     prometheus.Counter
	reconcileFailures prometheus.Counter
	reconcileLatency  prometheus.Histogram

	// Cache Metrics
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheEntries       *prometheus.GaugeVec
	syntheticFallbacks prometheus.Counter

	// Connectivity Metrics
	connectivityOnline prometheus.Gauge
	connectivityFlips  prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "recall",
		subsystem:        "study",
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

	m.answersRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "answers_recorded_total",
		Help:      "Total number of answers appended to the outcome log",
	})

	m.answersDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "answers_duplicate_total",
		Help:      "Total number of replayed submissions skipped by the dedup check",
	})

	m.answersRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "answers_rejected_total",
		Help:      "Total number of answer submissions rejected as malformed",
	})

	m.statsQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stats_queries_total",
		Help:      "Total number of aggregate statistic computations",
	})

	m.logAppendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_append_latency_milliseconds",
		Help:      "Outcome log append latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.logScanLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_scan_latency_milliseconds",
		Help:      "Outcome log scan latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.logErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_errors_total",
		Help:      "Total number of outcome log storage errors",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_queue_depth",
		Help:      "Current number of submissions pending reconciliation",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_queue_enqueues_total",
		Help:      "Total number of submissions queued while offline",
	})

	m.queueAcknowledged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_queue_acknowledged_total",
		Help:      "Total number of queued submissions confirmed by the server",
	})

	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_queue_dropped_total",
		Help:      "Total number of queued submissions dropped after a permanent rejection",
	})

	m.queuePersistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_queue_persist_errors_total",
		Help:      "Total number of failures persisting the offline queue",
	})

	m.reconcileRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_runs_total",
		Help:      "Total number of reconciliation runs started",
	})

	m.reconcileFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_failures_total",
		Help:      "Total number of reconciliation runs stopped by a transient failure",
	})

	m.reconcileLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_latency_milliseconds",
		Help:      "Reconciliation run latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits by partition",
		},
		[]string{"partition"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses by partition",
		},
		[]string{"partition"},
	)

	m.cacheEntries = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_entries",
			Help:      "Current number of cache entries by partition",
		},
		[]string{"partition"},
	)

	m.syntheticFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "synthetic_fallbacks_total",
		Help:      "Total number of synthetic offline fallback responses served",
	})

	m.connectivityOnline = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connectivity_online",
		Help:      "1 when the origin is reachable, 0 when offline",
	})

	m.connectivityFlips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connectivity_transitions_total",
		Help:      "Total number of online/offline transitions observed",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers delegating to the global manager.

func RecordAnswerRecorded()  { globalManager.answersRecorded.Inc() }
func RecordAnswerDuplicate() { globalManager.answersDuplicate.Inc() }
func RecordAnswerRejected()  { globalManager.answersRejected.Inc() }
func RecordStatsQuery()      { globalManager.statsQueries.Inc() }

func RecordLogAppendLatency(latencyMs float64) { globalManager.logAppendLatency.Observe(latencyMs) }
func RecordLogScanLatency(latencyMs float64)   { globalManager.logScanLatency.Observe(latencyMs) }
func RecordLogError()                          { globalManager.logErrors.Inc() }

func UpdateQueueDepth(depth int) { globalManager.queueDepth.Set(float64(depth)) }
func RecordQueueEnqueue()        { globalManager.queueEnqueues.Inc() }
func RecordQueueAcknowledged()   { globalManager.queueAcknowledged.Inc() }
func RecordQueueDropped()        { globalManager.queueDropped.Inc() }
func RecordQueuePersistError()   { globalManager.queuePersistErrors.Inc() }

func RecordReconcileRun()                      { globalManager.reconcileRuns.Inc() }
func RecordReconcileFailure()                  { globalManager.reconcileFailures.Inc() }
func RecordReconcileLatency(latencyMs float64) { globalManager.reconcileLatency.Observe(latencyMs) }

func RecordCacheHit(partition string)  { globalManager.cacheHits.WithLabelValues(partition).Inc() }
func RecordCacheMiss(partition string) { globalManager.cacheMisses.WithLabelValues(partition).Inc() }
func UpdateCacheEntries(partition string, n int) {
	globalManager.cacheEntries.WithLabelValues(partition).Set(float64(n))
}
func RecordSyntheticFallback() { globalManager.syntheticFallbacks.Inc() }

func UpdateSystemMemoryUsage(bytes uint64)    { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int)    { globalManager.systemGoroutineCount.Set(float64(count)) }
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

func UpdateConnectivity(online bool) {
	if online {
		globalManager.connectivityOnline.Set(1)
	} else {
		globalManager.connectivityOnline.Set(0)
	}
}
func RecordConnectivityFlip() { globalManager.connectivityFlips.Inc() }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
