// Package metrics provides Prometheus metrics for the batsim calibration service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the batsim service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Simulation Metrics
	seasonsSimulated  prometheus.Counter
	paSimulated       prometheus.Counter
	outcomesSimulated *prometheus.CounterVec
	atBats            *prometheus.CounterVec

	// Calibration Metrics
	trialsEvaluated        *prometheus.CounterVec
	stageDuration          *prometheus.HistogramVec
	calibrationsTotal      prometheus.Counter
	calibrationsFailed     prometheus.Counter
	calibrationsDuplicate  prometheus.Counter
	calibrationBestError   prometheus.Gauge
	calibrationDurationSec prometheus.Histogram

	// Candidate Pool Metrics
	poolSize      prometheus.Gauge
	poolCapacity  prometheus.Gauge
	poolEvictions prometheus.Counter
	poolRejected  prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue Metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
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
		namespace:        "batsim",
		subsystem:        "calibration",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	durationBuckets := []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000}

	m.seasonsSimulated = m.counter("seasons_simulated_total", "Total number of simulated seasons")
	m.paSimulated = m.counter("plate_appearances_simulated_total", "Total number of simulated plate appearances")
	m.outcomesSimulated = m.counterVec("outcomes_simulated_total", "Simulated plate-appearance outcomes by kind", "outcome")
	m.atBats = m.counterVec("at_bats_total", "Single at-bats drawn through the API by outcome", "outcome")

	m.trialsEvaluated = m.counterVec("trials_evaluated_total", "Candidate evaluations by search stage", "stage")
	m.stageDuration = m.histogramVec("stage_duration_milliseconds", "Search stage duration in milliseconds", durationBuckets, "stage")
	m.calibrationsTotal = m.counter("calibrations_total", "Total number of completed calibrations")
	m.calibrationsFailed = m.counter("calibrations_failed_total", "Total number of failed or cancelled calibrations")
	m.calibrationsDuplicate = m.counter("calibrations_duplicate_total", "Calibrations rejected because one for the same player was running")
	m.calibrationBestError = m.gauge("best_error", "Stage-2 error of the most recent calibration")
	m.calibrationDurationSec = m.histogram("duration_seconds", "End-to-end calibration duration in seconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300})

	m.poolSize = m.gauge("candidate_pool_size", "Candidates currently retained by the pool")
	m.poolCapacity = m.gauge("candidate_pool_capacity", "Candidate pool capacity")
	m.poolEvictions = m.counter("candidate_pool_evictions_total", "Candidates evicted by a better offer")
	m.poolRejected = m.counter("candidate_pool_rejected_total", "Offers rejected by a full pool")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_seconds", "HTTP request duration in seconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Current number of queued trials")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of trials enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of trials dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Time a trial waited in the queue in milliseconds",
		m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers evaluating a trial")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Trial evaluation latency in milliseconds",
		m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of worker errors")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint",
		"endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors",
		m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Simulation Metrics Functions.

// RecordSeasons adds seasons simulated seasons of pa plate appearances each.
func RecordSeasons(seasons, pa int) {
	globalManager.seasonsSimulated.Add(float64(seasons))
	globalManager.paSimulated.Add(float64(seasons * pa))
}

// RecordOutcomes adds count simulated outcomes of the given kind.
func RecordOutcomes(outcome string, count float64) {
	if count > 0 {
		globalManager.outcomesSimulated.WithLabelValues(outcome).Add(count)
	}
}

// RecordAtBat increments the single at-bat counter for outcome.
func RecordAtBat(outcome string) {
	globalManager.atBats.WithLabelValues(outcome).Inc()
}

// Calibration Metrics Functions.

// RecordTrialEvaluated increments the evaluation counter for stage.
func RecordTrialEvaluated(stage string) {
	globalManager.trialsEvaluated.WithLabelValues(stage).Inc()
}

// RecordStageDuration records how long a search stage took.
func RecordStageDuration(stage string, d time.Duration) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(float64(d.Milliseconds()))
}

// RecordCalibration records a completed calibration.
func RecordCalibration(bestError float64, d time.Duration) {
	globalManager.calibrationsTotal.Inc()
	globalManager.calibrationBestError.Set(bestError)
	globalManager.calibrationDurationSec.Observe(d.Seconds())
}

// RecordCalibrationFailed increments the failed calibration counter.
func RecordCalibrationFailed() {
	globalManager.calibrationsFailed.Inc()
}

// RecordCalibrationDuplicate increments the duplicate calibration counter.
func RecordCalibrationDuplicate() {
	globalManager.calibrationsDuplicate.Inc()
}

// Candidate Pool Metrics Functions.

// UpdatePoolSize sets the current pool size.
func UpdatePoolSize(size int) {
	globalManager.poolSize.Set(float64(size))
}

// UpdatePoolCapacity sets the pool capacity.
func UpdatePoolCapacity(capacity int) {
	globalManager.poolCapacity.Set(float64(capacity))
}

// RecordPoolEviction increments the eviction counter.
func RecordPoolEviction() {
	globalManager.poolEvictions.Inc()
}

// RecordPoolRejected increments the rejected offer counter.
func RecordPoolRejected() {
	globalManager.poolRejected.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, d time.Duration) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(d.Seconds())
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
