// Package metrics provides Prometheus metrics for the seatfinder service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes used as label values.
const (
	OutcomeValidated = "validated"
	OutcomeFallback  = "fallback"
	OutcomeError     = "error"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline Metrics
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	eventsProjected   prometheus.Counter
	eventsDropped     *prometheus.CounterVec
	densityFitLatency prometheus.Histogram
	candidatesScanned prometheus.Histogram
	candidatesSkipped prometheus.Counter

	// Collaborator Metrics
	playerFetches     *prometheus.CounterVec
	playerFetchErrors prometheus.Counter
	imageCache        *prometheus.CounterVec
	artifactsStored   *prometheus.CounterVec
	publishErrors     prometheus.Counter

	// Worker Metrics
	fetchQueueDepth         prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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
		namespace:        "seatfinder",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("predictions_total"),
		Help:        "Total number of best-seat predictions by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("prediction_latency_milliseconds"),
		Help:        "End-to-end prediction latency in milliseconds",
		Buckets:     prometheus.ExponentialBuckets(10, 2, 14),
		ConstLabels: labels,
	})

	m.eventsProjected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("events_projected_total"),
		Help:        "Batted-ball events projected to field coordinates",
		ConstLabels: labels,
	})

	m.eventsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("events_dropped_total"),
		Help:        "Batted-ball events dropped before density estimation",
		ConstLabels: labels,
	}, []string{"reason"})

	m.densityFitLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("density_fit_latency_milliseconds"),
		Help:        "Kernel density fit and evaluation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.candidatesScanned = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("candidates_scanned"),
		Help:        "Number of ranked candidates examined per selection",
		Buckets:     []float64{1, 2, 5, 10, 20, 50, 100},
		ConstLabels: labels,
	})

	m.candidatesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("candidates_excluded_total"),
		Help:        "Candidates skipped because they fall in the batter's-eye zone",
		ConstLabels: labels,
	})

	m.playerFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("player_fetches_total"),
		Help:        "Per-player home-run fetches by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.playerFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("player_fetch_errors_total"),
		Help:        "Per-player fetch failures that were skipped",
		ConstLabels: labels,
	})

	m.imageCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("image_cache_total"),
		Help:        "Stadium image cache lookups by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.artifactsStored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("artifacts_stored_total"),
		Help:        "Rendered artifacts written to the output sink",
		ConstLabels: labels,
	}, []string{"backend"})

	m.publishErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("publish_errors_total"),
		Help:        "Prediction notifications that failed to publish",
		ConstLabels: labels,
	})

	m.fetchQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_queue_depth"),
		Help:        "Pending per-player fetch jobs",
		ConstLabels: labels,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_active_count"),
		Help:        "Number of fetch workers currently processing",
		ConstLabels: labels,
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_processing_latency_milliseconds"),
		Help:        "Per-job fetch worker latency in milliseconds",
		Buckets:     prometheus.ExponentialBuckets(5, 2, 12),
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_component_total"),
		Help:        "Errors by component and error type",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by endpoint, method and error type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_usage_bytes"),
		Help:        "Allocated heap memory in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})
}

// Pipeline Metrics Functions.

// RecordPrediction increments the prediction counter for an outcome.
func RecordPrediction(outcome string) {
	globalManager.predictions.WithLabelValues(outcome).Inc()
}

// RecordPredictionLatency records end-to-end prediction latency.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordEventsProjected adds n projected events.
func RecordEventsProjected(n int) {
	globalManager.eventsProjected.Add(float64(n))
}

// RecordEventsDropped adds n dropped events for a reason.
func RecordEventsDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.eventsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordDensityFitLatency records density fit latency.
func RecordDensityFitLatency(latencyMs float64) {
	globalManager.densityFitLatency.Observe(latencyMs)
}

// RecordCandidatesScanned records how many ranked candidates a selection examined.
func RecordCandidatesScanned(n int) {
	globalManager.candidatesScanned.Observe(float64(n))
}

// RecordCandidatesExcluded adds n excluded candidates.
func RecordCandidatesExcluded(n int) {
	globalManager.candidatesSkipped.Add(float64(n))
}

// Collaborator Metrics Functions.

// RecordPlayerFetch records a per-player fetch result ("ok", "empty", "error").
func RecordPlayerFetch(result string) {
	globalManager.playerFetches.WithLabelValues(result).Inc()
}

// RecordPlayerFetchError increments the skipped player counter.
func RecordPlayerFetchError() {
	globalManager.playerFetchErrors.Inc()
}

// RecordImageCache records an image cache lookup ("hit" or "miss").
func RecordImageCache(result string) {
	globalManager.imageCache.WithLabelValues(result).Inc()
}

// RecordArtifactStored increments the stored artifact counter for a backend.
func RecordArtifactStored(backend string) {
	globalManager.artifactsStored.WithLabelValues(backend).Inc()
}

// RecordPublishError increments the notification failure counter.
func RecordPublishError() {
	globalManager.publishErrors.Inc()
}

// Worker Metrics Functions.

// UpdateFetchQueueDepth sets the number of pending fetch jobs.
func UpdateFetchQueueDepth(n int) {
	globalManager.fetchQueueDepth.Set(float64(n))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
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
