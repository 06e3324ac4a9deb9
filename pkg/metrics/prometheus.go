// Package metrics provides Prometheus metrics for the house price predictor.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeSchema       = "schema_mismatch"
	OutcomeFault        = "fault"
	OutcomeUnavailable  = "unavailable"
)

// Artifact load outcomes.
const (
	LoadOK      = "ok"
	LoadMissing = "missing"
	LoadCorrupt = "corrupt"
	LoadError   = "error"
)

var (
	predictionOutcomes = []string{OutcomeOK, OutcomeInvalidInput, OutcomeSchema, OutcomeFault, OutcomeUnavailable}
	loadOutcomes       = []string{LoadOK, LoadMissing, LoadCorrupt, LoadError}
)

// Manager manages all Prometheus metrics for the predictor.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	valueBuckets     []float64
	registry         prometheus.Registerer

	// Prediction pipeline
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	predictedValue    prometheus.Histogram
	invalidInputs     *prometheus.CounterVec

	// Artifact store
	artifactLoads        *prometheus.CounterVec
	artifactLoadDuration prometheus.Histogram
	artifactFeatures     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "homeval",
		subsystem:        "predictor",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		valueBuckets:     []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "predictions_total",
			Help:      "Total number of prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_latency_milliseconds",
		Help:      "Estimator call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.predictedValue = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predicted_value",
		Help:      "Raw estimator output in model units (100k dollars)",
		Buckets:   m.valueBuckets,
	})

	m.invalidInputs = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "invalid_inputs_total",
			Help:      "Rejected form submissions by input mode",
		},
		[]string{"mode"},
	)

	m.artifactLoads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "artifact_loads_total",
			Help:      "Artifact bundle loads from disk by outcome",
		},
		[]string{"outcome"},
	)

	m.artifactLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "artifact_load_duration_milliseconds",
		Help:      "Artifact bundle load duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.artifactFeatures = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "artifact_feature_count",
		Help:      "Number of features in the loaded schema",
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

	m.httpErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_errors_total",
			Help:      "HTTP responses with status >= 400 by endpoint and kind",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	// Pre-create the known label sets so dashboards see zeros.
	for _, o := range predictionOutcomes {
		m.predictions.WithLabelValues(o)
	}
	for _, o := range loadOutcomes {
		m.artifactLoads.WithLabelValues(o)
	}
}

// ValidateOutcome reports whether outcome is a known prediction outcome.
func ValidateOutcome(outcome string) error {
	for _, o := range predictionOutcomes {
		if o == outcome {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
}

// RecordPrediction counts a prediction request by outcome.
func RecordPrediction(outcome string) {
	globalManager.predictions.WithLabelValues(outcome).Inc()
}

// RecordPredictionLatency records estimator latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordPredictedValue records a raw estimator output.
func RecordPredictedValue(v float64) {
	globalManager.predictedValue.Observe(v)
}

// RecordInvalidInput counts a rejected submission.
func RecordInvalidInput(mode string) {
	globalManager.invalidInputs.WithLabelValues(mode).Inc()
}

// RecordArtifactLoad records one disk load of the artifact bundle.
func RecordArtifactLoad(outcome string, durationMs float64) {
	globalManager.artifactLoads.WithLabelValues(outcome).Inc()
	globalManager.artifactLoadDuration.Observe(durationMs)
}

// UpdateArtifactFeatures sets the loaded schema width.
func UpdateArtifactFeatures(n int) {
	globalManager.artifactFeatures.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

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
