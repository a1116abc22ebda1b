// Package metrics provides Prometheus metrics for the surfguard
// detection service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics
	framesProcessed      prometheus.Counter
	framesSkipped        prometheus.Counter
	facesDetected        prometheus.Counter
	duplicatesSuppressed prometheus.Counter
	alertsRaised         prometheus.Counter
	frameLatency         prometheus.Histogram
	detectionLatency     prometheus.Histogram
	latencyWarnings      prometheus.Counter

	// Operational health
	fps            prometheus.Gauge
	faceCount      prometheus.Gauge
	blurActive     prometheus.Gauge
	blurTransition *prometheus.CounterVec
	cameraErrors   prometheus.Counter
	backendErrors  *prometheus.CounterVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "surfguard",
		subsystem:        "detection",
		histogramBuckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 200, 400, 1000},
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

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of camera frames run through the pipeline",
	})

	m.framesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_skipped_total",
		Help:      "Total number of frames dropped by frame-skip decimation",
	})

	m.facesDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "faces_detected_total",
		Help:      "Total number of faces surviving overlap suppression",
	})

	m.duplicatesSuppressed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicates_suppressed_total",
		Help:      "Total number of overlapping detections removed by IoU suppression",
	})

	m.alertsRaised = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alerts_raised_total",
		Help:      "Total number of ticks on which the alert rule fired",
	})

	m.frameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frame_latency_milliseconds",
		Help:      "Histogram of end-to-end frame processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.detectionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detection_latency_milliseconds",
		Help:      "Histogram of face/gaze backend call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.latencyWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "latency_warnings_total",
		Help:      "Total number of ticks exceeding the configured latency ceiling",
	})

	m.fps = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fps",
		Help:      "Processing rate derived from the rolling frame-latency window",
	})

	m.faceCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "face_count",
		Help:      "Number of faces seen on the most recent processed frame",
	})

	m.blurActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "blur_active",
		Help:      "Whether the screen blur overlay is currently active (0/1)",
	})

	m.blurTransition = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "blur_transitions_total",
			Help:      "Total number of blur state transitions by direction",
		},
		[]string{"direction"},
	)

	m.cameraErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "camera_errors_total",
		Help:      "Total number of failed frame reads",
	})

	m.backendErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_errors_total",
			Help:      "Total number of detection backend errors by backend",
		},
		[]string{"backend"},
	)

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
		Name:      "system_memory_usage_bytes",
		Help:      "Process heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordFrameProcessed increments the processed-frame counter.
func RecordFrameProcessed() {
	globalManager.framesProcessed.Inc()
}

// RecordFrameSkipped increments the decimated-frame counter.
func RecordFrameSkipped() {
	globalManager.framesSkipped.Inc()
}

// RecordFacesDetected adds to the detected-face counter and refreshes the
// last-frame face-count gauge.
func RecordFacesDetected(n int) {
	globalManager.facesDetected.Add(float64(n))
	globalManager.faceCount.Set(float64(n))
}

// RecordDuplicatesSuppressed adds to the suppressed-duplicate counter.
func RecordDuplicatesSuppressed(n int) {
	globalManager.duplicatesSuppressed.Add(float64(n))
}

// RecordAlert increments the alert counter.
func RecordAlert() {
	globalManager.alertsRaised.Inc()
}

// RecordFrameLatency records end-to-end frame latency in milliseconds.
func RecordFrameLatency(latencyMS float64) {
	globalManager.frameLatency.Observe(latencyMS)
}

// RecordDetectionLatency records backend detection latency in milliseconds.
func RecordDetectionLatency(latencyMS float64) {
	globalManager.detectionLatency.Observe(latencyMS)
}

// RecordLatencyWarning increments the latency-ceiling counter.
func RecordLatencyWarning() {
	globalManager.latencyWarnings.Inc()
}

// UpdateFPS sets the derived frames-per-second gauge.
func UpdateFPS(fps float64) {
	globalManager.fps.Set(fps)
}

// UpdateBlurActive sets the blur overlay gauge.
func UpdateBlurActive(active bool) {
	v := 0.0
	if active {
		v = 1.0
	}
	globalManager.blurActive.Set(v)
}

// RecordBlurTransition counts one blur edge, direction "on" or "off".
func RecordBlurTransition(direction string) {
	globalManager.blurTransition.WithLabelValues(direction).Inc()
}

// RecordCameraError increments the failed-frame-read counter.
func RecordCameraError() {
	globalManager.cameraErrors.Inc()
}

// RecordBackendError counts one backend failure by backend name.
func RecordBackendError(backend string) {
	globalManager.backendErrors.WithLabelValues(backend).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
