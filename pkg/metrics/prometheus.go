package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UploadResult is the label value of a counted upload.
type UploadResult string

// Upload results used as label values.
const (
	UploadAccepted UploadResult = "accepted"
	UploadRejected UploadResult = "rejected"
	UploadFailed   UploadResult = "failed"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Data intake
	uploads      *prometheus.CounterVec
	rowsAccepted prometheus.Counter
	rowsRejected prometheus.Counter
	rowWarnings  prometheus.Counter

	// Figures
	renders       *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
	renderErrors  *prometheus.CounterVec

	// Sessions
	activeSessions  prometheus.Gauge
	sessionsEvicted prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "xgxt",
		subsystem:        "web",
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

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.uploads = auto.NewCounterVec(m.counter("uploads_total",
		"Uploaded CSV files by result (accepted, rejected, failed)"), []string{"result"})
	m.rowsAccepted = auto.NewCounter(m.counter("rows_accepted_total",
		"Rows turned into events by the input loader"))
	m.rowsRejected = auto.NewCounter(m.counter("rows_rejected_total",
		"Rows dropped by the input loader"))
	m.rowWarnings = auto.NewCounter(m.counter("row_warnings_total",
		"Row-level warnings raised by the input loader"))

	m.renders = auto.NewCounterVec(m.counter("renders_total",
		"Figures rendered by figure name"), []string{"figure"})
	m.renderLatency = auto.NewHistogramVec(m.histogram("render_latency_milliseconds",
		"Figure render latency in milliseconds"), []string{"figure"})
	m.renderErrors = auto.NewCounterVec(m.counter("render_errors_total",
		"Figures that failed to render"), []string{"figure"})

	m.activeSessions = auto.NewGauge(m.gauge("active_sessions",
		"Sessions holding an uploaded dataset"))
	m.sessionsEvicted = auto.NewCounter(m.counter("sessions_evicted_total",
		"Sessions dropped by expiry or capacity"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counter("http_errors_total",
		"HTTP responses with a 4xx or 5xx status by endpoint and kind"),
		[]string{"endpoint", "method", "kind"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes",
		"Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_milliseconds",
		"Most recent GC pause in milliseconds"))
}

// RecordUpload counts one upload. Results other than the Upload* constants
// are counted as failed.
func RecordUpload(result UploadResult) {
	switch result {
	case UploadAccepted, UploadRejected, UploadFailed:
	default:
		result = UploadFailed
	}
	globalManager.uploads.WithLabelValues(string(result)).Inc()
}

// RecordRows adds loader row counts.
func RecordRows(accepted, rejected, warnings int) {
	globalManager.rowsAccepted.Add(float64(max(accepted, 0)))
	globalManager.rowsRejected.Add(float64(max(rejected, 0)))
	globalManager.rowWarnings.Add(float64(max(warnings, 0)))
}

// RecordRender counts a rendered figure and its latency.
func RecordRender(figure string, latencyMs float64) {
	globalManager.renders.WithLabelValues(figure).Inc()
	globalManager.renderLatency.WithLabelValues(figure).Observe(latencyMs)
}

// RecordRenderError counts a failed render.
func RecordRenderError(figure string) {
	globalManager.renderErrors.WithLabelValues(figure).Inc()
}

// UpdateActiveSessions sets the session gauge.
func UpdateActiveSessions(n int) {
	globalManager.activeSessions.Set(float64(n))
}

// RecordSessionEvicted counts one dropped session.
func RecordSessionEvicted() {
	globalManager.sessionsEvicted.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an error response.
func RecordHTTPError(endpoint, method, kind string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, kind).Inc()
}

// UpdateSystemMemoryUsage updates memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served at /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
