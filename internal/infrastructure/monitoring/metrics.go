package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Compilation metrics
	Compilations    *prometheus.CounterVec
	CompileDuration *prometheus.HistogramVec
	Renders         *prometheus.CounterVec
	RenderDuration  prometheus.Histogram

	// Sandbox metrics
	SandboxInUse    prometheus.Gauge
	SandboxRejected *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for the JSON health API
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests      int64   `json:"total_requests"`
	TotalErrors        int64   `json:"total_errors"`
	Compilations       int64   `json:"compilations"`
	FailedCompilations int64   `json:"failed_compilations"`
	ActiveStreams      int64   `json:"active_streams"`
	AvgCompileSeconds  float64 `json:"avg_compile_seconds"`
	UptimeSeconds      float64 `json:"uptime_seconds"`

	compileSeconds float64
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "animforge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "animforge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "animforge_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "animforge_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		Compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "animforge_compilations_total",
				Help: "Total number of compilations by outcome, error kind and stage",
			},
			[]string{"outcome", "kind", "stage"},
		),
		CompileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "animforge_compile_duration_seconds",
				Help:    "Compilation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"outcome"},
		),
		Renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "animforge_renders_total",
				Help: "Total number of frame renders",
			},
			[]string{"status"},
		),
		RenderDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "animforge_render_duration_seconds",
				Help:    "Frame render duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),

		SandboxInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "animforge_sandbox_in_use",
				Help: "Number of sandbox slots currently held",
			},
		),
		SandboxRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "animforge_sandbox_rejected_total",
				Help: "Requests that could not acquire a sandbox slot",
			},
			[]string{"reason"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "animforge_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "animforge_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "animforge_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordCompile records one compilation. kind and stage are empty on success.
func (m *Metrics) RecordCompile(success bool, kind, stage string, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.Compilations.WithLabelValues(outcome, kind, stage).Inc()
	m.CompileDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Compilations++
	m.snapshot.compileSeconds += duration.Seconds()
	if !success {
		m.snapshot.FailedCompilations++
	}
	m.mu.Unlock()
}

// RecordRender records one frame render
func (m *Metrics) RecordRender(status string, duration time.Duration) {
	m.Renders.WithLabelValues(status).Inc()
	m.RenderDuration.Observe(duration.Seconds())
}

// RecordRejected counts a request turned away by the sandbox pool
func (m *Metrics) RecordRejected(reason string) {
	m.SandboxRejected.WithLabelValues(reason).Inc()
}

// SetSandboxInUse sets the number of held sandbox slots
func (m *Metrics) SetSandboxInUse(n int) {
	m.SandboxInUse.Set(float64(n))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveStreams++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveStreams--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.Compilations > 0 {
		s.AvgCompileSeconds = s.compileSeconds / float64(s.Compilations)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
