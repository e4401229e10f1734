package observability

import (
	"net/http"
	"time"

	"github.com/aretw0/complog/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one process.
// Each instance owns its registry so tests and embedded servers do not share state.
type Metrics struct {
	registry *prometheus.Registry

	eventsTotal        *prometheus.CounterVec
	polledItemsTotal   prometheus.Counter
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
	mcpToolCallsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complog_events_total",
				Help: "Total number of session events by type",
			},
			[]string{"type"},
		),
		polledItemsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "complog_polled_items_total",
				Help: "Total number of queue items handed to pollers",
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "complog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		mcpToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complog_mcp_tool_calls_total",
				Help: "Total number of MCP tool calls",
			},
			[]string{"tool", "status"},
		),
	}
	m.registry.MustRegister(
		m.eventsTotal,
		m.polledItemsTotal,
		m.httpRequestsTotal,
		m.httpRequestSeconds,
		m.mcpToolCallsTotal,
	)
	return m
}

// Observe is a domain.EventHandler.
func (m *Metrics) Observe(ev domain.Event) {
	m.eventsTotal.WithLabelValues(string(ev.Type)).Inc()
}

// TrackSessions exports the live session count read from count at scrape time.
// It must be called at most once.
func (m *Metrics) TrackSessions(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "complog_active_sessions",
			Help: "Number of live sessions in the registry",
		},
		func() float64 { return float64(count()) },
	))
}

// RecordPoll counts items delivered by one poll.
func (m *Metrics) RecordPoll(n int) {
	m.polledItemsTotal.Add(float64(n))
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMCPToolCall records MCP tool call metrics.
func (m *Metrics) RecordMCPToolCall(tool string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.mcpToolCallsTotal.WithLabelValues(tool, status).Inc()
}

// Handler returns an HTTP handler exposing the metrics in the text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
