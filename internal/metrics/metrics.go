package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beehive_mcp_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration tracks request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beehive_mcp_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ToolCalls tracks tool invocations by outcome
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beehive_mcp_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	// ToolDuration tracks how long a tool call takes end to end
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beehive_mcp_tool_duration_seconds",
			Help:    "Tool call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// UpstreamRequests counts calls made to the Beehive API
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beehive_mcp_upstream_requests_total",
			Help: "Total number of requests sent to the Beehive API",
		},
		[]string{"resource", "method", "status"},
	)

	// UpstreamDuration tracks Beehive API latency
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beehive_mcp_upstream_duration_seconds",
			Help:    "Beehive API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "method"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher for SSE support
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware creates an HTTP middleware that records metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// normalizePath normalizes URL paths to avoid high cardinality
func normalizePath(path string) string {
	switch path {
	case "/health", "/ready", "/mcp", "/mcp/", "/metrics", "/tools", "/metadata":
		return path
	default:
		if strings.HasPrefix(path, "/mcp/") {
			return "/mcp"
		}
		if strings.HasPrefix(path, "/tools/") {
			return "/tools/{name}"
		}
		return "other"
	}
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordToolCall records a tool invocation and its duration
func RecordToolCall(tool, status string, durationSeconds float64) {
	ToolCalls.WithLabelValues(tool, status).Inc()
	ToolDuration.WithLabelValues(tool).Observe(durationSeconds)
}

// RecordUpstreamRequest records one Beehive API round-trip
func RecordUpstreamRequest(resource, method, status string, durationSeconds float64) {
	UpstreamRequests.WithLabelValues(resource, method, status).Inc()
	UpstreamDuration.WithLabelValues(resource, method).Observe(durationSeconds)
}
