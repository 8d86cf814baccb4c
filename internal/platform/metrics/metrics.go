// Package metrics defines the prometheus collectors shared by the MCP server
// and the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MCP protocol
	MCPMethodCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "les_coureurs_mcp_method_calls_total",
			Help: "MCP method calls by method, tool and outcome",
		},
		[]string{"method", "tool", "outcome"},
	)

	MCPMethodDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "les_coureurs_mcp_method_duration_seconds",
			Help:    "MCP method handling latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	MCPSessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "les_coureurs_mcp_sessions_open",
			Help: "MCP HTTP sessions currently registered",
		},
	)

	MCPSessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "les_coureurs_mcp_sessions_closed_total",
			Help: "MCP HTTP sessions closed by reason",
		},
		[]string{"reason"}, // "disconnect", "idle", "delete", "ended", "shutdown"
	)

	MCPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "les_coureurs_mcp_rate_limited_total",
			Help: "MCP HTTP requests rejected by the rate limiter",
		},
	)

	// Dashboard
	DashboardActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "les_coureurs_dashboard_actions_total",
			Help: "Dashboard state transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "les_coureurs_http_requests_total",
			Help: "HTTP requests by service, route and status",
		},
		[]string{"service", "route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "les_coureurs_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Outcome maps an error to its outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// RecordMCPCall records one handled MCP method.
func RecordMCPCall(method, tool string, err error, elapsed time.Duration) {
	MCPMethodCalls.WithLabelValues(method, tool, Outcome(err)).Inc()
	MCPMethodDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordSessionClosed decrements the open gauge and counts the close reason.
func RecordSessionClosed(reason string) {
	MCPSessionsOpen.Dec()
	MCPSessionsClosed.WithLabelValues(reason).Inc()
}

// RecordDashboardAction counts one dashboard transition.
func RecordDashboardAction(action string, err error) {
	DashboardActions.WithLabelValues(action, Outcome(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps next and records request count and latency under route.
func Instrument(service, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		HTTPRequests.WithLabelValues(service, route, r.Method, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(service, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush keeps SSE streams working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
