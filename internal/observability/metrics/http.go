package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchRequestsTotal      *prometheus.CounterVec
	searchResults            *prometheus.HistogramVec
	searchDuration           *prometheus.HistogramVec
	fallbackActivationsTotal *prometheus.CounterVec
	chatRequestsTotal        *prometheus.CounterVec
	toolCallsTotal           *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmrag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pmrag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pmrag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmrag",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total retrieval operations by backend path and outcome.",
		},
		[]string{"service", "operation", "path", "kind"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pmrag",
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of result counts per retrieval operation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 50},
		},
		[]string{"service", "operation"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pmrag",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Retrieval operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
	fallbackActivationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmrag",
			Subsystem: "search",
			Name:      "fallback_activations_total",
			Help:      "Total retrieval operations served by the fallback API.",
		},
		[]string{"service", "operation"},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmrag",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total chat completions by status.",
		},
		[]string{"service", "status"},
	)
	toolCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmrag",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total finance tool invocations.",
		},
		[]string{"service", "tool"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchRequestsTotal,
		searchResults,
		searchDuration,
		fallbackActivationsTotal,
		chatRequestsTotal,
		toolCallsTotal,
	)

	return &HTTPServerMetrics{
		registry:                 registry,
		requestTotal:             requestTotal,
		requestDuration:          requestDuration,
		requestInFlight:          requestInFlight,
		searchRequestsTotal:      searchRequestsTotal,
		searchResults:            searchResults,
		searchDuration:           searchDuration,
		fallbackActivationsTotal: fallbackActivationsTotal,
		chatRequestsTotal:        chatRequestsTotal,
		toolCallsTotal:           toolCallsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/tools/"):
		return "/v1/tools/{tool}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSearch(service, operation string, path domain.SearchPath, kind domain.OutcomeKind, resultCount int, duration time.Duration) {
	m.searchRequestsTotal.WithLabelValues(service, operation, string(path), string(kind)).Inc()
	m.searchResults.WithLabelValues(service, operation).Observe(float64(resultCount))
	m.searchDuration.WithLabelValues(service, operation).Observe(duration.Seconds())

	if path == domain.PathFallback {
		m.fallbackActivationsTotal.WithLabelValues(service, operation).Inc()
	}
}

// BoundSearchRecorder pins the service label so the retrieval layer can
// record completed operations without knowing about Prometheus labels.
type BoundSearchRecorder struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) BoundRecorder(service string) *BoundSearchRecorder {
	return &BoundSearchRecorder{metrics: m, service: service}
}

func (r *BoundSearchRecorder) RecordSearch(operation string, path domain.SearchPath, kind domain.OutcomeKind, resultCount int, duration time.Duration) {
	r.metrics.RecordSearch(r.service, operation, path, kind, resultCount, duration)
}

func (m *HTTPServerMetrics) RecordChat(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.chatRequestsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordToolCall(service, tool string) {
	if tool == "" {
		tool = "unknown"
	}
	m.toolCallsTotal.WithLabelValues(service, tool).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
