package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

type MonitorMetrics struct {
	registry *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	eventResults  *prometheus.HistogramVec
	eventDuration *prometheus.HistogramVec
	eventLag      *prometheus.HistogramVec
}

func NewMonitorMetrics(service string) *MonitorMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmrag",
			Subsystem: "monitor",
			Name:      "retrieval_events_total",
			Help:      "Total consumed retrieval events by path and outcome.",
		},
		[]string{"service", "operation", "path", "kind"},
	)
	eventResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pmrag",
			Subsystem: "monitor",
			Name:      "retrieval_event_results",
			Help:      "Distribution of result counts observed in retrieval events.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 50},
		},
		[]string{"service", "operation"},
	)
	eventDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pmrag",
			Subsystem: "monitor",
			Name:      "retrieval_event_duration_seconds",
			Help:      "Retrieval durations as reported by events.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pmrag",
			Subsystem: "monitor",
			Name:      "event_lag_seconds",
			Help:      "Delay between event emission and consumption.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"service"},
	)

	registry.MustRegister(eventsTotal, eventResults, eventDuration, eventLag)

	return &MonitorMetrics{
		registry:      registry,
		eventsTotal:   eventsTotal,
		eventResults:  eventResults,
		eventDuration: eventDuration,
		eventLag:      eventLag,
	}
}

func (m *MonitorMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MonitorMetrics) ObserveEvent(service string, event domain.RetrievalEvent) {
	m.eventsTotal.WithLabelValues(service, event.Operation, string(event.Path), string(event.Kind)).Inc()
	m.eventResults.WithLabelValues(service, event.Operation).Observe(float64(event.ResultCount))
	m.eventDuration.WithLabelValues(service, event.Operation).Observe(event.DurationMS / 1000)

	if !event.Timestamp.IsZero() {
		if lag := time.Since(event.Timestamp); lag >= 0 {
			m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
		}
	}
}
