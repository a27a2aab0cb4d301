package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alleato-ai/pm-rag/internal/config"
	"github.com/alleato-ai/pm-rag/internal/core/domain"
	natsbus "github.com/alleato-ai/pm-rag/internal/infrastructure/events/nats"
	"github.com/alleato-ai/pm-rag/internal/observability/logging"
	"github.com/alleato-ai/pm-rag/internal/observability/metrics"
)

// monitor consumes retrieval events from NATS and exposes them as
// Prometheus metrics, giving operators a view of fallback activations
// and degraded retrievals without touching the API service.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewJSONLogger("monitor", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus, err := natsbus.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsbus.Options{Logger: logger})
	if err != nil {
		log.Fatalf("event bus connect error: %v", err)
	}
	defer bus.Close()

	m := metrics.NewMonitorMetrics("monitor")
	metricsServer := &http.Server{
		Addr:        ":" + cfg.MonitorMetricsPort,
		Handler:     m.Handler(),
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("monitor metrics listening", slog.String("port", cfg.MonitorMetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	logger.Info("monitor subscribed", slog.String("subject", cfg.NATSSubject))
	err = bus.SubscribeRetrievalEvents(ctx, func(_ context.Context, event domain.RetrievalEvent) {
		m.ObserveEvent("monitor", event)
		attrs := []any{
			slog.String("operation", event.Operation),
			slog.String("path", string(event.Path)),
			slog.String("kind", string(event.Kind)),
			slog.Int("results", event.ResultCount),
			slog.Float64("duration_ms", event.DurationMS),
		}
		if event.Kind == domain.OutcomeDegraded || event.Kind == domain.OutcomeFatal {
			logger.Warn("retrieval_event", attrs...)
			return
		}
		logger.Info("retrieval_event", attrs...)
	})
	if err != nil {
		log.Fatalf("monitor subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
