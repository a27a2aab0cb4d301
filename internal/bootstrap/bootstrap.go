package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alleato-ai/pm-rag/internal/config"
	"github.com/alleato-ai/pm-rag/internal/core/ports"
	"github.com/alleato-ai/pm-rag/internal/core/usecase"
	natsbus "github.com/alleato-ai/pm-rag/internal/infrastructure/events/nats"
	"github.com/alleato-ai/pm-rag/internal/infrastructure/llm/openai"
	"github.com/alleato-ai/pm-rag/internal/infrastructure/repository/postgres"
	"github.com/alleato-ai/pm-rag/internal/infrastructure/resilience"
	"github.com/alleato-ai/pm-rag/internal/infrastructure/search/duckduckgo"
	"github.com/alleato-ai/pm-rag/internal/infrastructure/search/ragapi"
	"github.com/alleato-ai/pm-rag/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Pool      *postgres.Pool
	Metrics   *metrics.HTTPServerMetrics
	Retriever ports.Retriever
	ChatUC    ports.ChatService

	closeFn func()
}

// New wires the whole dependency graph. A database that cannot be
// reached is not fatal here: the pool records the failure and the
// retrieval facade serves from the fallback API instead.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	pool := postgres.NewPool(postgres.PoolConfig{
		DSN:            cfg.DatabaseURL,
		MinConns:       cfg.DBMinConns,
		MaxConns:       cfg.DBMaxConns,
		CommandTimeout: time.Duration(cfg.DBCommandTimeout) * time.Second,
	})
	if err := pool.Initialize(ctx); err != nil {
		logger.Warn("primary store unavailable, retrieval will use the fallback API",
			slog.String("error", err.Error()))
	}
	store := postgres.NewChunkStore(pool)

	fallback := ragapi.New(cfg.FallbackRAGURL, executor, logger)
	web := duckduckgo.New(cfg.WebSearchURL, logger)

	llmClient, err := openai.New(openai.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		GenModel:   cfg.LLMModel,
		EmbedModel: cfg.EmbeddingModel,
	}, executor)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}
	embedder := openai.NewEmbedder(llmClient)
	generator := openai.NewGenerator(llmClient)

	var events ports.EventPublisher
	var busClose func()
	bus, err := natsbus.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsbus.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		logger.Warn("event bus unavailable, retrieval events disabled",
			slog.String("error", err.Error()))
	} else {
		events = bus
		busClose = bus.Close
	}

	m := metrics.NewHTTPServerMetrics("api")

	retriever := usecase.NewRetrievalService(embedder, store, fallback, events, logger, usecase.RetrievalConfig{
		MaxMatchCount:      cfg.SearchMaxMatchCount,
		DefaultMatchCount:  cfg.SearchDefaultMatchCount,
		DefaultTextWeight:  cfg.SearchDefaultTextWeight,
		RecentDefaultLimit: cfg.RecentDocsDefaultLimit,
	}).WithRecorder(m.BoundRecorder("api"))

	chatUC := usecase.NewChatUseCase(retriever, generator, web, logger, cfg.SearchDefaultTextWeight)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Pool:      pool,
		Metrics:   m,
		Retriever: retriever,
		ChatUC:    chatUC,
		closeFn: func() {
			if busClose != nil {
				busClose()
			}
			pool.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
