package ports

import (
	"context"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

// Embedder turns query text into a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkStore is the primary-store query layer. Available reports whether
// the underlying pool initialized; when false the facade routes to the
// fallback path without touching the store.
type ChunkStore interface {
	Available() bool
	VectorMatch(ctx context.Context, embedding []float32, k int) ([]domain.RetrievedRow, error)
	TextMatch(ctx context.Context, query string, k int) ([]domain.RetrievedRow, error)
	MeetingMatch(ctx context.Context, query string, k int) ([]domain.RetrievedRow, error)
	HybridMatch(ctx context.Context, embedding []float32, query string, k int, textWeight float64) ([]domain.RetrievedRow, error)
	RecentDocuments(ctx context.Context, limit int, documentType string) ([]domain.RetrievedRow, error)
}

// FallbackSearcher reaches the external RAG API when the primary store is
// down. Implementations never return an error for data-retrieval failures.
type FallbackSearcher interface {
	Search(ctx context.Context, query string, limit int, searchType string) []domain.RetrievedRow
	RecentDocuments(ctx context.Context, limit int, documentType string) []domain.RetrievedRow
}

// AnswerGenerator produces the user-facing answer text.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, systemPrompt string, history []domain.ChatMessage, message string) (string, error)
}

// WebSearcher performs live web lookups for current information.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []domain.WebResult
}

// EventPublisher emits retrieval outcome events for monitoring consumers.
type EventPublisher interface {
	PublishRetrievalEvent(ctx context.Context, event domain.RetrievalEvent) error
}

// SearchRecorder observes completed retrieval operations for metrics.
type SearchRecorder interface {
	RecordSearch(operation string, path domain.SearchPath, kind domain.OutcomeKind, resultCount int, duration time.Duration)
}
