package ports

import (
	"context"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

// Retriever is the inbound contract for knowledge-base search. Every
// operation degrades to an empty list on data-unavailability; only
// configuration errors escalate.
type Retriever interface {
	SemanticSearch(ctx context.Context, query string, matchCount int) ([]domain.SearchResult, error)
	HybridSearch(ctx context.Context, query string, matchCount int, textWeight float64) ([]domain.SearchResult, error)
	ProjectSearch(ctx context.Context, projectName string, matchCount int) ([]domain.SearchResult, error)
	RecentDocuments(ctx context.Context, limit int, documentType string) ([]domain.SearchResult, error)
}

// ChatService is the inbound contract for conversational answering.
type ChatService interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}
