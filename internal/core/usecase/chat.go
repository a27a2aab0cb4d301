package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
	"github.com/alleato-ai/pm-rag/internal/core/ports"
)

const (
	historyLimit     = 5
	recentCtxLimit   = 3
	relevantCtxLimit = 2
	webCtxLimit      = 3
)

// ChatUseCase answers project questions by enriching the model prompt
// with retrieved documents, falling back to live web results when the
// knowledge base has nothing relevant.
type ChatUseCase struct {
	retriever  ports.Retriever
	generator  ports.AnswerGenerator
	web        ports.WebSearcher
	logger     *slog.Logger
	textWeight float64
	now        func() time.Time
}

func NewChatUseCase(
	retriever ports.Retriever,
	generator ports.AnswerGenerator,
	web ports.WebSearcher,
	logger *slog.Logger,
	textWeight float64,
) *ChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if textWeight <= 0 {
		textWeight = 0.5
	}
	return &ChatUseCase{
		retriever:  retriever,
		generator:  generator,
		web:        web,
		logger:     logger,
		textWeight: textWeight,
		now:        time.Now,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message must not be empty", domain.ErrInvalidInput)
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	contextBlock := uc.buildContext(ctx, req.Message)
	history := trimHistory(req.History, historyLimit)
	system := buildSystemPrompt(contextBlock, uc.now())

	answer, err := uc.generator.GenerateAnswer(ctx, system, history, req.Message)
	if err != nil {
		uc.logger.Error("answer generation failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	uc.logger.Info("chat completed",
		slog.String("session_id", sessionID),
		slog.Int("history", len(history)),
		slog.Int("answer_len", len(answer)))
	return &domain.ChatResponse{Response: answer, SessionID: sessionID}, nil
}

// buildContext gathers recent activity plus documents relevant to the
// question. Retrieval failures never block the chat; the prompt just
// carries less context. When nothing surfaces at all, a live web search
// fills the gap.
func (uc *ChatUseCase) buildContext(ctx context.Context, message string) string {
	var parts []string

	recent, err := uc.retriever.RecentDocuments(ctx, recentCtxLimit, "")
	if err != nil {
		uc.logger.Warn("recent context lookup failed", slog.String("error", err.Error()))
	}
	if len(recent) > 0 {
		var b strings.Builder
		b.WriteString("RECENT ACTIVITY:")
		for i, doc := range recent {
			if i >= relevantCtxLimit {
				break
			}
			fmt.Fprintf(&b, "\n- %s: %s", truncateRunes(doc.DocumentTitle, 40), truncateRunes(doc.Content, 100))
		}
		parts = append(parts, b.String())
	}

	relevant, err := uc.retriever.HybridSearch(ctx, message, relevantCtxLimit, uc.textWeight)
	if err != nil {
		uc.logger.Warn("relevant context lookup failed", slog.String("error", err.Error()))
	}
	if len(relevant) > 0 {
		var b strings.Builder
		b.WriteString("RELEVANT DOCUMENTS:")
		for _, doc := range relevant {
			fmt.Fprintf(&b, "\n- %s: %s", truncateRunes(doc.DocumentTitle, 40), truncateRunes(doc.Content, 100))
		}
		parts = append(parts, b.String())
	}

	if len(parts) == 0 && uc.web != nil {
		webResults := uc.web.Search(ctx, message, webCtxLimit)
		if len(webResults) > 0 {
			var b strings.Builder
			b.WriteString("LIVE WEB RESULTS:")
			for _, r := range webResults {
				fmt.Fprintf(&b, "\n- %s: %s", r.Title, truncateRunes(r.Snippet, 150))
			}
			parts = append(parts, b.String())
		}
	}

	return strings.Join(parts, "\n\n")
}

func trimHistory(history []domain.ChatMessage, limit int) []domain.ChatMessage {
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
