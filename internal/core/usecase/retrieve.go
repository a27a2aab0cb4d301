package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
	"github.com/alleato-ai/pm-rag/internal/core/ports"
)

// RetrievalConfig carries the clamping bounds and defaults the facade
// applies to caller-supplied knobs.
type RetrievalConfig struct {
	MaxMatchCount      int
	DefaultMatchCount  int
	DefaultTextWeight  float64
	RecentDefaultLimit int
}

// RetrievalService is the single entry point for document retrieval. It
// decides per call whether the primary store or the fallback API serves
// the request, normalizes whatever comes back, and never surfaces backend
// failures to callers as errors — degraded calls return empty results.
type RetrievalService struct {
	embedder ports.Embedder
	store    ports.ChunkStore
	fallback ports.FallbackSearcher
	events   ports.EventPublisher
	recorder ports.SearchRecorder
	logger   *slog.Logger
	cfg      RetrievalConfig
}

func NewRetrievalService(
	embedder ports.Embedder,
	store ports.ChunkStore,
	fallback ports.FallbackSearcher,
	events ports.EventPublisher,
	logger *slog.Logger,
	cfg RetrievalConfig,
) *RetrievalService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxMatchCount <= 0 {
		cfg.MaxMatchCount = 50
	}
	if cfg.DefaultMatchCount <= 0 {
		cfg.DefaultMatchCount = 5
	}
	if cfg.DefaultTextWeight <= 0 {
		cfg.DefaultTextWeight = 0.5
	}
	if cfg.RecentDefaultLimit <= 0 {
		cfg.RecentDefaultLimit = 10
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		fallback: fallback,
		events:   events,
		logger:   logger,
		cfg:      cfg,
	}
}

// WithRecorder attaches a metrics recorder for completed operations.
func (s *RetrievalService) WithRecorder(recorder ports.SearchRecorder) *RetrievalService {
	s.recorder = recorder
	return s
}

// SemanticSearch retrieves by vector similarity alone. An error is
// returned only for invalid input; backend trouble degrades to an empty
// result set.
func (s *RetrievalService) SemanticSearch(ctx context.Context, query string, matchCount int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	started := time.Now()
	outcome := s.semanticOutcome(ctx, query, matchCount)
	s.finish(ctx, "semantic_search", started, outcome)
	return outcome.Results, nil
}

func (s *RetrievalService) semanticOutcome(ctx context.Context, query string, matchCount int) domain.Outcome {
	k := s.clampCount(matchCount)
	if !s.store.Available() {
		rows := s.fallback.Search(ctx, query, k, "semantic")
		return fromRows(rows, domain.PathFallback, searchNormalizeOptions(), k)
	}
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return degraded(domain.PathPrimary, err)
	}
	rows, err := s.store.VectorMatch(ctx, embedding, k)
	if err != nil {
		return degraded(domain.PathPrimary, err)
	}
	sortBySimilarity(rows)
	return fromRows(rows, domain.PathPrimary, searchNormalizeOptions(), k)
}

// HybridSearch combines vector and text relevance. The text weight is
// clamped to [0,1]; combined scores are recomputed on every row so the
// ordering always reflects the clamped weight. Meeting-flavored queries
// additionally pull from the meeting subset, which wins dedup ties.
func (s *RetrievalService) HybridSearch(ctx context.Context, query string, matchCount int, textWeight float64) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	started := time.Now()
	outcome := s.hybridOutcome(ctx, query, matchCount, textWeight)
	s.finish(ctx, "hybrid_search", started, outcome)
	return outcome.Results, nil
}

func (s *RetrievalService) hybridOutcome(ctx context.Context, query string, matchCount int, textWeight float64) domain.Outcome {
	k := s.clampCount(matchCount)
	w := clampTextWeight(textWeight)
	if !s.store.Available() {
		rows := s.fallback.Search(ctx, query, k, "hybrid")
		return fromRows(rows, domain.PathFallback, searchNormalizeOptions(), k)
	}
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return degraded(domain.PathPrimary, err)
	}
	rows, err := s.store.HybridMatch(ctx, embedding, query, k, w)
	if err != nil {
		return degraded(domain.PathPrimary, err)
	}
	applyCombinedScores(rows, w)
	sortByCombined(rows)
	if hasMeetingIntent(query) {
		meetingRows, merr := s.store.MeetingMatch(ctx, query, k)
		if merr != nil {
			s.logger.Warn("meeting augmentation failed", slog.String("error", merr.Error()))
		} else {
			rows = mergeByPriority(meetingRows, rows)
		}
	}
	return fromRows(rows, domain.PathPrimary, searchNormalizeOptions(), k)
}

// ProjectSearch finds documents mentioning a specific project by plain
// text match. The project name is widened to "<name> project" so titles
// and prose both hit.
func (s *RetrievalService) ProjectSearch(ctx context.Context, projectName string, matchCount int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(projectName) == "" {
		return nil, fmt.Errorf("%w: project name must not be empty", domain.ErrInvalidInput)
	}
	started := time.Now()
	outcome := s.projectOutcome(ctx, projectName, matchCount)
	s.finish(ctx, "project_search", started, outcome)
	return outcome.Results, nil
}

func (s *RetrievalService) projectOutcome(ctx context.Context, projectName string, matchCount int) domain.Outcome {
	k := s.clampCount(matchCount)
	query := projectName + " project"
	if !s.store.Available() {
		rows := s.fallback.Search(ctx, query, k, "text")
		return fromRows(rows, domain.PathFallback, searchNormalizeOptions(), k)
	}
	rows, err := s.store.TextMatch(ctx, query, k)
	if err != nil {
		return degraded(domain.PathPrimary, err)
	}
	return fromRows(rows, domain.PathPrimary, searchNormalizeOptions(), k)
}

// RecentDocuments lists the newest documents, optionally filtered by a
// source or title substring.
func (s *RetrievalService) RecentDocuments(ctx context.Context, limit int, documentType string) ([]domain.SearchResult, error) {
	started := time.Now()
	outcome := s.recentOutcome(ctx, limit, documentType)
	s.finish(ctx, "get_recent_documents", started, outcome)
	return outcome.Results, nil
}

func (s *RetrievalService) recentOutcome(ctx context.Context, limit int, documentType string) domain.Outcome {
	if limit <= 0 {
		limit = s.cfg.RecentDefaultLimit
	}
	if limit > s.cfg.MaxMatchCount {
		limit = s.cfg.MaxMatchCount
	}
	if !s.store.Available() {
		rows := s.fallback.RecentDocuments(ctx, limit, documentType)
		return fromRows(rows, domain.PathFallback, recentNormalizeOptions(), limit)
	}
	rows, err := s.store.RecentDocuments(ctx, limit, documentType)
	if err != nil {
		return degraded(domain.PathPrimary, err)
	}
	return fromRows(rows, domain.PathPrimary, recentNormalizeOptions(), limit)
}

func (s *RetrievalService) clampCount(requested int) int {
	if requested <= 0 {
		requested = s.cfg.DefaultMatchCount
	}
	if requested > s.cfg.MaxMatchCount {
		return s.cfg.MaxMatchCount
	}
	return requested
}

func (s *RetrievalService) finish(ctx context.Context, operation string, started time.Time, outcome domain.Outcome) {
	elapsed := time.Since(started)
	attrs := []any{
		slog.String("operation", operation),
		slog.String("path", string(outcome.Path)),
		slog.Int("results", len(outcome.Results)),
		slog.Duration("elapsed", elapsed),
	}
	switch outcome.Kind {
	case domain.OutcomeDegraded, domain.OutcomeFatal:
		if outcome.Cause != nil {
			attrs = append(attrs, slog.String("error", outcome.Cause.Error()))
		}
		s.logger.Warn("retrieval degraded", attrs...)
	default:
		s.logger.Info("retrieval completed", attrs...)
	}
	if s.recorder != nil {
		s.recorder.RecordSearch(operation, outcome.Path, outcome.Kind, len(outcome.Results), elapsed)
	}
	if s.events == nil {
		return
	}
	event := domain.RetrievalEvent{
		Operation:   operation,
		Path:        outcome.Path,
		Kind:        outcome.Kind,
		ResultCount: len(outcome.Results),
		DurationMS:  float64(elapsed) / float64(time.Millisecond),
		Timestamp:   time.Now().UTC(),
	}
	if err := s.events.PublishRetrievalEvent(ctx, event); err != nil {
		s.logger.Debug("retrieval event publish failed", slog.String("error", err.Error()))
	}
}

func fromRows(rows []domain.RetrievedRow, path domain.SearchPath, opts normalizeOptions, limit int) domain.Outcome {
	results := normalizeRows(rows, opts)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	kind := domain.OutcomeResults
	if len(results) == 0 {
		kind = domain.OutcomeEmpty
	}
	return domain.Outcome{Kind: kind, Path: path, Results: results}
}

func degraded(path domain.SearchPath, cause error) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeDegraded, Path: path, Results: []domain.SearchResult{}, Cause: cause}
}
