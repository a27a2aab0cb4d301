package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

// ChunkStore executes parameterized vector and text queries against the
// pool. Every query runs inside a command-timeout scope; connections are
// released on all exit paths including cancellation.
type ChunkStore struct {
	pool *Pool

	// db overrides the pool's handle in tests.
	db             *sql.DB
	commandTimeout time.Duration
}

func NewChunkStore(pool *Pool) *ChunkStore {
	return &ChunkStore{pool: pool}
}

func (s *ChunkStore) Available() bool {
	if s.db != nil {
		return true
	}
	return s.pool != nil && s.pool.Available()
}

func (s *ChunkStore) handle() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if s.pool == nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "chunk store", fmt.Errorf("no pool configured"))
	}
	db := s.pool.DB()
	if db == nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "chunk store", fmt.Errorf("pool not initialized"))
	}
	return db, nil
}

func (s *ChunkStore) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.pool != nil {
		return s.pool.CommandScope(ctx)
	}
	timeout := s.commandTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// VectorMatch calls the match_chunks stored function with the serialized
// embedding literal.
func (s *ChunkStore) VectorMatch(ctx context.Context, embedding []float32, k int) ([]domain.RetrievedRow, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := s.scope(ctx)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, `
SELECT chunk_id, document_id, content, similarity, metadata, document_title, document_source
FROM match_chunks($1::vector, $2)
`, vectorLiteral(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("vector match: %w", err)
	}
	defer rows.Close()

	var out []domain.RetrievedRow
	for rows.Next() {
		var r domain.RetrievedRow
		var metadata []byte
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Content, &r.Similarity, &metadata, &r.DocumentTitle, &r.DocumentSource); err != nil {
			return nil, fmt.Errorf("scan vector match row: %w", err)
		}
		r.MetadataJSON = metadata
		r.VectorSimilarity = r.Similarity
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector match rows: %w", err)
	}
	return out, nil
}

// HybridMatch calls the hybrid_search stored function. The fusion engine
// re-derives combined scores from the component similarities, so the
// returned combined_score is informational.
func (s *ChunkStore) HybridMatch(ctx context.Context, embedding []float32, query string, k int, textWeight float64) ([]domain.RetrievedRow, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := s.scope(ctx)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, `
SELECT chunk_id, document_id, content, combined_score, vector_similarity, text_similarity, metadata, document_title, document_source
FROM hybrid_search($1::vector, $2, $3, $4)
`, vectorLiteral(embedding), query, k, textWeight)
	if err != nil {
		return nil, fmt.Errorf("hybrid match: %w", err)
	}
	defer rows.Close()

	var out []domain.RetrievedRow
	for rows.Next() {
		var r domain.RetrievedRow
		var metadata []byte
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Content, &r.CombinedScore, &r.VectorSimilarity, &r.TextSimilarity, &metadata, &r.DocumentTitle, &r.DocumentSource); err != nil {
			return nil, fmt.Errorf("scan hybrid match row: %w", err)
		}
		r.MetadataJSON = metadata
		r.Similarity = r.CombinedScore
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hybrid match rows: %w", err)
	}
	return out, nil
}

// TextMatch finds documents whose content or title contains the query,
// newest first. Text matches carry no relevance score.
func (s *ChunkStore) TextMatch(ctx context.Context, query string, k int) ([]domain.RetrievedRow, error) {
	return s.textSearch(ctx, `
SELECT c.id, d.id, c.content, d.metadata, d.title, d.source, d.created_at
FROM documents d
JOIN chunks c ON d.id = c.document_id
WHERE d.content ILIKE $1 OR d.title ILIKE $1 OR c.content ILIKE $1
ORDER BY d.created_at DESC
LIMIT $2
`, query, k)
}

// MeetingMatch restricts the text search to the meeting subset of the
// knowledge base.
func (s *ChunkStore) MeetingMatch(ctx context.Context, query string, k int) ([]domain.RetrievedRow, error) {
	return s.textSearch(ctx, `
SELECT c.id, d.id, c.content, d.metadata, d.title, d.source, d.created_at
FROM documents d
JOIN chunks c ON d.id = c.document_id
WHERE (d.title ILIKE '%meeting%' OR d.content ILIKE '%meeting%' OR d.source = 'meeting_transcript')
  AND (d.content ILIKE $1 OR d.title ILIKE $1 OR c.content ILIKE $1)
ORDER BY d.created_at DESC
LIMIT $2
`, query, k)
}

func (s *ChunkStore) textSearch(ctx context.Context, statement, query string, k int) ([]domain.RetrievedRow, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := s.scope(ctx)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, statement, "%"+query+"%", k)
	if err != nil {
		return nil, fmt.Errorf("text match: %w", err)
	}
	defer rows.Close()

	var out []domain.RetrievedRow
	for rows.Next() {
		var r domain.RetrievedRow
		var metadata []byte
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Content, &metadata, &r.DocumentTitle, &r.DocumentSource, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan text match row: %w", err)
		}
		r.MetadataJSON = metadata
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate text match rows: %w", err)
	}
	return out, nil
}

// RecentDocuments returns newest documents, optionally filtered by a
// source/title label.
func (s *ChunkStore) RecentDocuments(ctx context.Context, limit int, documentType string) ([]domain.RetrievedRow, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := s.scope(ctx)
	defer cancel()

	pattern := "%" + documentType + "%"
	rows, err := db.QueryContext(queryCtx, `
SELECT id, title, content, metadata, source, created_at
FROM documents
WHERE $1 = '' OR source ILIKE $2 OR title ILIKE $2
ORDER BY created_at DESC
LIMIT $3
`, documentType, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("recent documents: %w", err)
	}
	defer rows.Close()

	var out []domain.RetrievedRow
	for rows.Next() {
		var r domain.RetrievedRow
		var metadata []byte
		if err := rows.Scan(&r.DocumentID, &r.DocumentTitle, &r.Content, &metadata, &r.DocumentSource, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent document row: %w", err)
		}
		r.MetadataJSON = metadata
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent document rows: %w", err)
	}
	return out, nil
}
