package usecase

import (
	"encoding/json"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

const (
	titleLimit         = 60
	searchSnippetLimit = 200
	recentSnippetLimit = 150
)

type normalizeOptions struct {
	snippetLimit int
	dedup        bool
}

func searchNormalizeOptions() normalizeOptions {
	return normalizeOptions{snippetLimit: searchSnippetLimit, dedup: true}
}

func recentNormalizeOptions() normalizeOptions {
	return normalizeOptions{snippetLimit: recentSnippetLimit, dedup: true}
}

// normalizeRows flattens backend rows into the uniform result shape the
// API returns: truncated title and snippet, a metadata map that is never
// nil, and an RFC 3339 timestamp string (empty when the backend had none).
func normalizeRows(rows []domain.RetrievedRow, opts normalizeOptions) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if opts.dedup && row.DocumentID != "" {
			if _, ok := seen[row.DocumentID]; ok {
				continue
			}
			seen[row.DocumentID] = struct{}{}
		}
		out = append(out, domain.SearchResult{
			ChunkID:          row.ChunkID,
			DocumentID:       row.DocumentID,
			Content:          truncateRunes(row.Content, opts.snippetLimit),
			Similarity:       row.Similarity,
			VectorSimilarity: row.VectorSimilarity,
			TextSimilarity:   row.TextSimilarity,
			CombinedScore:    row.CombinedScore,
			Metadata:         rowMetadata(row),
			DocumentTitle:    truncateRunes(row.DocumentTitle, titleLimit),
			DocumentSource:   row.DocumentSource,
			CreatedAt:        formatCreatedAt(row.CreatedAt),
		})
	}
	return out
}

// rowMetadata resolves the metadata map regardless of which backend the
// row came from: the API path carries a decoded map, the database path a
// raw JSON column. Undecodable or absent metadata becomes an empty map.
func rowMetadata(row domain.RetrievedRow) map[string]any {
	if row.Metadata != nil {
		return row.Metadata
	}
	if len(row.MetadataJSON) > 0 {
		var m map[string]any
		if err := json.Unmarshal(row.MetadataJSON, &m); err == nil && m != nil {
			return m
		}
	}
	return map[string]any{}
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
