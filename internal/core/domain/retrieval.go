package domain

import "time"

// RetrievedRow is the raw shape produced by a retrieval backend before
// normalization. The primary store fills MetadataJSON from its JSONB column;
// the fallback API fills Metadata directly. The normalizer reconciles both.
type RetrievedRow struct {
	ChunkID          string
	DocumentID       string
	Content          string
	Similarity       float64
	VectorSimilarity float64
	TextSimilarity   float64
	CombinedScore    float64
	Metadata         map[string]any
	MetadataJSON     []byte
	DocumentTitle    string
	DocumentSource   string
	CreatedAt        time.Time
}

// SearchResult is the single result shape callers observe regardless of
// which backend produced it. Ephemeral, never persisted.
type SearchResult struct {
	ChunkID          string         `json:"chunk_id,omitempty"`
	DocumentID       string         `json:"document_id"`
	Content          string         `json:"content"`
	Similarity       float64        `json:"similarity"`
	VectorSimilarity float64        `json:"vector_similarity,omitempty"`
	TextSimilarity   float64        `json:"text_similarity,omitempty"`
	CombinedScore    float64        `json:"combined_score,omitempty"`
	Metadata         map[string]any `json:"metadata"`
	DocumentTitle    string         `json:"document_title"`
	DocumentSource   string         `json:"document_source"`
	CreatedAt        string         `json:"created_at,omitempty"`
}

// SearchPath identifies which backend served a facade call.
type SearchPath string

const (
	PathPrimary  SearchPath = "primary"
	PathFallback SearchPath = "fallback"
)

// OutcomeKind tags the result of a retrieval operation so that logging and
// metrics can distinguish healthy emptiness from degradation.
type OutcomeKind string

const (
	OutcomeResults  OutcomeKind = "results"
	OutcomeEmpty    OutcomeKind = "empty"
	OutcomeDegraded OutcomeKind = "degraded"
	OutcomeFatal    OutcomeKind = "fatal"
)

// Outcome is the tagged result of one facade invocation.
type Outcome struct {
	Kind    OutcomeKind
	Path    SearchPath
	Results []SearchResult
	Cause   error
}

// RetrievalEvent is published after every facade call for external
// monitoring consumers.
type RetrievalEvent struct {
	Operation   string      `json:"operation"`
	Path        SearchPath  `json:"path"`
	Kind        OutcomeKind `json:"kind"`
	ResultCount int         `json:"result_count"`
	DurationMS  float64     `json:"duration_ms"`
	Timestamp   time.Time   `json:"timestamp"`
}
