package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

func TestNormalizeTruncatesTitleAndContent(t *testing.T) {
	row := domain.RetrievedRow{
		DocumentID:    "doc-1",
		DocumentTitle: strings.Repeat("t", 80),
		Content:       strings.Repeat("c", 300),
	}

	results := normalizeRows([]domain.RetrievedRow{row}, searchNormalizeOptions())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if got := len([]rune(results[0].DocumentTitle)); got != 60 {
		t.Fatalf("title length = %d, want 60", got)
	}
	if got := len([]rune(results[0].Content)); got != 200 {
		t.Fatalf("content length = %d, want 200", got)
	}
}

func TestNormalizeRecentUsesShorterSnippet(t *testing.T) {
	row := domain.RetrievedRow{DocumentID: "doc-1", Content: strings.Repeat("c", 300)}

	results := normalizeRows([]domain.RetrievedRow{row}, recentNormalizeOptions())

	if got := len([]rune(results[0].Content)); got != 150 {
		t.Fatalf("content length = %d, want 150", got)
	}
}

func TestNormalizeMetadataNeverNil(t *testing.T) {
	results := normalizeRows([]domain.RetrievedRow{{DocumentID: "doc-1"}}, searchNormalizeOptions())

	if results[0].Metadata == nil {
		t.Fatal("metadata is nil, want empty map")
	}
	if len(results[0].Metadata) != 0 {
		t.Fatalf("metadata = %v, want empty", results[0].Metadata)
	}
}

func TestNormalizeDecodesMetadataJSON(t *testing.T) {
	row := domain.RetrievedRow{
		DocumentID:   "doc-1",
		MetadataJSON: []byte(`{"project":"atlas tower","phase":2}`),
	}

	results := normalizeRows([]domain.RetrievedRow{row}, searchNormalizeOptions())

	if got := results[0].Metadata["project"]; got != "atlas tower" {
		t.Fatalf("metadata project = %v, want atlas tower", got)
	}
}

func TestNormalizePrefersDecodedMetadataOverJSON(t *testing.T) {
	row := domain.RetrievedRow{
		DocumentID:   "doc-1",
		Metadata:     map[string]any{"source": "api"},
		MetadataJSON: []byte(`{"source":"db"}`),
	}

	results := normalizeRows([]domain.RetrievedRow{row}, searchNormalizeOptions())

	if got := results[0].Metadata["source"]; got != "api" {
		t.Fatalf("metadata source = %v, want api", got)
	}
}

func TestNormalizeUndecodableMetadataBecomesEmpty(t *testing.T) {
	row := domain.RetrievedRow{DocumentID: "doc-1", MetadataJSON: []byte(`{broken`)}

	results := normalizeRows([]domain.RetrievedRow{row}, searchNormalizeOptions())

	if results[0].Metadata == nil || len(results[0].Metadata) != 0 {
		t.Fatalf("metadata = %v, want empty map", results[0].Metadata)
	}
}

func TestNormalizeFormatsCreatedAt(t *testing.T) {
	created := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	rows := []domain.RetrievedRow{
		{DocumentID: "doc-1", CreatedAt: created},
		{DocumentID: "doc-2"},
	}

	results := normalizeRows(rows, searchNormalizeOptions())

	if results[0].CreatedAt != "2026-02-14T09:30:00Z" {
		t.Fatalf("created_at = %q", results[0].CreatedAt)
	}
	if results[1].CreatedAt != "" {
		t.Fatalf("zero time produced %q, want empty", results[1].CreatedAt)
	}
}

func TestNormalizeDedupsByDocumentID(t *testing.T) {
	rows := []domain.RetrievedRow{
		{DocumentID: "doc-1", Content: "first"},
		{DocumentID: "doc-1", Content: "second"},
		{DocumentID: "doc-2", Content: "other"},
	}

	results := normalizeRows(rows, searchNormalizeOptions())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Content != "first" {
		t.Fatalf("dedup kept %q, want first-seen instance", results[0].Content)
	}
}
