package ragapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchTranslatesResponseShape(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"results":[
			{"content":"permit backlog","similarity":0.81,"metadata":{"document_id":"doc-9"},"document_title":"Permits","document_source":"report"},
			{"content":"no source given"}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil, nil)
	rows := client.Search(context.Background(), "permits", 7, "semantic")

	if captured["query"] != "permits" || captured["limit"] != float64(7) || captured["search_type"] != "semantic" {
		t.Fatalf("unexpected request body: %v", captured)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].DocumentID != "doc-9" || rows[0].Similarity != 0.81 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].DocumentSource != "External API" {
		t.Fatalf("expected default source, got %q", rows[1].DocumentSource)
	}
	if rows[1].Similarity != 0.0 {
		t.Fatalf("expected default similarity 0.0, got %v", rows[1].Similarity)
	}
	if rows[1].Metadata == nil || len(rows[1].Metadata) != 0 {
		t.Fatalf("expected empty metadata map, got %v", rows[1].Metadata)
	}
}

func TestSearchReturnsEmptyOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, nil, nil)
	rows := client.Search(context.Background(), "anything", 5, "hybrid")
	if len(rows) != 0 {
		t.Fatalf("expected empty result on 503, got %d rows", len(rows))
	}
}

func TestSearchReturnsEmptyOnMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer server.Close()

	client := New(server.URL, nil, nil)
	if rows := client.Search(context.Background(), "q", 5, "semantic"); len(rows) != 0 {
		t.Fatalf("expected empty result on malformed json, got %d rows", len(rows))
	}
}

func TestSearchReturnsEmptyOnTransportError(t *testing.T) {
	client := New("http://127.0.0.1:1", nil, nil)
	if rows := client.Search(context.Background(), "q", 5, "semantic"); len(rows) != 0 {
		t.Fatalf("expected empty result on transport error, got %d rows", len(rows))
	}
}

func TestRecentDocumentsPassesLimitAndType(t *testing.T) {
	var gotLimit, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/recent" {
			http.NotFound(w, r)
			return
		}
		gotLimit = r.URL.Query().Get("limit")
		gotType = r.URL.Query().Get("type")
		_, _ = w.Write([]byte(`{"documents":[{"content":"standup notes","document_title":"Standup","document_source":"meeting_transcript"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil, nil)
	rows := client.RecentDocuments(context.Background(), 5, "meeting")
	if gotLimit != "5" || gotType != "meeting" {
		t.Fatalf("expected limit=5 type=meeting, got limit=%s type=%s", gotLimit, gotType)
	}
	if len(rows) != 1 || rows[0].DocumentTitle != "Standup" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestRecentDocumentsReturnsEmptyOn503(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, nil, nil)
	if rows := client.RecentDocuments(context.Background(), 5, "meeting"); len(rows) != 0 {
		t.Fatalf("expected empty result on 503, got %d rows", len(rows))
	}
}
