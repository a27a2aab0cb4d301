package ragapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
	"github.com/alleato-ai/pm-rag/internal/infrastructure/resilience"
)

const (
	searchTimeout = 30 * time.Second
	recentTimeout = 10 * time.Second

	defaultSource = "External API"
)

// Client reaches the external RAG API when the primary store is down.
// Every failure degrades to an empty result list; the fallback path never
// raises toward the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *slog.Logger
}

func New(baseURL string, executor *resilience.Executor, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Per-call deadlines bound each request; the client itself has no
		// global timeout so search and recent-documents can differ.
		httpClient: &http.Client{},
		executor:   executor,
		logger:     logger,
	}
}

type searchResponse struct {
	Results []resultPayload `json:"results"`
}

type recentResponse struct {
	Documents []resultPayload `json:"documents"`
}

type resultPayload struct {
	Content        string         `json:"content"`
	Similarity     float64        `json:"similarity"`
	Metadata       map[string]any `json:"metadata"`
	DocumentTitle  string         `json:"document_title"`
	DocumentSource string         `json:"document_source"`
	CreatedAt      string         `json:"created_at"`
}

// Search posts the query to {base}/search and translates the response into
// the internal row shape.
func (c *Client) Search(ctx context.Context, query string, limit int, searchType string) []domain.RetrievedRow {
	callCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"query":       query,
		"limit":       limit,
		"search_type": searchType,
	})
	if err != nil {
		c.logger.Error("fallback_search_marshal_failed", "error", err)
		return nil
	}

	var resp searchResponse
	err = c.execute(callCtx, "fallback.search", func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create search request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return c.doJSON(req, "search", &resp)
	})
	if err != nil {
		c.logger.Warn("fallback_search_failed", "search_type", searchType, "error", err)
		return nil
	}

	return translateRows(resp.Results)
}

// RecentDocuments fetches {base}/documents/recent with query parameters.
func (c *Client) RecentDocuments(ctx context.Context, limit int, documentType string) []domain.RetrievedRow {
	callCtx, cancel := context.WithTimeout(ctx, recentTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if documentType != "" {
		params.Set("type", documentType)
	}

	var resp recentResponse
	err := c.execute(callCtx, "fallback.recent_documents", func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+"/documents/recent?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("create recent documents request: %w", err)
		}
		return c.doJSON(req, "recent documents", &resp)
	})
	if err != nil {
		c.logger.Warn("fallback_recent_documents_failed", "error", err)
		return nil
	}

	return translateRows(resp.Documents)
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyAPIError)
}

func (c *Client) doJSON(req *http.Request, operation string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rag api %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// translateRows maps the external response fields onto the internal row
// shape, applying the documented defaults for absent values.
func translateRows(payloads []resultPayload) []domain.RetrievedRow {
	out := make([]domain.RetrievedRow, 0, len(payloads))
	for _, p := range payloads {
		metadata := p.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		source := p.DocumentSource
		if source == "" {
			source = defaultSource
		}
		row := domain.RetrievedRow{
			Content:        p.Content,
			Similarity:     p.Similarity,
			Metadata:       metadata,
			DocumentTitle:  p.DocumentTitle,
			DocumentSource: source,
		}
		if id, ok := metadata["document_id"].(string); ok {
			row.DocumentID = id
		}
		if p.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
				row.CreatedAt = ts
			}
		}
		out = append(out, row)
	}
	return out
}
