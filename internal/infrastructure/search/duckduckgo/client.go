package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

const requestTimeout = 10 * time.Second

// Client queries the DuckDuckGo instant-answer API for current information
// (permit offices, inspection delays, weather). No API key required. On any
// failure it returns a single explanatory result so the agent can still
// answer coherently.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type instantAnswer struct {
	Abstract       string  `json:"Abstract"`
	AbstractText   string  `json:"AbstractText"`
	AbstractURL    string  `json:"AbstractURL"`
	AbstractSource string  `json:"AbstractSource"`
	RelatedTopics  []topic `json:"RelatedTopics"`
}

type topic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) []domain.WebResult {
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_redirect", "1")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return c.degrade(query, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.degrade(query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.degrade(query, fmt.Errorf("web search status: %s", resp.Status))
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return c.degrade(query, fmt.Errorf("decode web search response: %w", err))
	}

	results := make([]domain.WebResult, 0, maxResults)
	if answer.Abstract != "" {
		results = append(results, domain.WebResult{
			Title:   truncate(firstNonEmpty(answer.AbstractText, "Instant Answer"), 100),
			URL:     answer.AbstractURL,
			Snippet: truncate(answer.Abstract, 300),
			Source:  firstNonEmpty(answer.AbstractSource, "DuckDuckGo"),
		})
	}
	for _, t := range answer.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if t.Text == "" {
			continue
		}
		results = append(results, domain.WebResult{
			Title:   truncate(t.Text, 100),
			URL:     t.FirstURL,
			Snippet: truncate(t.Text, 300),
			Source:  "DuckDuckGo",
		})
	}

	if len(results) == 0 {
		results = append(results, domain.WebResult{
			Title:   "No current web results",
			Snippet: fmt.Sprintf("No immediate web results for %q. Consider checking specific agency websites or local government portals for permit/inspection delays.", query),
			Source:  "system",
		})
	}
	return results
}

func (c *Client) degrade(query string, cause error) []domain.WebResult {
	c.logger.Warn("web_search_failed", "query", query, "error", cause)
	return []domain.WebResult{{
		Title:   "Search Error",
		Snippet: "Web search is unavailable right now. The information may be available by checking specific government or agency websites directly.",
		Source:  "system",
	}}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
