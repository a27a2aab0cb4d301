package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/cors"

	"github.com/alleato-ai/pm-rag/internal/config"
	"github.com/alleato-ai/pm-rag/internal/core/domain"
	"github.com/alleato-ai/pm-rag/internal/core/finance"
	"github.com/alleato-ai/pm-rag/internal/core/ports"
	"github.com/alleato-ai/pm-rag/internal/observability/metrics"
)

const serviceName = "api"

const backpressureAcquireTimeout = 2 * time.Second

// DatabaseHealth reports primary store connectivity for /healthz.
type DatabaseHealth interface {
	Available() bool
	InitErr() error
}

type Router struct {
	retriever ports.Retriever
	chat      ports.ChatService
	dbHealth  DatabaseHealth
	metrics   *metrics.HTTPServerMetrics
	cfg       config.Config
}

func NewRouter(
	retriever ports.Retriever,
	chat ports.ChatService,
	dbHealth DatabaseHealth,
	m *metrics.HTTPServerMetrics,
	cfg config.Config,
) *Router {
	return &Router{
		retriever: retriever,
		chat:      chat,
		dbHealth:  dbHealth,
		metrics:   m,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.handleChat)
	mux.HandleFunc("/v1/search", rt.handleSearch)
	mux.HandleFunc("/v1/documents/recent", rt.handleRecentDocuments)
	mux.HandleFunc("/v1/tools/budget-variance", rt.handleBudgetVariance)
	mux.HandleFunc("/v1/tools/delay-cost", rt.handleDelayCost)
	mux.HandleFunc("/v1/tools/cost-projection", rt.handleCostProjection)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, backpressureAcquireTimeout)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		MaxAge:         300,
	})(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	database := "ok"
	if rt.dbHealth != nil && !rt.dbHealth.Available() {
		database = "unavailable"
		if err := rt.dbHealth.InitErr(); err != nil {
			database = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": database,
	})
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	resp, err := rt.chat.Chat(r.Context(), req)
	if rt.metrics != nil {
		rt.metrics.RecordChat(serviceName, err)
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query      string   `json:"query"`
		MatchCount int      `json:"match_count"`
		TextWeight *float64 `json:"text_weight"`
		SearchType string   `json:"search_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	var (
		results []domain.SearchResult
		err     error
	)
	switch req.SearchType {
	case "semantic":
		results, err = rt.retriever.SemanticSearch(r.Context(), req.Query, req.MatchCount)
	case "", "hybrid":
		weight := rt.cfg.SearchDefaultTextWeight
		if req.TextWeight != nil {
			weight = *req.TextWeight
		}
		results, err = rt.retriever.HybridSearch(r.Context(), req.Query, req.MatchCount, weight)
	case "project":
		results, err = rt.retriever.ProjectSearch(r.Context(), req.Query, req.MatchCount)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "search_type must be semantic, hybrid, or project"})
		return
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (rt *Router) handleRecentDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		limit = n
	}
	documentType := r.URL.Query().Get("document_type")

	results, err := rt.retriever.RecentDocuments(r.Context(), limit, documentType)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": results,
		"count":     len(results),
	})
}

func (rt *Router) handleBudgetVariance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var in finance.BudgetVarianceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.OriginalBudget <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "original_budget must be positive"})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordToolCall(serviceName, "budget_variance")
	}
	writeJSON(w, http.StatusOK, finance.BudgetVariance(in))
}

func (rt *Router) handleDelayCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var in finance.DelayImpactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.DelayDays < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delay_days must not be negative"})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordToolCall(serviceName, "delay_cost")
	}
	writeJSON(w, http.StatusOK, finance.DelayImpact(in))
}

func (rt *Router) handleCostProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var in finance.ProjectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.OriginalBudget <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "original_budget must be positive"})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordToolCall(serviceName, "cost_projection")
	}
	writeJSON(w, http.StatusOK, finance.ProjectFinalCost(in))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
