package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	APIPort  string
	LogLevel string

	DatabaseURL      string
	DBMinConns       int
	DBMaxConns       int
	DBCommandTimeout int

	OpenAIAPIKey   string
	LLMBaseURL     string
	LLMModel       string
	EmbeddingModel string

	FallbackRAGURL string
	WebSearchURL   string

	NATSURL     string
	NATSSubject string

	SearchMaxMatchCount     int
	SearchDefaultMatchCount int
	SearchDefaultTextWeight float64
	RecentDocsDefaultLimit  int

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxConcurrent  int

	CORSAllowedOrigins []string

	MonitorMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		DatabaseURL:      mustEnv("DATABASE_URL", ""),
		DBMinConns:       mustEnvInt("DB_MIN_CONNS", 1),
		DBMaxConns:       mustEnvInt("DB_MAX_CONNS", 5),
		DBCommandTimeout: mustEnvInt("DB_COMMAND_TIMEOUT_SECONDS", 30),

		OpenAIAPIKey:   mustEnv("OPENAI_API_KEY", ""),
		LLMBaseURL:     mustEnv("LLM_BASE_URL", ""),
		LLMModel:       mustEnv("LLM_MODEL", "gpt-5"),
		EmbeddingModel: mustEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		FallbackRAGURL: mustEnv("FALLBACK_RAG_URL", "https://rag-agent-api-production.up.railway.app"),
		WebSearchURL:   mustEnv("WEB_SEARCH_URL", "https://api.duckduckgo.com"),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "retrieval.events"),

		SearchMaxMatchCount:     mustEnvInt("SEARCH_MAX_MATCH_COUNT", 50),
		SearchDefaultMatchCount: mustEnvInt("SEARCH_DEFAULT_MATCH_COUNT", 5),
		SearchDefaultTextWeight: mustEnvFloat("SEARCH_DEFAULT_TEXT_WEIGHT", 0.5),
		RecentDocsDefaultLimit:  mustEnvInt("RECENT_DOCS_DEFAULT_LIMIT", 10),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxConcurrent:  mustEnvInt("API_MAX_CONCURRENT", 64),

		CORSAllowedOrigins: mustEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		MonitorMetricsPort: mustEnv("MONITOR_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvList(key, fallback string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
