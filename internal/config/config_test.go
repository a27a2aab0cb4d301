package config

import "testing"

func TestLoadSearchDefaults(t *testing.T) {
	t.Setenv("SEARCH_MAX_MATCH_COUNT", "")
	t.Setenv("SEARCH_DEFAULT_MATCH_COUNT", "")
	t.Setenv("SEARCH_DEFAULT_TEXT_WEIGHT", "")
	t.Setenv("RECENT_DOCS_DEFAULT_LIMIT", "")

	cfg := Load()
	if cfg.SearchMaxMatchCount != 50 {
		t.Fatalf("expected default max match count 50, got %d", cfg.SearchMaxMatchCount)
	}
	if cfg.SearchDefaultMatchCount != 5 {
		t.Fatalf("expected default match count 5, got %d", cfg.SearchDefaultMatchCount)
	}
	if cfg.SearchDefaultTextWeight != 0.5 {
		t.Fatalf("expected default text weight 0.5, got %v", cfg.SearchDefaultTextWeight)
	}
	if cfg.RecentDocsDefaultLimit != 10 {
		t.Fatalf("expected default recent docs limit 10, got %d", cfg.RecentDocsDefaultLimit)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "12")
	t.Setenv("SEARCH_DEFAULT_TEXT_WEIGHT", "0.7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()
	if cfg.DBMaxConns != 12 {
		t.Fatalf("expected max conns 12, got %d", cfg.DBMaxConns)
	}
	if cfg.SearchDefaultTextWeight != 0.7 {
		t.Fatalf("expected text weight 0.7, got %v", cfg.SearchDefaultTextWeight)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DB_MIN_CONNS", "not-a-number")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.DBMinConns != 1 {
		t.Fatalf("expected fallback min conns 1, got %d", cfg.DBMinConns)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected fallback rps 20, got %v", cfg.APIRateLimitRPS)
	}
}
