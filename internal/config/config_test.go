package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LLM_PROVIDER", "OPENAI_MODEL", "LLM_MAX_ATTEMPTS", "SESSION_TTL", "CORS_ALLOWED_ORIGINS", "SESSION_BACKEND"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "openai" || cfg.OpenAIModel != "gpt-4" {
		t.Fatalf("expected openai gpt-4 defaults, got %s %s", cfg.LLMProvider, cfg.OpenAIModel)
	}
	if cfg.LLMMaxAttempts != 3 || cfg.LLMRetryBaseDelay != time.Second {
		t.Fatalf("expected 3 attempts at 1s base delay, got %d %s", cfg.LLMMaxAttempts, cfg.LLMRetryBaseDelay)
	}
	if cfg.LLMMaxTokens != 600 || cfg.LLMTemperature != 0.8 {
		t.Fatalf("unexpected completion defaults %d %v", cfg.LLMMaxTokens, cfg.LLMTemperature)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.SessionBackend != "memory" {
		t.Fatalf("expected memory session backend, got %s", cfg.SessionBackend)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config reported as production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("LLM_TEMPERATURE", "0.3")
	t.Setenv("LLM_RETRY_BASE_DELAY", "250ms")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("USE_VALUE_PROPOSITIONS", "false")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected normalized provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMTemperature != 0.3 {
		t.Fatalf("expected temperature override, got %v", cfg.LLMTemperature)
	}
	if cfg.LLMRetryBaseDelay != 250*time.Millisecond {
		t.Fatalf("expected retry delay override, got %s", cfg.LLMRetryBaseDelay)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected ttl override, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.UseValuePropositions {
		t.Fatalf("expected value propositions disabled")
	}
	if cfg.RateLimitBurst != 10 {
		t.Fatalf("expected invalid burst to fall back to default, got %d", cfg.RateLimitBurst)
	}
}
