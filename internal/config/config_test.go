package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OPENROUTER_MODEL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.OpenRouterModel != "openai/gpt-3.5-turbo" {
		t.Fatalf("expected default model, got %s", cfg.OpenRouterModel)
	}
	if cfg.UseAIIntentResolver {
		t.Fatalf("expected AI intent resolver disabled by default")
	}
	if cfg.TranscriptTTL != 24*time.Hour {
		t.Fatalf("expected default transcript TTL, got %s", cfg.TranscriptTTL)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("TRANSCRIPT_TTL", "45m")
	t.Setenv("USE_AI_INTENT_RESOLVER", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("expected trimmed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.TranscriptTTL != 45*time.Minute {
		t.Fatalf("expected TTL override, got %s", cfg.TranscriptTTL)
	}
	if !cfg.UseAIIntentResolver {
		t.Fatalf("expected AI intent resolver enabled")
	}
}
