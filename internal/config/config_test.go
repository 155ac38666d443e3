package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "DATABASE_URL", "AUDIT_DATABASE_URL", "AUDIT_ENABLED", "DEFAULT_LOOKAHEAD_DAYS", "HTTP_READ_TIMEOUT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected json log format, got %s", cfg.LogFormat)
	}
	if !cfg.AuditEnabled {
		t.Fatalf("expected audit enabled by default")
	}
	if cfg.DefaultLookaheadDays != 30 {
		t.Fatalf("expected default lookahead 30, got %d", cfg.DefaultLookaheadDays)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Fatalf("expected default read timeout, got %s", cfg.ReadTimeout)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config reported as production")
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("LOG_FORMAT", " TEXT ")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("AUDIT_DATABASE_URL", "")
	t.Setenv("AUDIT_ENABLED", "false")
	t.Setenv("DEFAULT_LOOKAHEAD_DAYS", "14")
	t.Setenv("MAX_RANGE_DAYS", "not-a-number")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "45s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://book.example.com, ,https://admin.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env, got %s", cfg.Env)
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("expected normalized text format, got %q", cfg.LogFormat)
	}
	if cfg.AuditDatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected audit db to fall back to DATABASE_URL, got %s", cfg.AuditDatabaseURL)
	}
	if cfg.AuditEnabled {
		t.Fatalf("expected audit disabled")
	}
	if cfg.DefaultLookaheadDays != 14 {
		t.Fatalf("expected lookahead override, got %d", cfg.DefaultLookaheadDays)
	}
	if cfg.MaxRangeDays != 366 {
		t.Fatalf("expected invalid int to keep default, got %d", cfg.MaxRangeDays)
	}
	if cfg.ShutdownTimeout != 45*time.Second {
		t.Fatalf("expected shutdown override, got %s", cfg.ShutdownTimeout)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected two trimmed origins, got %v", cfg.CORSAllowedOrigins)
	}
}
