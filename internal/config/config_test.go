package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("expected default data dir, got %s", cfg.DataDir)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("expected default confidence threshold 0.5, got %f", cfg.ConfidenceThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/triage")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.7")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port override, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://localhost/triage" {
		t.Errorf("unexpected database url: %s", cfg.DatabaseURL)
	}
	if cfg.ConfidenceThreshold != 0.7 {
		t.Errorf("expected threshold 0.7, got %f", cfg.ConfidenceThreshold)
	}
	if !cfg.RedisTLS {
		t.Error("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
}
