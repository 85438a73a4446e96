package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelDir != "models" {
		t.Errorf("model dir: got %q, want %q", cfg.ModelDir, "models")
	}
	if cfg.APIPort != 8000 {
		t.Errorf("port: got %d, want 8000", cfg.APIPort)
	}
	if cfg.HistoryEnabled() {
		t.Error("history enabled without DATABASE_URL")
	}
	if cfg.IsProduction() {
		t.Error("default environment is production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MODEL_DIR", "/opt/segments/models")
	t.Setenv("API_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/segments")
	t.Setenv("HISTORY_RETENTION_DAYS", "7")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelDir != "/opt/segments/models" {
		t.Errorf("model dir: got %q", cfg.ModelDir)
	}
	if cfg.APIPort != 9090 {
		t.Errorf("port: got %d", cfg.APIPort)
	}
	if !cfg.HistoryEnabled() {
		t.Error("history not enabled with DATABASE_URL set")
	}
	if cfg.HistoryRetention != 7*24*time.Hour {
		t.Errorf("retention: got %v", cfg.HistoryRetention)
	}
	if !cfg.IsProduction() {
		t.Error("production environment not detected")
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://b.example" {
		t.Errorf("cors origins: got %v", cfg.CORSAllowOrigins)
	}
}

func TestEnvInt_Invalid(t *testing.T) {
	t.Setenv("API_PORT", "not-a-port")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != 8000 {
		t.Errorf("port: got %d, want fallback 8000", cfg.APIPort)
	}
}
