package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_DefaultsWithDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rcm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDev() {
		t.Errorf("expected development default, got %q", cfg.Env)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("expected default batch size 10, got %d", cfg.BatchSize)
	}
	if !cfg.AugmentEnabled {
		t.Error("expected augmentation enabled by default")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("expected DATABASE_URL error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rcm")
	t.Setenv("PORT", "9090")
	t.Setenv("BATCH_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("expected batch size 25, got %d", cfg.BatchSize)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Env: "development", BatchSize: 10, AugmentEnabled: true}

	tests := []struct {
		name     string
		mutate   func(*Config)
		fragment string
	}{
		{"development ok", func(c *Config) {}, ""},
		{"production needs jwt secret", func(c *Config) { c.Env = "production" }, "JWT_SECRET"},
		{"production needs password hash", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "x"
		}, "ADMIN_PASSWORD_HASH"},
		{"production augment needs api key", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "x"
			c.AdminPasswordHash = "y"
		}, "ANTHROPIC_API_KEY"},
		{"production complete", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "x"
			c.AdminPasswordHash = "y"
			c.AnthropicAPIKey = "z"
		}, ""},
		{"batch size must be positive", func(c *Config) { c.BatchSize = 0 }, "BATCH_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.fragment == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.fragment) {
				t.Errorf("expected error containing %q, got %v", tt.fragment, err)
			}
		})
	}
}
