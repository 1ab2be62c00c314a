package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/fintrack/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.StorageBackend != config.BackendPostgres || cfg.RedisEnabled {
		t.Fatalf("unexpected storage defaults: backend=%s redis=%v", cfg.StorageBackend, cfg.RedisEnabled)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/Sao_Paulo" {
		t.Fatalf("expected default Sao Paulo location, got %v (%v)", loc, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/fin.db")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("PROFILE_CACHE_TTL", "1m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageBackend != config.BackendSQLite || cfg.SQLitePath != "/tmp/fin.db" {
		t.Fatalf("expected sqlite overrides, got %s %s", cfg.StorageBackend, cfg.SQLitePath)
	}
	if !cfg.RedisEnabled || cfg.RedisURL != "redis://example" {
		t.Fatalf("expected redis overrides, got %v %s", cfg.RedisEnabled, cfg.RedisURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}
	if cfg.DatabaseTimeout != 45*time.Second || cfg.ProfileCacheTTL != time.Minute {
		t.Fatalf("expected duration overrides, got %s %s", cfg.DatabaseTimeout, cfg.ProfileCacheTTL)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HTTP_PORT=7070\nAMQP_EXCHANGE=from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write dotenv: %v", err)
	}
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AMQP_EXCHANGE", "from-env")
	// godotenv sets variables for the process; restore after the test.
	t.Setenv("HTTP_PORT", "")
	os.Unsetenv("HTTP_PORT")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.HTTPPort != "7070" {
		t.Fatalf("expected port from dotenv, got %s", cfg.HTTPPort)
	}
	if cfg.AMQPExchange != "from-env" {
		t.Fatalf("expected environment to win over dotenv, got %s", cfg.AMQPExchange)
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			StorageBackend: config.BackendSQLite,
			LogFormat:      "json",
			JWTSecret:      "s",
			Timezone:       "UTC",
			RateLimitRPS:   1,
			RateLimitBurst: 1,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"missing secret", func(c *config.Config) { c.JWTSecret = "" }},
		{"unknown backend", func(c *config.Config) { c.StorageBackend = "mongo" }},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
		{"bad timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
		{"zero rate", func(c *config.Config) { c.RateLimitRPS = 0 }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	for _, tt := range tests {
		c := valid()
		tt.mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}

	c := valid()
	c.JWTSecret = ""
	if err := c.Validate(); !errors.Is(err, config.ErrMissingJWTSecret) {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}
