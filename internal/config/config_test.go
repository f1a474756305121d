package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must be valid: %v", err)
	}
	if cfg.RequestTimeout != 8*time.Second || cfg.RateLimitBackoff != 3*time.Second || cfg.PacingDelay != 50*time.Millisecond {
		t.Errorf("unexpected timing defaults %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nebula.yaml")
	content := `
endpoint: http://localhost:9999/task
tokens_file: /tmp/tokens.txt
rate_limit_backoff: 5s
pool_size: 4
progress_schedule: "@every 1m"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("NEBULA_POOL_SIZE", "8")
	t.Setenv("NEBULA_PACING_DELAY", "100ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Endpoint != "http://localhost:9999/task" || cfg.TokensFile != "/tmp/tokens.txt" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.RateLimitBackoff != 5*time.Second {
		t.Errorf("expected backoff 5s, got %v", cfg.RateLimitBackoff)
	}
	if cfg.PoolSize != 8 {
		t.Errorf("env must override file, got pool size %d", cfg.PoolSize)
	}
	if cfg.PacingDelay != 100*time.Millisecond {
		t.Errorf("expected pacing 100ms, got %v", cfg.PacingDelay)
	}
	if cfg.ExpiredFile != "expired_tokens.txt" {
		t.Errorf("unset values must keep defaults, got %q", cfg.ExpiredFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("NEBULA_REQUEST_TIMEOUT", "eight seconds")

	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative backoff", func(c *Config) { c.RateLimitBackoff = -time.Second }},
		{"zero pacing", func(c *Config) { c.PacingDelay = 0 }},
		{"zero modulus", func(c *Config) { c.Modulus = 0 }},
		{"pool too large", func(c *Config) { c.PoolSize = 17 }},
		{"pool too small", func(c *Config) { c.PoolSize = 0 }},
		{"negative reward", func(c *Config) { c.RewardPerSuccess = -1 }},
		{"bad schedule", func(c *Config) { c.ProgressSchedule = "sometimes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
