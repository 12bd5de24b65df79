// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("DATABASE_TYPE", "postgres")
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	os.Setenv("TOKEN_TTL", "2h")
	os.Setenv("DEBUG", "yes")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h TTL, got %v", cfg.TokenTTL)
	}
	if !cfg.Debug {
		t.Error("expected DEBUG=yes to enable debug")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("TIME_ZONE", "Europe/Paris")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-jwt-secret", "s1", "-tz", "UTC"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.TimeZone != "UTC" {
		t.Errorf("CLI should override env: expected UTC, got %s", cfg.TimeZone)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-d", "file:test.db", "-jwt-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.TimeZone != "Africa/Kinshasa" {
		t.Errorf("expected default zone, got %s", cfg.TimeZone)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.TokenTTL)
	}
	if cfg.CloseSweep != "" {
		t.Errorf("sweep should be disabled by default, got %q", cfg.CloseSweep)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected wildcard origin, got %v", cfg.CORSOrigins)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", nil, []string{"-jwt-secret", "s"}},
		{"missing secret", nil, []string{"-d", "file:test.db"}},
		{"bad port", map[string]string{"PORT": "abc"}, []string{"-d", "x", "-jwt-secret", "s"}},
		{"bad database type", nil, []string{"-d", "x", "-t", "mysql", "-jwt-secret", "s"}},
		{"bad ttl", map[string]string{"TOKEN_TTL": "forever"}, []string{"-d", "x", "-jwt-secret", "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			defer os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigLocation(t *testing.T) {
	loc, err := Config{}.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("empty zone should be UTC, got %v %v", loc, err)
	}
	if _, err := (Config{TimeZone: "Not/AZone"}).Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}
