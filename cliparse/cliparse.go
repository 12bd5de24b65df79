// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	JWTSecret    string
	TokenTTL     time.Duration
	TimeZone     string
	AssetDir     string
	CORSOrigins  []string
	CloseSweep   string
	Debug        bool
}

// Location loads the configured zone used for datetimes without offset and
// for timeline buckets.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins, ttl string

	fs := flag.NewFlagSet("scrutin", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.TimeZone, "tz", "", "Time zone for datetimes without offset")
	fs.StringVar(&cfg.AssetDir, "assets", "", "Directory for uploaded files")
	fs.StringVar(&origins, "cors", "", "Comma separated allowed origins")
	fs.StringVar(&cfg.CloseSweep, "sweep", "", "Cron spec for the close sweep (empty disables)")
	fs.StringVar(&ttl, "token-ttl", "", "Institution token lifetime")
	fs.BoolVar(&cfg.Debug, "debug", false, "Debug logging")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Token signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	cfg.TimeZone = firstNonEmpty(cfg.TimeZone, os.Getenv("TIME_ZONE"), "Africa/Kinshasa")
	cfg.AssetDir = firstNonEmpty(cfg.AssetDir, os.Getenv("ASSET_DIR"), "./media")
	cfg.CloseSweep = firstNonEmpty(cfg.CloseSweep, os.Getenv("CLOSE_SWEEP"))
	cfg.CORSOrigins = splitList(firstNonEmpty(origins, os.Getenv("CORS_ORIGINS"), "*"))
	if !cfg.Debug {
		cfg.Debug = envBool("DEBUG", false)
	}

	ttl = firstNonEmpty(ttl, os.Getenv("TOKEN_TTL"), "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil || d <= 0 {
		return Config{}, errors.New("invalid token TTL")
	}
	cfg.TokenTTL = d

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envBool(name string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
