// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string or sqlite file path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - JWTSecret: Secret signing institution tokens (required)
  - TokenTTL: Institution token lifetime (default: 24h)
  - TimeZone: Zone for datetimes without offset (default: Africa/Kinshasa)
  - AssetDir: Directory for photos and import files (default: ./media)
  - CORSOrigins: Allowed origins (default: *)
  - CloseSweep: Cron spec for the close sweep (default: disabled)
  - Debug: Debug logging

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type
	-tz         Time zone
	-assets     Asset directory
	-cors       Allowed origins, comma separated
	-sweep      Close sweep cron spec, e.g. "@every 1m"
	-token-ttl  Token lifetime, e.g. 12h
	-debug      Debug logging
	-jwt-secret Token signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	TIME_ZONE     → -tz
	ASSET_DIR     → -assets
	CORS_ORIGINS  → -cors
	CLOSE_SWEEP   → -sweep
	TOKEN_TTL     → -token-ttl
	DEBUG         → -debug
	JWT_SECRET    → -jwt-secret

CLI flags take precedence over environment variables. main loads a .env
file first when one exists.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is neither sqlite nor postgres
  - TOKEN_TTL is not a positive duration
  - JWT_SECRET is missing
*/
package cliparse
