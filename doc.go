// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the scrutin API server.

Scrutin runs institutional elections: institutions register candidates and
voters, open a voting window, and read tallies. Two-round elections either
declare a majority winner or advance the qualified candidates to a second
round.

# Starting the Server

The server reads flags, the environment and an optional .env file:

	DATABASE_URL=scrutin.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): institution token signing secret

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TIME_ZONE (-tz): zone for datetimes without offset (default: Africa/Kinshasa)
  - ASSET_DIR (-assets): candidate photos and import backups (default: ./media)
  - CORS_ORIGINS (-cors): comma separated origins (default: *)
  - TOKEN_TTL (-token-ttl): institution token lifetime (default: 24h)
  - CLOSE_SWEEP (-sweep): cron spec closing ended elections (default: off)
  - DEBUG (-debug): debug logging

# Architecture

  - election: domain types, temporal gate, tally and round resolution
  - engine: election operations over the store and asset store
  - store: SQL persistence
  - importer: voter file parsing
  - assets: flatfs-backed blob store
  - sweep: scheduled close sweep
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, auth, JSON helpers
  - models: Request/response types
  - auth: password hashing and institution tokens
  - db: connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
