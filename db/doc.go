// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

postgres uses lib/pq. sqlite uses modernc.org/sqlite with foreign keys on, a
busy timeout, and one open connection so writes never contend.

# Schema Creation

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - institution: Accounts owning elections and voters
  - election: Window, scrutin type, thresholds, round, closed flag
  - candidate: Candidates per election
  - voter_import: Uploaded voter files
  - voter: Voters per institution, unique by identifier
  - vote: One vote per voter per election
  - audit_log: Append-only record of state changes

# Relationships

	institution 1──* election 1──* candidate
	institution 1──* voter 1──* vote
	institution 1──* voter_import 1──* voter
	election 1──* vote *──0..1 candidate

A vote outlives its election and candidate (ON DELETE SET NULL) but not its
voter (ON DELETE CASCADE).
*/
package db
