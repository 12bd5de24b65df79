// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	_, err := db.Exec(Schema(dbType))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Schema returns the DDL for dbType. The dialects differ only in the
// timestamp and JSON column types.
func Schema(dbType string) string {
	ts, js := "TIMESTAMPTZ", "JSONB"
	if dbType == TypeSQLite {
		// modernc only decodes columns declared TIMESTAMP into time.Time
		ts, js = "TIMESTAMP", "TEXT"
	}
	return strings.NewReplacer("{ts}", ts, "{json}", js).Replace(schema)
}

const schema = `
-- Institutions
CREATE TABLE IF NOT EXISTS institution (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at {ts} NOT NULL
);

-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institution(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    scrutin_type TEXT NOT NULL DEFAULT 'single_round' CHECK (scrutin_type IN ('single_round', 'two_round')),
    majority_threshold DOUBLE PRECISION NOT NULL DEFAULT 50,
    advance_threshold DOUBLE PRECISION NOT NULL DEFAULT 12.5,
    current_round INTEGER NOT NULL DEFAULT 1 CHECK (current_round IN (1, 2)),
    starts_at {ts},
    ends_at {ts},
    closed BOOLEAN NOT NULL DEFAULT FALSE,
    finalized_winner_id TEXT,
    created_at {ts} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_election_institution ON election(institution_id);
CREATE INDEX IF NOT EXISTS idx_election_ends_at ON election(ends_at);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    position TEXT NOT NULL DEFAULT '',
    photo_key TEXT NOT NULL DEFAULT '',
    created_at {ts} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_election ON candidate(election_id);

-- Voter import files
CREATE TABLE IF NOT EXISTS voter_import (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institution(id) ON DELETE CASCADE,
    filename TEXT NOT NULL,
    file_key TEXT NOT NULL DEFAULT '',
    uploaded_by TEXT NOT NULL DEFAULT '',
    uploaded_at {ts} NOT NULL,
    total_rows INTEGER NOT NULL DEFAULT 0,
    created INTEGER NOT NULL DEFAULT 0,
    updated INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_voter_import_institution ON voter_import(institution_id);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institution(id) ON DELETE CASCADE,
    identifier TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    eligible BOOLEAN NOT NULL DEFAULT TRUE,
    import_id TEXT REFERENCES voter_import(id) ON DELETE SET NULL,
    created_at {ts} NOT NULL,
    UNIQUE (institution_id, identifier)
);

CREATE INDEX IF NOT EXISTS idx_voter_import ON voter(import_id);

-- Votes: one per (election, voter); survives election and candidate deletion
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    election_id TEXT REFERENCES election(id) ON DELETE SET NULL,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    candidate_id TEXT REFERENCES candidate(id) ON DELETE SET NULL,
    created_at {ts} NOT NULL,
    UNIQUE (election_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_election ON vote(election_id);
CREATE INDEX IF NOT EXISTS idx_vote_voter ON vote(voter_id);

-- Audit log (append only)
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL,
    actor TEXT NOT NULL DEFAULT '',
    institution_id TEXT NOT NULL DEFAULT '',
    election_id TEXT NOT NULL DEFAULT '',
    detail {json} NOT NULL,
    created_at {ts} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_action_election ON audit_log(action, election_id);
CREATE INDEX IF NOT EXISTS idx_audit_action_institution ON audit_log(action, institution_id);
`
