// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/scrutin/election"
)

// AppendAudit writes one audit entry.
func (s *Store) AppendAudit(ctx context.Context, a election.AuditEntry) error {
	detail, err := json.Marshal(a.Detail)
	if err != nil {
		return fmt.Errorf("failed to encode audit detail: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, actor, institution_id, election_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Action, a.Actor, a.InstitutionID, a.ElectionID, string(detail), a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// HasAudit reports whether an entry with this action exists for the election.
func (s *Store) HasAudit(ctx context.Context, action, electionID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM audit_log WHERE action = $1 AND election_id = $2
		)
	`, action, electionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check audit log: %w", err)
	}
	return exists, nil
}

// CountAudit counts entries with this action for the election.
func (s *Store) CountAudit(ctx context.Context, action, electionID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM audit_log WHERE action = $1 AND election_id = $2
	`, action, electionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return n, nil
}

// LatestAudit returns the newest entry with this action for the institution,
// or nil when there is none.
func (s *Store) LatestAudit(ctx context.Context, action, institutionID string) (*election.AuditEntry, error) {
	var (
		a      election.AuditEntry
		detail string
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, action, actor, institution_id, election_id, detail, created_at
		FROM audit_log WHERE action = $1 AND institution_id = $2
		ORDER BY created_at DESC, id DESC LIMIT 1
	`, action, institutionID).Scan(&a.ID, &a.Action, &a.Actor, &a.InstitutionID, &a.ElectionID, &detail, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	if err := json.Unmarshal([]byte(detail), &a.Detail); err != nil {
		return nil, fmt.Errorf("failed to decode audit detail: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
