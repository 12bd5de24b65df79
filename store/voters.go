// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/scrutin/election"
)

const voterColumns = `id, institution_id, identifier, name, eligible, import_id, created_at`

func scanVoter(row scanner) (election.Voter, error) {
	var (
		v        election.Voter
		importID sql.NullString
	)
	err := row.Scan(&v.ID, &v.InstitutionID, &v.Identifier, &v.Name, &v.Eligible, &importID, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return v, election.ErrVoterNotFound
	}
	if err != nil {
		return v, fmt.Errorf("failed to scan voter: %w", err)
	}
	v.ImportID = fromNullString(importID)
	v.CreatedAt = v.CreatedAt.UTC()
	return v, nil
}

// CreateVoter inserts v. A second voter with the same identifier in the same
// institution yields election.ErrDuplicate.
func (s *Store) CreateVoter(ctx context.Context, v election.Voter) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO voter (id, institution_id, identifier, name, eligible, import_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.InstitutionID, v.Identifier, v.Name, v.Eligible, nullString(v.ImportID), v.CreatedAt.UTC())
	if IsUniqueViolation(err) {
		return election.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert voter: %w", err)
	}
	return nil
}

func (s *Store) GetVoter(ctx context.Context, id string) (election.Voter, error) {
	return scanVoter(s.q.QueryRowContext(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE id = $1
	`, id))
}

func (s *Store) FindVoter(ctx context.Context, institutionID, identifier string) (election.Voter, error) {
	return scanVoter(s.q.QueryRowContext(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE institution_id = $1 AND identifier = $2
	`, institutionID, identifier))
}

func (s *Store) ListVoters(ctx context.Context, institutionID string) ([]election.Voter, error) {
	return s.queryVoters(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE institution_id = $1 ORDER BY identifier
	`, institutionID)
}

// ListImportedVoters returns the voters created or last updated by an import.
func (s *Store) ListImportedVoters(ctx context.Context, importID string) ([]election.Voter, error) {
	return s.queryVoters(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE import_id = $1 ORDER BY identifier
	`, importID)
}

func (s *Store) queryVoters(ctx context.Context, query string, args ...any) ([]election.Voter, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	var out []election.Voter
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voters: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateVoter(ctx context.Context, v election.Voter) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE voter SET identifier = $2, name = $3, eligible = $4 WHERE id = $1
	`, v.ID, v.Identifier, v.Name, v.Eligible)
	if IsUniqueViolation(err) {
		return election.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update voter: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return election.ErrVoterNotFound
	}
	return nil
}

// DeleteVoter removes the voter and, by cascade, their votes.
func (s *Store) DeleteVoter(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM voter WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete voter: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return election.ErrVoterNotFound
	}
	return nil
}

// UpsertVoter creates the voter or updates name, eligibility and import of
// the existing one with the same identifier. It reports whether a row was
// created.
func (s *Store) UpsertVoter(ctx context.Context, v election.Voter) (bool, error) {
	var id string
	err := s.q.QueryRowContext(ctx, `
		SELECT id FROM voter WHERE institution_id = $1 AND identifier = $2
	`, v.InstitutionID, v.Identifier).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		if err := s.CreateVoter(ctx, v); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up voter: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		UPDATE voter SET name = $2, eligible = $3, import_id = $4 WHERE id = $1
	`, id, v.Name, v.Eligible, nullString(v.ImportID))
	if err != nil {
		return false, fmt.Errorf("failed to update voter: %w", err)
	}
	return false, nil
}

// CountVoters returns the total and eligible voter counts of an institution.
func (s *Store) CountVoters(ctx context.Context, institutionID string) (total, eligible int, err error) {
	err = s.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN eligible THEN 1 ELSE 0 END), 0)
		FROM voter WHERE institution_id = $1
	`, institutionID).Scan(&total, &eligible)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return total, eligible, nil
}
