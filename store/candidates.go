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

const candidateColumns = `id, election_id, name, bio, position, photo_key, created_at`

func scanCandidate(row scanner) (election.Candidate, error) {
	var c election.Candidate
	err := row.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Bio, &c.Position, &c.PhotoKey, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, election.ErrCandidateNotFound
	}
	if err != nil {
		return c, fmt.Errorf("failed to scan candidate: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (s *Store) CreateCandidate(ctx context.Context, c election.Candidate) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO candidate (id, election_id, name, bio, position, photo_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.ElectionID, c.Name, c.Bio, c.Position, c.PhotoKey, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (s *Store) GetCandidate(ctx context.Context, id string) (election.Candidate, error) {
	return scanCandidate(s.q.QueryRowContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate WHERE id = $1
	`, id))
}

// GetCandidateInElection only finds the candidate when it belongs to the
// given election.
func (s *Store) GetCandidateInElection(ctx context.Context, electionID, id string) (election.Candidate, error) {
	return scanCandidate(s.q.QueryRowContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate WHERE id = $1 AND election_id = $2
	`, id, electionID))
}

// ListCandidates returns an election's candidates in creation order.
func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]election.Candidate, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate WHERE election_id = $1
		ORDER BY created_at, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []election.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return out, nil
}

func (s *Store) SetCandidatePhoto(ctx context.Context, id, photoKey string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE candidate SET photo_key = $2 WHERE id = $1`, id, photoKey)
	if err != nil {
		return fmt.Errorf("failed to update candidate photo: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return election.ErrCandidateNotFound
	}
	return nil
}

// DeleteCandidate removes the candidate. Its votes become blank votes and a
// finalized win pointing at it is cleared.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `
		UPDATE election SET finalized_winner_id = NULL WHERE finalized_winner_id = $1
	`, id); err != nil {
		return fmt.Errorf("failed to clear finalized winner: %w", err)
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return election.ErrCandidateNotFound
	}
	return nil
}
