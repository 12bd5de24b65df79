// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/moznion/go-optional"

	"github.com/danielhkuo/scrutin/election"
)

const electionColumns = `id, institution_id, title, description, scrutin_type, majority_threshold,
	advance_threshold, current_round, starts_at, ends_at, closed, finalized_winner_id, created_at`

func scanElection(row scanner) (election.Election, error) {
	var (
		e          election.Election
		scrutin    string
		start, end sql.NullTime
		winner     sql.NullString
	)
	err := row.Scan(&e.ID, &e.InstitutionID, &e.Title, &e.Description, &scrutin, &e.MajorityThreshold,
		&e.AdvanceThreshold, &e.CurrentRound, &start, &end, &e.Closed, &winner, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return e, election.ErrElectionNotFound
	}
	if err != nil {
		return e, fmt.Errorf("failed to scan election: %w", err)
	}
	e.ScrutinType = election.ScrutinType(scrutin)
	e.Start = fromNullTime(start)
	e.End = fromNullTime(end)
	e.FinalizedWinnerID = fromNullString(winner)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (s *Store) CreateElection(ctx context.Context, e election.Election) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO election (id, institution_id, title, description, scrutin_type, majority_threshold,
			advance_threshold, current_round, starts_at, ends_at, closed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.InstitutionID, e.Title, e.Description, string(e.ScrutinType), e.MajorityThreshold,
		e.AdvanceThreshold, e.CurrentRound, nullTime(e.Start), nullTime(e.End), e.Closed, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert election: %w", err)
	}
	return nil
}

func (s *Store) GetElection(ctx context.Context, id string) (election.Election, error) {
	return scanElection(s.q.QueryRowContext(ctx, `
		SELECT `+electionColumns+` FROM election WHERE id = $1
	`, id))
}

// ListElections returns an institution's elections, newest first.
func (s *Store) ListElections(ctx context.Context, institutionID string) ([]election.Election, error) {
	return s.queryElections(ctx, `
		SELECT `+electionColumns+` FROM election WHERE institution_id = $1
		ORDER BY created_at DESC, id
	`, institutionID)
}

// ListElectionsDue returns elections whose end has passed but which are not
// yet flagged closed.
func (s *Store) ListElectionsDue(ctx context.Context, now time.Time) ([]election.Election, error) {
	return s.queryElections(ctx, `
		SELECT `+electionColumns+` FROM election
		WHERE closed = FALSE AND ends_at IS NOT NULL AND ends_at <= $1
		ORDER BY ends_at, id
	`, now.UTC())
}

func (s *Store) queryElections(ctx context.Context, query string, args ...any) ([]election.Election, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	var out []election.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate elections: %w", err)
	}
	return out, nil
}

// SetWindow replaces the election's start and end.
func (s *Store) SetWindow(ctx context.Context, id string, start, end optional.Option[time.Time]) error {
	return s.execElection(ctx, `
		UPDATE election SET starts_at = $2, ends_at = $3 WHERE id = $1
	`, id, nullTime(start), nullTime(end))
}

// MarkClosed flips closed to true and reports whether it changed.
func (s *Store) MarkClosed(ctx context.Context, id string) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE election SET closed = TRUE WHERE id = $1 AND closed = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to close election: %w", err)
	}
	n, err := rowsAffected(res)
	return n > 0, err
}

// AdvanceInPlace moves an election to round 2, optionally with a new window.
func (s *Store) AdvanceInPlace(ctx context.Context, id string, start, end optional.Option[time.Time]) error {
	return s.execElection(ctx, `
		UPDATE election SET current_round = 2,
			starts_at = COALESCE($2, starts_at),
			ends_at = COALESCE($3, ends_at)
		WHERE id = $1
	`, id, nullTime(start), nullTime(end))
}

func (s *Store) SetFinalizedWinner(ctx context.Context, id string, candidateID *string) error {
	return s.execElection(ctx, `
		UPDATE election SET finalized_winner_id = $2 WHERE id = $1
	`, id, nullString(candidateID))
}

// DeleteElection removes the election and its candidates. Votes keep their
// row with a null election.
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	return s.execElection(ctx, `DELETE FROM election WHERE id = $1`, id)
}

func (s *Store) execElection(ctx context.Context, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update election: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return election.ErrElectionNotFound
	}
	return nil
}
