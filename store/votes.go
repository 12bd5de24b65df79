// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/scrutin/election"
)

// HasVote reports whether the voter has a vote recorded for the election.
func (s *Store) HasVote(ctx context.Context, electionID, voterID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote WHERE election_id = $1 AND voter_id = $2
		)
	`, electionID, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

// InsertVote records v. The (election, voter) uniqueness constraint is the
// final word on double voting: a violation is reported as
// election.ErrAlreadyVoted whichever driver raised it.
func (s *Store) InsertVote(ctx context.Context, v election.Vote) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO vote (id, election_id, voter_id, candidate_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.ElectionID, v.VoterID, nullString(v.CandidateID), v.CreatedAt.UTC())
	if IsUniqueViolation(err) {
		return election.ErrAlreadyVoted
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// CountVotes returns per-candidate counts and the number of blank votes.
func (s *Store) CountVotes(ctx context.Context, electionID string) (map[string]int, int, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT candidate_id, COUNT(*) FROM vote WHERE election_id = $1
		GROUP BY candidate_id
	`, electionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	blank := 0
	for rows.Next() {
		var (
			candidateID sql.NullString
			n           int
		)
		if err := rows.Scan(&candidateID, &n); err != nil {
			return nil, 0, fmt.Errorf("failed to scan vote count: %w", err)
		}
		if candidateID.Valid {
			counts[candidateID.String] = n
		} else {
			blank = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate vote counts: %w", err)
	}
	return counts, blank, nil
}

// CountVotedVoters is the number of distinct voters with a vote in the
// election.
func (s *Store) CountVotedVoters(ctx context.Context, electionID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT voter_id) FROM vote WHERE election_id = $1
	`, electionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return n, nil
}

// ListVotes returns an election's votes in chronological order.
func (s *Store) ListVotes(ctx context.Context, electionID string) ([]election.Vote, error) {
	return s.queryVotes(ctx, `
		SELECT id, COALESCE(election_id, ''), voter_id, candidate_id, created_at
		FROM vote WHERE election_id = $1 ORDER BY created_at, id
	`, electionID)
}

// ListVoterVotes returns every vote cast by the voter, across elections.
func (s *Store) ListVoterVotes(ctx context.Context, voterID string) ([]election.Vote, error) {
	return s.queryVotes(ctx, `
		SELECT id, COALESCE(election_id, ''), voter_id, candidate_id, created_at
		FROM vote WHERE voter_id = $1 ORDER BY created_at, id
	`, voterID)
}

func (s *Store) queryVotes(ctx context.Context, query string, args ...any) ([]election.Vote, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	var out []election.Vote
	for rows.Next() {
		var (
			v           election.Vote
			candidateID sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.VoterID, &candidateID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.CandidateID = fromNullString(candidateID)
		v.CreatedAt = v.CreatedAt.UTC()
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return out, nil
}

// CountCandidateVotes is the vote count of one candidate.
func (s *Store) CountCandidateVotes(ctx context.Context, candidateID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE candidate_id = $1
	`, candidateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count candidate votes: %w", err)
	}
	return n, nil
}
