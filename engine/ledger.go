// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
)

// CastVoteInput is one ballot. A nil, empty, "null" or "none" CandidateID
// is a blank vote.
type CastVoteInput struct {
	ElectionID  string
	VoterID     string
	CandidateID *string
}

// CastVote records a ballot. Checks run in order: election exists and is
// open, voter exists, candidate belongs to the election, voter has not voted.
// Eligibility is checked at voter login only.
func (e *Engine) CastVote(ctx context.Context, in CastVoteInput) (election.Vote, error) {
	if in.ElectionID == "" || in.VoterID == "" {
		return election.Vote{}, election.Validation("voter_id and election_id are required")
	}

	el, err := e.store.GetElection(ctx, in.ElectionID)
	if err != nil {
		return election.Vote{}, wrap("failed to load election", err)
	}
	if _, err := e.EnsureClosed(ctx, &el); err != nil {
		return election.Vote{}, err
	}
	if !el.IsOpen(e.Now()) {
		return election.Vote{}, election.ErrWindowClosed
	}

	voter, err := e.store.GetVoter(ctx, in.VoterID)
	if err != nil {
		return election.Vote{}, wrap("failed to load voter", err)
	}

	candidateID := normalizeCandidate(in.CandidateID)
	if candidateID != nil {
		if _, err := e.store.GetCandidateInElection(ctx, el.ID, *candidateID); err != nil {
			return election.Vote{}, wrap("failed to load candidate", err)
		}
	}

	vote := election.Vote{
		ID:          auth.NewID(),
		ElectionID:  el.ID,
		VoterID:     voter.ID,
		CandidateID: candidateID,
		CreatedAt:   e.Now(),
	}
	err = e.store.InTx(ctx, func(tx *store.Store) error {
		voted, err := tx.HasVote(ctx, el.ID, voter.ID)
		if err != nil {
			return err
		}
		if voted {
			return election.ErrAlreadyVoted
		}
		// A concurrent cast that passed the check above fails here on the
		// (election, voter) constraint.
		if err := tx.InsertVote(ctx, vote); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionVoteCast,
			Actor:         voter.Identifier,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail: map[string]any{
				"candidate_id": candidateID,
				"election_id":  el.ID,
			},
		})
		return nil
	})
	if err != nil {
		return election.Vote{}, wrap("failed to record vote", err)
	}

	slog.Info("vote cast", "event", "vote_cast", "election_id", el.ID, "blank", candidateID == nil)
	return vote, nil
}

func normalizeCandidate(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	switch strings.ToLower(v) {
	case "", "null", "none":
		return nil
	}
	return &v
}

// HasVoted reports whether the voter has a ballot in the election.
func (e *Engine) HasVoted(ctx context.Context, voterID, electionID string) (bool, error) {
	if voterID == "" || electionID == "" {
		return false, election.Validation("voter_id and election_id are required")
	}
	if _, err := e.store.GetVoter(ctx, voterID); err != nil {
		return false, wrap("failed to load voter", err)
	}
	if _, err := e.store.GetElection(ctx, electionID); err != nil {
		return false, wrap("failed to load election", err)
	}
	voted, err := e.store.HasVote(ctx, electionID, voterID)
	if err != nil {
		return false, wrap("failed to check vote", err)
	}
	return voted, nil
}

// VoterLogin identifies a voter of an institution. Ineligible voters are
// refused here.
func (e *Engine) VoterLogin(ctx context.Context, institutionID, identifier string) (election.Voter, error) {
	identifier = strings.TrimSpace(identifier)
	if institutionID == "" || identifier == "" {
		return election.Voter{}, election.Validation("institution_id and identifier are required")
	}
	voter, err := e.store.FindVoter(ctx, institutionID, identifier)
	if err != nil {
		return voter, wrap("failed to load voter", err)
	}
	if !voter.Eligible {
		return voter, election.ErrNotEligible
	}
	return voter, nil
}
