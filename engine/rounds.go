// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
)

// AdvanceInput configures the move to a second round. A nil
// CreateNewElection means true. Without QualifiedCandidateIDs the top two
// candidates by votes go through.
type AdvanceInput struct {
	QualifiedCandidateIDs []string
	CreateNewElection     *bool
	Start                 optional.Option[time.Time]
	End                   optional.Option[time.Time]
	Title                 string
	OpenImmediately       bool
}

// AdvanceResult describes the round-2 election. Created is false when the
// original election was advanced in place.
type AdvanceResult struct {
	Created    bool
	Election   election.Election
	Candidates []election.Candidate
}

// AdvanceToRound2 starts the runoff of a two-round election, either as a new
// election holding copies of the qualifiers or, when asked, by moving the
// existing election to round 2. Round-1 votes are never touched.
func (e *Engine) AdvanceToRound2(ctx context.Context, actor Actor, electionID string, in AdvanceInput) (AdvanceResult, error) {
	el, err := e.ownedElection(ctx, actor, electionID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if el.ScrutinType != election.TwoRound {
		return AdvanceResult{}, election.ErrNotTwoRound
	}
	if el.CurrentRound >= 2 {
		return AdvanceResult{}, election.ErrAlreadyRoundTwo
	}

	start := in.Start
	if in.OpenImmediately && start.IsNone() {
		start = optional.Some(e.Now())
	}

	if in.CreateNewElection != nil && !*in.CreateNewElection {
		return e.advanceInPlace(ctx, actor, el, start, in.End)
	}
	if err := election.ValidWindow(start, in.End); err != nil {
		return AdvanceResult{}, err
	}

	qualifiers, err := e.qualifiers(ctx, el, in.QualifiedCandidateIDs)
	if err != nil {
		return AdvanceResult{}, err
	}
	if len(qualifiers) == 0 {
		return AdvanceResult{}, election.Validation("no qualified candidates")
	}

	now := e.Now()
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Second round - " + el.Title
	}
	next := election.Election{
		ID:                auth.NewID(),
		InstitutionID:     el.InstitutionID,
		Title:             title,
		Description:       el.Description,
		ScrutinType:       el.ScrutinType,
		MajorityThreshold: el.MajorityThreshold,
		AdvanceThreshold:  el.AdvanceThreshold,
		CurrentRound:      2,
		Start:             start,
		End:               in.End,
		CreatedAt:         now,
	}

	copies := make([]election.Candidate, 0, len(qualifiers))
	for i, c := range qualifiers {
		copies = append(copies, election.Candidate{
			ID:         auth.NewID(),
			ElectionID: next.ID,
			Name:       c.Name,
			Bio:        c.Bio,
			Position:   c.Position,
			PhotoKey:   e.copyPhoto(ctx, c),
			// distinct instants keep the round-1 order
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}

	qualifiedIDs := make([]string, len(qualifiers))
	for i, c := range qualifiers {
		qualifiedIDs[i] = c.ID
	}

	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateElection(ctx, next); err != nil {
			return err
		}
		for _, c := range copies {
			if err := tx.CreateCandidate(ctx, c); err != nil {
				return err
			}
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionAdvanceToRound2,
			Actor:         actor.Username,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail: map[string]any{
				"election_id":     el.ID,
				"new_election_id": next.ID,
				"qualified":       qualifiedIDs,
			},
		})
		return nil
	})
	if err != nil {
		for _, c := range copies {
			if c.PhotoKey != "" {
				e.dropAsset(ctx, c.PhotoKey)
			}
		}
		return AdvanceResult{}, wrap("failed to create second round", err)
	}

	slog.Info("second round created",
		"event", "advance_to_round2",
		"election_id", el.ID,
		"new_election_id", next.ID,
		"candidates", len(copies),
	)
	return AdvanceResult{Created: true, Election: next, Candidates: copies}, nil
}

func (e *Engine) advanceInPlace(ctx context.Context, actor Actor, el election.Election, start, end optional.Option[time.Time]) (AdvanceResult, error) {
	effStart, effEnd := el.Start, el.End
	if start.IsSome() {
		effStart = start
	}
	if end.IsSome() {
		effEnd = end
	}
	if err := election.ValidWindow(effStart, effEnd); err != nil {
		return AdvanceResult{}, err
	}

	err := e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.AdvanceInPlace(ctx, el.ID, start, end); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionAdvanceToRound2,
			Actor:         actor.Username,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail:        map[string]any{"election_id": el.ID},
		})
		return nil
	})
	if err != nil {
		return AdvanceResult{}, wrap("failed to advance election", err)
	}

	el.CurrentRound = 2
	el.Start, el.End = effStart, effEnd
	slog.Info("election advanced in place", "event", "advance_to_round2", "election_id", el.ID)
	return AdvanceResult{Election: el}, nil
}

// qualifiers resolves the requested candidates, skipping unknown ids, or
// falls back to the top two by votes.
func (e *Engine) qualifiers(ctx context.Context, el election.Election, ids []string) ([]election.Candidate, error) {
	if len(ids) > 0 {
		var out []election.Candidate
		seen := map[string]bool{}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			c, err := e.store.GetCandidateInElection(ctx, el.ID, id)
			if err != nil {
				if election.KindOf(err) == election.KindNotFound {
					slog.Warn("qualified candidate not found", "election_id", el.ID, "candidate_id", id)
					continue
				}
				return nil, wrap("failed to load candidate", err)
			}
			out = append(out, c)
		}
		return out, nil
	}

	candidates, err := e.store.ListCandidates(ctx, el.ID)
	if err != nil {
		return nil, wrap("failed to load candidates", err)
	}
	t, err := e.tally(ctx, el)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]election.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	var out []election.Candidate
	for _, r := range election.TopByVotes(t.Candidates, 2) {
		out = append(out, byID[*r.CandidateID])
	}
	return out, nil
}

// copyPhoto duplicates the candidate's photo. A failed copy leaves the new
// candidate without a photo.
func (e *Engine) copyPhoto(ctx context.Context, c election.Candidate) string {
	if c.PhotoKey == "" {
		return ""
	}
	key, err := e.assets.Copy(ctx, c.PhotoKey)
	if err != nil {
		slog.Warn("failed to copy candidate photo", "candidate_id", c.ID, "photo_key", c.PhotoKey, "error", err)
		return ""
	}
	return key
}

// FinalizeWinner marks a candidate of the election as its winner. The tally
// is unaffected.
func (e *Engine) FinalizeWinner(ctx context.Context, actor Actor, electionID, candidateID string) (election.Candidate, error) {
	if strings.TrimSpace(candidateID) == "" {
		return election.Candidate{}, election.Validation("candidate_id required")
	}
	el, err := e.ownedElection(ctx, actor, electionID)
	if err != nil {
		return election.Candidate{}, err
	}
	c, err := e.store.GetCandidateInElection(ctx, el.ID, candidateID)
	if err != nil {
		return c, wrap("failed to load candidate", err)
	}

	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.SetFinalizedWinner(ctx, el.ID, &c.ID); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionFinalizeWinner,
			Actor:         actor.Username,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail:        map[string]any{"election_id": el.ID, "winner_id": c.ID},
		})
		return nil
	})
	if err != nil {
		return c, wrap("failed to finalize winner", err)
	}
	return c, nil
}
