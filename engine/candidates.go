// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/scrutin/assets"
	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
)

type CandidateInput struct {
	ElectionID string
	Name       string
	Bio        string
	Position   string
	Photo      []byte
}

func (e *Engine) AddCandidate(ctx context.Context, actor Actor, in CandidateInput) (election.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	if in.ElectionID == "" || name == "" {
		return election.Candidate{}, election.Validation("election and name are required")
	}
	el, err := e.ownedElection(ctx, actor, in.ElectionID)
	if err != nil {
		return election.Candidate{}, err
	}

	c := election.Candidate{
		ID:         auth.NewID(),
		ElectionID: el.ID,
		Name:       name,
		Bio:        strings.TrimSpace(in.Bio),
		Position:   strings.TrimSpace(in.Position),
		CreatedAt:  e.Now(),
	}
	if len(in.Photo) > 0 {
		key, err := e.assets.Put(ctx, in.Photo)
		if err != nil {
			return election.Candidate{}, election.Internal("failed to store photo", err)
		}
		c.PhotoKey = key
	}

	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateCandidate(ctx, c); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionCandidateAdded,
			Actor:         actor.Username,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail:        map[string]any{"election_id": el.ID, "candidate_id": c.ID, "name": c.Name},
		})
		return nil
	})
	if err != nil {
		e.dropPhoto(ctx, c)
		return election.Candidate{}, wrap("failed to create candidate", err)
	}
	return c, nil
}

func (e *Engine) Candidate(ctx context.Context, id string) (CandidateView, error) {
	c, err := e.store.GetCandidate(ctx, id)
	if err != nil {
		return CandidateView{}, wrap("failed to load candidate", err)
	}
	n, err := e.store.CountCandidateVotes(ctx, c.ID)
	if err != nil {
		return CandidateView{}, wrap("failed to count votes", err)
	}
	return CandidateView{Candidate: c, VoteCount: n}, nil
}

// Candidates lists an election's candidates in creation order.
func (e *Engine) Candidates(ctx context.Context, electionID string) ([]CandidateView, error) {
	if _, err := e.store.GetElection(ctx, electionID); err != nil {
		return nil, wrap("failed to load election", err)
	}
	candidates, err := e.store.ListCandidates(ctx, electionID)
	if err != nil {
		return nil, wrap("failed to load candidates", err)
	}
	counts, _, err := e.store.CountVotes(ctx, electionID)
	if err != nil {
		return nil, wrap("failed to count votes", err)
	}
	out := make([]CandidateView, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, CandidateView{Candidate: c, VoteCount: counts[c.ID]})
	}
	return out, nil
}

// DeleteCandidate removes a candidate. Its votes remain as blank votes.
func (e *Engine) DeleteCandidate(ctx context.Context, actor Actor, id string) error {
	c, err := e.store.GetCandidate(ctx, id)
	if err != nil {
		return wrap("failed to load candidate", err)
	}
	el, err := e.ownedElection(ctx, actor, c.ElectionID)
	if err != nil {
		return err
	}

	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.DeleteCandidate(ctx, c.ID); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionCandidateDeleted,
			Actor:         actor.Username,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail:        map[string]any{"election_id": el.ID, "candidate_id": c.ID},
		})
		return nil
	})
	if err != nil {
		return wrap("failed to delete candidate", err)
	}
	e.dropPhoto(ctx, c)
	return nil
}

// CandidatePhoto returns the photo bytes of a candidate.
func (e *Engine) CandidatePhoto(ctx context.Context, id string) ([]byte, error) {
	c, err := e.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, wrap("failed to load candidate", err)
	}
	if c.PhotoKey == "" {
		return nil, election.NotFound("candidate has no photo")
	}
	data, err := e.assets.Get(ctx, c.PhotoKey)
	if errors.Is(err, assets.ErrNotFound) {
		return nil, election.NotFound("candidate has no photo")
	}
	if err != nil {
		return nil, election.Internal("failed to read photo", err)
	}
	return data, nil
}

func (e *Engine) dropPhoto(ctx context.Context, c election.Candidate) {
	if c.PhotoKey == "" {
		return
	}
	if err := e.assets.Delete(ctx, c.PhotoKey); err != nil {
		slog.Warn("failed to delete candidate photo", "candidate_id", c.ID, "photo_key", c.PhotoKey, "error", err)
	}
}
