// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
)

// VoterInput creates a voter. A nil Eligible means eligible.
type VoterInput struct {
	Identifier string
	Name       string
	Eligible   *bool
}

// VoterPatch changes only the non-nil fields.
type VoterPatch struct {
	Identifier *string
	Name       *string
	Eligible   *bool
}

var errVoterExists = election.Conflict("a voter with this identifier already exists")

func (e *Engine) AddVoter(ctx context.Context, actor Actor, in VoterInput) (election.Voter, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" {
		return election.Voter{}, election.Validation("identifier is required")
	}
	v := election.Voter{
		ID:            auth.NewID(),
		InstitutionID: actor.InstitutionID,
		Identifier:    identifier,
		Name:          strings.TrimSpace(in.Name),
		Eligible:      in.Eligible == nil || *in.Eligible,
		CreatedAt:     e.Now(),
	}

	err := e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateVoter(ctx, v); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionVoterAdded,
			Actor:         actor.Username,
			InstitutionID: actor.InstitutionID,
			Detail:        map[string]any{"institution_id": actor.InstitutionID, "voter_id": v.ID, "identifier": v.Identifier},
		})
		return nil
	})
	if errors.Is(err, election.ErrDuplicate) {
		return election.Voter{}, errVoterExists
	}
	if err != nil {
		return election.Voter{}, wrap("failed to create voter", err)
	}
	return v, nil
}

func (e *Engine) Voters(ctx context.Context, actor Actor) ([]election.Voter, error) {
	voters, err := e.store.ListVoters(ctx, actor.InstitutionID)
	if err != nil {
		return nil, wrap("failed to list voters", err)
	}
	return voters, nil
}

func (e *Engine) ownedVoter(ctx context.Context, actor Actor, id string) (election.Voter, error) {
	v, err := e.store.GetVoter(ctx, id)
	if err != nil {
		return v, wrap("failed to load voter", err)
	}
	if v.InstitutionID != actor.InstitutionID {
		return v, election.ErrWrongInstitution
	}
	return v, nil
}

func (e *Engine) UpdateVoter(ctx context.Context, actor Actor, id string, p VoterPatch) (election.Voter, error) {
	v, err := e.ownedVoter(ctx, actor, id)
	if err != nil {
		return v, err
	}
	if p.Identifier != nil {
		identifier := strings.TrimSpace(*p.Identifier)
		if identifier == "" {
			return v, election.Validation("identifier cannot be empty")
		}
		v.Identifier = identifier
	}
	if p.Name != nil {
		v.Name = strings.TrimSpace(*p.Name)
	}
	if p.Eligible != nil {
		v.Eligible = *p.Eligible
	}

	err = e.store.UpdateVoter(ctx, v)
	if errors.Is(err, election.ErrDuplicate) {
		return v, errVoterExists
	}
	if err != nil {
		return v, wrap("failed to update voter", err)
	}
	return v, nil
}

// DeleteVoter removes the voter and their votes.
func (e *Engine) DeleteVoter(ctx context.Context, actor Actor, id string) error {
	v, err := e.ownedVoter(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := e.store.DeleteVoter(ctx, v.ID); err != nil {
		return wrap("failed to delete voter", err)
	}
	return nil
}

// VotersSummary counts an institution's voters. LastImport is the latest
// voters_imported audit entry, if any.
type VotersSummary struct {
	Total      int
	Eligible   int
	LastImport *election.AuditEntry
}

func (e *Engine) VotersSummary(ctx context.Context, actor Actor) (VotersSummary, error) {
	total, eligible, err := e.store.CountVoters(ctx, actor.InstitutionID)
	if err != nil {
		return VotersSummary{}, wrap("failed to count voters", err)
	}
	last, err := e.store.LatestAudit(ctx, election.ActionVotersImported, actor.InstitutionID)
	if err != nil {
		return VotersSummary{}, wrap("failed to load last import", err)
	}
	return VotersSummary{Total: total, Eligible: eligible, LastImport: last}, nil
}
