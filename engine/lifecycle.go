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

// CreateElectionInput holds a new election. Nil thresholds take the
// defaults; an empty scrutin type means single round. Start and End are
// ignored unless OpenImmediately is set.
type CreateElectionInput struct {
	Title             string
	Description       string
	ScrutinType       election.ScrutinType
	MajorityThreshold *float64
	AdvanceThreshold  *float64
	Start             optional.Option[time.Time]
	End               optional.Option[time.Time]
	OpenImmediately   bool
}

// CandidateView is a candidate with its current vote count.
type CandidateView struct {
	election.Candidate
	VoteCount int
}

// ElectionView is an election as shown to clients.
type ElectionView struct {
	election.Election
	IsOpen          bool
	VotedVoters     int
	Candidates      []CandidateView
	FinalizedWinner *election.Candidate
}

func (e *Engine) CreateElection(ctx context.Context, actor Actor, in CreateElectionInput) (election.Election, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return election.Election{}, election.Validation("title is required")
	}
	scrutin := in.ScrutinType
	if scrutin == "" {
		scrutin = election.SingleRound
	}
	if !scrutin.Valid() {
		return election.Election{}, election.Validation("unknown scrutin type %q", scrutin)
	}
	majority, err := threshold(in.MajorityThreshold, election.DefaultMajorityThreshold, "majority_threshold")
	if err != nil {
		return election.Election{}, err
	}
	advance, err := threshold(in.AdvanceThreshold, election.DefaultAdvanceThreshold, "advance_threshold")
	if err != nil {
		return election.Election{}, err
	}

	now := e.Now()
	start, end := optional.None[time.Time](), optional.None[time.Time]()
	if in.OpenImmediately {
		start, end = in.Start, in.End
		if start.IsNone() {
			start = optional.Some(now)
		}
		if err := election.ValidWindow(start, end); err != nil {
			return election.Election{}, err
		}
	}

	el := election.Election{
		ID:                auth.NewID(),
		InstitutionID:     actor.InstitutionID,
		Title:             title,
		Description:       strings.TrimSpace(in.Description),
		ScrutinType:       scrutin,
		MajorityThreshold: majority,
		AdvanceThreshold:  advance,
		CurrentRound:      1,
		Start:             start,
		End:               end,
		CreatedAt:         now,
	}
	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateElection(ctx, el); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionElectionCreated,
			Actor:         actor.Username,
			InstitutionID: actor.InstitutionID,
			ElectionID:    el.ID,
			Detail:        map[string]any{"election_id": el.ID, "title": el.Title},
		})
		return nil
	})
	if err != nil {
		return election.Election{}, wrap("failed to create election", err)
	}
	slog.Info("election created", "event", "election_created", "election_id", el.ID, "scrutin", string(el.ScrutinType))
	return el, nil
}

func threshold(v *float64, def float64, field string) (float64, error) {
	if v == nil {
		return def, nil
	}
	if *v <= 0 || *v > 100 {
		return 0, election.Validation("%s must be greater than 0 and at most 100", field)
	}
	return *v, nil
}

// Election returns the election with its candidates, vote counts and
// openness, closing it first when its end has passed.
func (e *Engine) Election(ctx context.Context, id string) (ElectionView, error) {
	el, err := e.store.GetElection(ctx, id)
	if err != nil {
		return ElectionView{}, wrap("failed to load election", err)
	}
	return e.view(ctx, el, true)
}

// Elections lists an institution's elections, newest first.
func (e *Engine) Elections(ctx context.Context, institutionID string) ([]ElectionView, error) {
	list, err := e.store.ListElections(ctx, institutionID)
	if err != nil {
		return nil, wrap("failed to list elections", err)
	}
	out := make([]ElectionView, 0, len(list))
	for _, el := range list {
		v, err := e.view(ctx, el, false)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *Engine) view(ctx context.Context, el election.Election, full bool) (ElectionView, error) {
	if _, err := e.EnsureClosed(ctx, &el); err != nil {
		return ElectionView{}, err
	}
	v := ElectionView{Election: el, IsOpen: el.IsOpen(e.Now())}

	voted, err := e.store.CountVotedVoters(ctx, el.ID)
	if err != nil {
		return v, wrap("failed to count voters", err)
	}
	v.VotedVoters = voted
	if !full {
		return v, nil
	}

	candidates, err := e.store.ListCandidates(ctx, el.ID)
	if err != nil {
		return v, wrap("failed to load candidates", err)
	}
	counts, _, err := e.store.CountVotes(ctx, el.ID)
	if err != nil {
		return v, wrap("failed to count votes", err)
	}
	v.Candidates = make([]CandidateView, 0, len(candidates))
	for _, c := range candidates {
		v.Candidates = append(v.Candidates, CandidateView{Candidate: c, VoteCount: counts[c.ID]})
		if el.FinalizedWinnerID != nil && *el.FinalizedWinnerID == c.ID {
			winner := c
			v.FinalizedWinner = &winner
		}
	}
	return v, nil
}

// OpenElection sets the start to now when none is set and openNow is true.
// It reports whether the election was opened; with openNow false the window
// is left as is and only the request is audited. A closed election cannot be
// reopened.
func (e *Engine) OpenElection(ctx context.Context, actor Actor, id string, openNow bool) (election.Election, bool, error) {
	el, err := e.ownedElection(ctx, actor, id)
	if err != nil {
		return el, false, err
	}
	if _, err := e.EnsureClosed(ctx, &el); err != nil {
		return el, false, err
	}
	if el.Closed {
		return el, false, election.ErrElectionClosed
	}

	setStart := openNow && el.Start.IsNone()
	if setStart {
		el.Start = optional.Some(e.Now())
		if err := election.ValidWindow(el.Start, el.End); err != nil {
			return el, false, err
		}
	}
	opened := []string{}
	if openNow {
		opened = append(opened, el.ID)
	}
	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if setStart {
			if err := tx.SetWindow(ctx, el.ID, el.Start, el.End); err != nil {
				return err
			}
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionElectionOpened,
			Actor:         actor.Username,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail:        map[string]any{"election_id": el.ID, "opened": opened},
		})
		return nil
	})
	if err != nil {
		return el, false, wrap("failed to open election", err)
	}
	return el, openNow, nil
}

// CloseElection ends voting now. A later end is brought forward; an earlier
// one is kept.
func (e *Engine) CloseElection(ctx context.Context, actor Actor, id string) (election.Election, error) {
	el, err := e.ownedElection(ctx, actor, id)
	if err != nil {
		return el, err
	}

	now := e.Now()
	if !el.EndReached(now) {
		el.End = optional.Some(now)
		// a start that never came is dropped so the window stays valid
		if s, err := el.Start.Take(); err == nil && !s.Before(now) {
			el.Start = optional.None[time.Time]()
		}
		if err := e.store.SetWindow(ctx, el.ID, el.Start, el.End); err != nil {
			return el, wrap("failed to close election", err)
		}
	}
	if err := e.closeElection(ctx, &el, actor.Username); err != nil {
		return el, err
	}
	return el, nil
}

// DeleteElection removes the election and its candidates. Votes stay in the
// ledger without an election.
func (e *Engine) DeleteElection(ctx context.Context, actor Actor, id string) error {
	el, err := e.ownedElection(ctx, actor, id)
	if err != nil {
		return err
	}
	candidates, err := e.store.ListCandidates(ctx, el.ID)
	if err != nil {
		return wrap("failed to load candidates", err)
	}

	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.DeleteElection(ctx, el.ID); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionElectionDeleted,
			Actor:         actor.Username,
			InstitutionID: el.InstitutionID,
			ElectionID:    el.ID,
			Detail:        map[string]any{"election_id": el.ID, "title": el.Title},
		})
		return nil
	})
	if err != nil {
		return wrap("failed to delete election", err)
	}

	for _, c := range candidates {
		e.dropPhoto(ctx, c)
	}
	return nil
}
