// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/danielhkuo/scrutin/election"
)

// Results is the tally of an election and what it means under its scrutin.
type Results struct {
	Election   election.Election
	Tally      election.Tally
	Resolution election.Resolution
}

func (e *Engine) Results(ctx context.Context, electionID string) (Results, error) {
	el, err := e.store.GetElection(ctx, electionID)
	if err != nil {
		return Results{}, wrap("failed to load election", err)
	}
	if _, err := e.EnsureClosed(ctx, &el); err != nil {
		return Results{}, err
	}
	t, err := e.tally(ctx, el)
	if err != nil {
		return Results{}, err
	}
	return Results{Election: el, Tally: t, Resolution: election.Resolve(el, t)}, nil
}

func (e *Engine) tally(ctx context.Context, el election.Election) (election.Tally, error) {
	candidates, err := e.store.ListCandidates(ctx, el.ID)
	if err != nil {
		return election.Tally{}, wrap("failed to load candidates", err)
	}
	counts, blank, err := e.store.CountVotes(ctx, el.ID)
	if err != nil {
		return election.Tally{}, wrap("failed to count votes", err)
	}
	_, eligible, err := e.store.CountVoters(ctx, el.InstitutionID)
	if err != nil {
		return election.Tally{}, wrap("failed to count voters", err)
	}
	return election.ComputeTally(candidates, counts, blank, eligible), nil
}

// Timeline buckets the election's votes by minute or hour in the engine's
// zone. from and to are inclusive.
func (e *Engine) Timeline(ctx context.Context, electionID string, unit election.Unit, from, to optional.Option[time.Time]) ([]election.Bucket, error) {
	if _, err := e.store.GetElection(ctx, electionID); err != nil {
		return nil, wrap("failed to load election", err)
	}
	votes, err := e.store.ListVotes(ctx, electionID)
	if err != nil {
		return nil, wrap("failed to load votes", err)
	}
	return election.BuildTimeline(votes, unit, from, to, e.loc), nil
}
