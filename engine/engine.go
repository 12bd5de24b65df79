// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
)

// Assets is the blob store holding candidate photos and voter import files.
type Assets interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Copy(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Actor is the authenticated institution account performing an operation.
type Actor struct {
	InstitutionID string
	Username      string
}

// Engine runs the election use cases on top of the store.
type Engine struct {
	store  *store.Store
	assets Assets
	clock  election.Clock
	loc    *time.Location
}

// New returns an Engine. loc is the zone used for datetimes without offset
// and for timeline buckets; nil means UTC.
func New(st *store.Store, assets Assets, clock election.Clock, loc *time.Location) *Engine {
	if clock == nil {
		clock = election.SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{store: st, assets: assets, clock: clock, loc: loc}
}

// Location is the configured election time zone.
func (e *Engine) Location() *time.Location { return e.loc }

// Now is the engine clock in UTC.
func (e *Engine) Now() time.Time { return e.clock.Now().UTC() }

// audit appends an entry through st. A failure rolls back only the entry and
// is logged; the caller's state change goes on.
func (e *Engine) audit(ctx context.Context, st *store.Store, a election.AuditEntry) {
	a.ID = auth.NewID()
	a.CreatedAt = e.Now()
	if a.Detail == nil {
		a.Detail = map[string]any{}
	}
	err := st.Savepoint(ctx, "audit_entry", func() error {
		return st.AppendAudit(ctx, a)
	})
	if err != nil {
		slog.Warn("audit write failed",
			"event", "audit_failed",
			"action", a.Action,
			"election_id", a.ElectionID,
			"error", err,
		)
	}
}

// ownedElection loads an election and checks it belongs to the actor.
func (e *Engine) ownedElection(ctx context.Context, actor Actor, id string) (election.Election, error) {
	el, err := e.store.GetElection(ctx, id)
	if err != nil {
		return el, wrap("failed to load election", err)
	}
	if el.InstitutionID != actor.InstitutionID {
		return el, election.ErrWrongInstitution
	}
	return el, nil
}

// wrap passes typed errors through and turns anything else into an internal
// error.
func wrap(msg string, err error) error {
	var typed *election.Error
	if errors.As(err, &typed) {
		return err
	}
	return election.Internal(msg, err)
}
