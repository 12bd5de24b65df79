// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
)

// EnsureClosed flips the election to closed once its end has passed and
// records a single election_closed entry for it. It reports whether the
// election is past its end. el is updated in place.
func (e *Engine) EnsureClosed(ctx context.Context, el *election.Election) (bool, error) {
	if !el.EndReached(e.Now()) {
		return false, nil
	}
	if err := e.closeElection(ctx, el, ""); err != nil {
		return true, err
	}
	return true, nil
}

func (e *Engine) closeElection(ctx context.Context, el *election.Election, actor string) error {
	if el.Closed {
		logged, err := e.store.HasAudit(ctx, election.ActionElectionClosed, el.ID)
		if err == nil && logged {
			return nil
		}
	}

	if actor == "" {
		actor = e.ownerName(ctx, el.InstitutionID)
	}

	err := e.store.InTx(ctx, func(tx *store.Store) error {
		// The update runs first so a concurrent closer waits on the row
		// before it looks for the audit entry.
		changed, err := tx.MarkClosed(ctx, el.ID)
		if err != nil {
			return err
		}
		logged, err := tx.HasAudit(ctx, election.ActionElectionClosed, el.ID)
		if err != nil {
			slog.Warn("audit lookup failed", "event", "audit_failed", "election_id", el.ID, "error", err)
			return nil
		}
		if !logged {
			e.audit(ctx, tx, election.AuditEntry{
				Action:        election.ActionElectionClosed,
				Actor:         actor,
				InstitutionID: el.InstitutionID,
				ElectionID:    el.ID,
				Detail: map[string]any{
					"election_id": el.ID,
					"closed":      []string{el.ID},
				},
			})
		}
		if changed {
			slog.Info("election closed", "event", "election_closed", "election_id", el.ID)
		}
		return nil
	})
	if err != nil {
		return wrap("failed to close election", err)
	}
	el.Closed = true
	return nil
}

// ownerName is the username recorded for closes nobody requested. A failed
// lookup leaves the actor empty.
func (e *Engine) ownerName(ctx context.Context, institutionID string) string {
	inst, err := e.store.GetInstitution(ctx, institutionID)
	if err != nil {
		slog.Warn("institution lookup failed", "event", "audit_failed", "institution_id", institutionID, "error", err)
		return ""
	}
	return inst.Username
}

// SweepClosed closes every election whose end has passed and returns how many
// it closed.
func (e *Engine) SweepClosed(ctx context.Context) (int, error) {
	due, err := e.store.ListElectionsDue(ctx, e.Now())
	if err != nil {
		return 0, wrap("failed to list elections", err)
	}
	n := 0
	for i := range due {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		closed, err := e.EnsureClosed(ctx, &due[i])
		if err != nil {
			slog.Error("close sweep failed", "election_id", due[i].ID, "error", err)
			continue
		}
		if closed {
			n++
		}
	}
	return n, nil
}
