// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/scrutin/assets"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
	"github.com/danielhkuo/scrutin/testutil"
)

type fixture struct {
	eng   *Engine
	db    *sql.DB
	clock *election.FixedClock
	actor Actor
	ctx   context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	as, err := assets.Open(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)
	t.Cleanup(func() { as.Close() })

	clock := &election.FixedClock{T: time.Now().UTC()}
	instID, _ := testutil.CreateTestInstitution(t, conn, "Université de Kinshasa")

	return &fixture{
		eng:   New(store.New(conn), as, clock, time.UTC),
		db:    conn,
		clock: clock,
		actor: Actor{InstitutionID: instID, Username: "Université de Kinshasa-admin"},
		ctx:   context.Background(),
	}
}

func (f *fixture) at(d time.Duration) *time.Time {
	t := f.clock.T.Add(d)
	return &t
}

// vote casts through the engine and fails the test on error.
func (f *fixture) vote(t *testing.T, electionID, voterID, candidateID string) {
	t.Helper()
	in := CastVoteInput{ElectionID: electionID, VoterID: voterID}
	if candidateID != "" {
		in.CandidateID = &candidateID
	}
	_, err := f.eng.CastVote(f.ctx, in)
	require.NoError(t, err)
}

// votes casts n ballots for candidateID from fresh voters.
func (f *fixture) votes(t *testing.T, electionID, candidateID string, n int, prefix string) {
	t.Helper()
	for i := 0; i < n; i++ {
		voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, prefix+string(rune('a'+i/26))+string(rune('a'+i%26)), true)
		f.vote(t, electionID, voterID, candidateID)
	}
}

func strp(s string) *string { return &s }

// recordingAssets records deletes and can refuse them.
type recordingAssets struct {
	Assets
	deleted    []string
	failDelete bool
}

func (r *recordingAssets) Delete(ctx context.Context, key string) error {
	r.deleted = append(r.deleted, key)
	if r.failDelete {
		return errors.New("asset store unavailable")
	}
	return r.Assets.Delete(ctx, key)
}
