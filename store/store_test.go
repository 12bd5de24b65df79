// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/testutil"
)

func TestInsertVoteDuplicate(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()

	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")
	electionID := testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{})
	voterID := testutil.CreateTestVoter(t, conn, instID, "S001", true)

	v := election.Vote{ID: auth.NewID(), ElectionID: electionID, VoterID: voterID, CreatedAt: time.Now()}
	require.NoError(t, st.InsertVote(ctx, v))

	v.ID = auth.NewID()
	err := st.InsertVote(ctx, v)
	assert.ErrorIs(t, err, election.ErrAlreadyVoted)

	voted, err := st.HasVote(ctx, electionID, voterID)
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestSavepointKeepsOuterWrite(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()

	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")
	electionID := testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{})

	boom := errors.New("boom")
	err := st.InTx(ctx, func(tx *Store) error {
		if _, err := tx.MarkClosed(ctx, electionID); err != nil {
			return err
		}
		spErr := tx.Savepoint(ctx, "inner", func() error {
			if err := tx.AppendAudit(ctx, election.AuditEntry{ID: auth.NewID(), Action: "x", ElectionID: electionID, CreatedAt: time.Now()}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, spErr, boom)
		return nil
	})
	require.NoError(t, err)

	el, err := st.GetElection(ctx, electionID)
	require.NoError(t, err)
	assert.True(t, el.Closed)

	n, err := st.CountAudit(ctx, "x", electionID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInTxRollsBack(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()

	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")
	electionID := testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{})

	boom := errors.New("boom")
	err := st.InTx(ctx, func(tx *Store) error {
		if _, err := tx.MarkClosed(ctx, electionID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	el, err := st.GetElection(ctx, electionID)
	require.NoError(t, err)
	assert.False(t, el.Closed)
}

func TestElectionRoundTrip(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()
	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")

	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.FixedZone("WAT", 3600))
	e := election.Election{
		ID:                auth.NewID(),
		InstitutionID:     instID,
		Title:             "Rector",
		ScrutinType:       election.TwoRound,
		MajorityThreshold: 50,
		AdvanceThreshold:  12.5,
		CurrentRound:      1,
		Start:             optional.Some(start),
		End:               optional.None[time.Time](),
		CreatedAt:         time.Now(),
	}
	require.NoError(t, st.CreateElection(ctx, e))

	got, err := st.GetElection(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, election.TwoRound, got.ScrutinType)
	assert.Equal(t, 12.5, got.AdvanceThreshold)
	assert.True(t, got.Start.Unwrap().Equal(start))
	assert.Equal(t, time.UTC, got.Start.Unwrap().Location())
	assert.True(t, got.End.IsNone())
	assert.Nil(t, got.FinalizedWinnerID)

	_, err = st.GetElection(ctx, "missing")
	assert.ErrorIs(t, err, election.ErrElectionNotFound)
	assert.ErrorIs(t, st.SetFinalizedWinner(ctx, "missing", nil), election.ErrElectionNotFound)
}

func TestMarkClosedOnce(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()
	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")
	electionID := testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{})

	changed, err := st.MarkClosed(ctx, electionID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = st.MarkClosed(ctx, electionID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestListElectionsDue(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()
	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	due := testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{End: &past})
	testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{End: &future})
	testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{})

	list, err := st.ListElectionsDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, due, list[0].ID)
}

func TestCountVotes(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()
	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")
	electionID := testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{})
	a := testutil.AddTestCandidate(t, conn, electionID, "A")
	b := testutil.AddTestCandidate(t, conn, electionID, "B")

	for i, c := range []string{a, a, b, "", ""} {
		voterID := testutil.CreateTestVoter(t, conn, instID, string(rune('a'+i)), i != 4)
		testutil.CastTestVote(t, conn, electionID, voterID, c, time.Now())
	}

	counts, blank, err := st.CountVotes(ctx, electionID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a: 2, b: 1}, counts)
	assert.Equal(t, 2, blank)

	total, eligible, err := st.CountVoters(ctx, instID)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 4, eligible)

	n, err := st.CountVotedVoters(ctx, electionID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// deleting a candidate turns its votes blank
	require.NoError(t, st.DeleteCandidate(ctx, a))
	counts, blank, err = st.CountVotes(ctx, electionID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{b: 1}, counts)
	assert.Equal(t, 4, blank)
}

func TestUpsertVoter(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()
	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")

	v := election.Voter{ID: auth.NewID(), InstitutionID: instID, Identifier: "S001", Name: "A", Eligible: false, CreatedAt: time.Now()}
	created, err := st.UpsertVoter(ctx, v)
	require.NoError(t, err)
	assert.True(t, created)

	v.ID = auth.NewID()
	v.Name = "Alice"
	v.Eligible = true
	created, err = st.UpsertVoter(ctx, v)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := st.FindVoter(ctx, instID, "S001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.Eligible)

	assert.ErrorIs(t, st.CreateVoter(ctx, v), election.ErrDuplicate)
}

func TestImportedVotersWithVotes(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()
	instID, _ := testutil.CreateTestInstitution(t, conn, "Inst")
	electionID := testutil.CreateTestElection(t, conn, instID, testutil.ElectionOpts{})

	imp := election.VoterImport{ID: auth.NewID(), InstitutionID: instID, Filename: "v.csv", UploadedAt: time.Now()}
	require.NoError(t, st.CreateImport(ctx, imp))

	for _, ident := range []string{"c", "a", "b", "d"} {
		v := election.Voter{ID: auth.NewID(), InstitutionID: instID, Identifier: ident, Eligible: true, ImportID: &imp.ID, CreatedAt: time.Now()}
		_, err := st.UpsertVoter(ctx, v)
		require.NoError(t, err)
		if ident != "d" {
			testutil.CastTestVote(t, conn, electionID, v.ID, "", time.Now())
		}
	}

	sample, total, err := st.ImportedVotersWithVotes(ctx, imp.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"a", "b"}, sample)

	_, err = st.GetImport(ctx, "other", imp.ID)
	assert.ErrorIs(t, err, election.ErrImportNotFound)

	require.NoError(t, st.DeleteImport(ctx, imp.ID))
	assert.Equal(t, 0, testutil.CountRows(t, conn, `SELECT COUNT(*) FROM voter`))
	assert.Equal(t, 0, testutil.CountRows(t, conn, `SELECT COUNT(*) FROM vote`))
}

func TestLatestAudit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()

	got, err := st.LatestAudit(ctx, election.ActionVotersImported, "inst")
	require.NoError(t, err)
	assert.Nil(t, got)

	base := time.Now().UTC()
	for i := 1; i <= 2; i++ {
		require.NoError(t, st.AppendAudit(ctx, election.AuditEntry{
			ID:            auth.NewID(),
			Action:        election.ActionVotersImported,
			InstitutionID: "inst",
			Detail:        map[string]any{"created": i},
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err = st.LatestAudit(ctx, election.ActionVotersImported, "inst")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 2, got.Detail["created"])
}

func TestInstitutionLogin(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	ctx := context.Background()
	instID, _ := testutil.CreateTestInstitution(t, conn, "UNIKIN")

	byName, err := st.FindInstitutionByLogin(ctx, "unikin")
	require.NoError(t, err)
	assert.Equal(t, instID, byName.ID)

	byUsername, err := st.FindInstitutionByLogin(ctx, "UNIKIN-admin")
	require.NoError(t, err)
	assert.Equal(t, instID, byUsername.ID)

	_, err = st.FindInstitutionByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, election.ErrInstitutionNotFound)

	dup := election.Institution{ID: auth.NewID(), Username: "other", Email: "x@y.org", Name: "UNIKIN", PasswordHash: "h", CreatedAt: time.Now()}
	assert.ErrorIs(t, st.CreateInstitution(ctx, dup), election.ErrDuplicate)
}
