// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/testutil"
)

func TestCastVote(t *testing.T) {
	f := setup(t)
	electionID := testutil.CreateTestElection(t, f.db, f.actor.InstitutionID, testutil.ElectionOpts{Start: f.at(-time.Hour)})
	candidateID := testutil.AddTestCandidate(t, f.db, electionID, "Alice")
	voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, "S001", true)

	vote, err := f.eng.CastVote(f.ctx, CastVoteInput{
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: &candidateID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, vote.ID)
	require.NotNil(t, vote.CandidateID)
	assert.Equal(t, candidateID, *vote.CandidateID)

	voted, err := f.eng.HasVoted(f.ctx, voterID, electionID)
	require.NoError(t, err)
	assert.True(t, voted)

	n, err := f.eng.store.CountAudit(f.ctx, election.ActionVoteCast, electionID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCastVoteBlank(t *testing.T) {
	f := setup(t)
	electionID := testutil.CreateTestElection(t, f.db, f.actor.InstitutionID, testutil.ElectionOpts{Start: f.at(-time.Hour)})

	for i, raw := range []*string{nil, strp(""), strp("null"), strp("None")} {
		voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, string(rune('A'+i)), true)
		vote, err := f.eng.CastVote(f.ctx, CastVoteInput{ElectionID: electionID, VoterID: voterID, CandidateID: raw})
		require.NoError(t, err)
		assert.Nil(t, vote.CandidateID)
	}

	counts, blank, err := f.eng.store.CountVotes(f.ctx, electionID)
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.Equal(t, 4, blank)
}

func TestCastVoteRejections(t *testing.T) {
	f := setup(t)
	inst := f.actor.InstitutionID
	open := testutil.CreateTestElection(t, f.db, inst, testutil.ElectionOpts{Start: f.at(-time.Hour)})
	other := testutil.CreateTestElection(t, f.db, inst, testutil.ElectionOpts{Start: f.at(-time.Hour)})
	notStarted := testutil.CreateTestElection(t, f.db, inst, testutil.ElectionOpts{})
	endOnly := testutil.CreateTestElection(t, f.db, inst, testutil.ElectionOpts{End: f.at(time.Hour)})
	future := testutil.CreateTestElection(t, f.db, inst, testutil.ElectionOpts{Start: f.at(time.Hour)})
	ended := testutil.CreateTestElection(t, f.db, inst, testutil.ElectionOpts{Start: f.at(-2 * time.Hour), End: f.at(-time.Hour)})
	foreign := testutil.AddTestCandidate(t, f.db, other, "Elsewhere")
	voterID := testutil.CreateTestVoter(t, f.db, inst, "S001", true)

	tests := []struct {
		name     string
		in       CastVoteInput
		wantErr  error
		wantKind election.Kind
	}{
		{"missing voter", CastVoteInput{ElectionID: open}, nil, election.KindValidation},
		{"unknown election", CastVoteInput{ElectionID: "nope", VoterID: voterID}, election.ErrElectionNotFound, election.KindNotFound},
		{"no window", CastVoteInput{ElectionID: notStarted, VoterID: voterID}, election.ErrWindowClosed, election.KindConflict},
		{"end only", CastVoteInput{ElectionID: endOnly, VoterID: voterID}, election.ErrWindowClosed, election.KindConflict},
		{"not started", CastVoteInput{ElectionID: future, VoterID: voterID}, election.ErrWindowClosed, election.KindConflict},
		{"ended", CastVoteInput{ElectionID: ended, VoterID: voterID}, election.ErrWindowClosed, election.KindConflict},
		{"unknown voter", CastVoteInput{ElectionID: open, VoterID: "nope"}, election.ErrVoterNotFound, election.KindNotFound},
		{"candidate of another election", CastVoteInput{ElectionID: open, VoterID: voterID, CandidateID: &foreign}, election.ErrCandidateNotFound, election.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.CastVote(f.ctx, tt.in)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantKind, election.KindOf(err))
		})
	}

	assert.Equal(t, 0, testutil.CountRows(t, f.db, `SELECT COUNT(*) FROM vote`))
}

func TestCastVoteTwice(t *testing.T) {
	f := setup(t)
	electionID := testutil.CreateTestElection(t, f.db, f.actor.InstitutionID, testutil.ElectionOpts{Start: f.at(-time.Hour)})
	voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, "S001", true)

	f.vote(t, electionID, voterID, "")
	_, err := f.eng.CastVote(f.ctx, CastVoteInput{ElectionID: electionID, VoterID: voterID})
	assert.ErrorIs(t, err, election.ErrAlreadyVoted)
	assert.Equal(t, "voter already voted in this election", election.MessageOf(err))
}

func TestCastVoteIneligibleVoter(t *testing.T) {
	f := setup(t)
	electionID := testutil.CreateTestElection(t, f.db, f.actor.InstitutionID, testutil.ElectionOpts{Start: f.at(-time.Hour)})
	voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, "S001", false)

	// eligibility is enforced at login only
	_, err := f.eng.VoterLogin(f.ctx, f.actor.InstitutionID, "S001")
	assert.ErrorIs(t, err, election.ErrNotEligible)

	_, err = f.eng.CastVote(f.ctx, CastVoteInput{ElectionID: electionID, VoterID: voterID})
	assert.NoError(t, err)
}

func TestCastVoteConcurrent(t *testing.T) {
	f := setup(t)
	electionID := testutil.CreateTestElection(t, f.db, f.actor.InstitutionID, testutil.ElectionOpts{Start: f.at(-time.Hour)})
	candidateID := testutil.AddTestCandidate(t, f.db, electionID, "Alice")
	voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, "S001", true)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		dupes     atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.eng.CastVote(f.ctx, CastVoteInput{ElectionID: electionID, VoterID: voterID, CandidateID: &candidateID})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, election.ErrAlreadyVoted):
				dupes.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(attempts-1), dupes.Load())
	assert.Equal(t, 1, testutil.CountRows(t, f.db, `SELECT COUNT(*) FROM vote WHERE election_id = $1`, electionID))
}

func TestCastVoteSurvivesAuditFailure(t *testing.T) {
	f := setup(t)
	electionID := testutil.CreateTestElection(t, f.db, f.actor.InstitutionID, testutil.ElectionOpts{Start: f.at(-time.Hour)})
	voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, "S001", true)

	_, err := f.db.Exec(`DROP TABLE audit_log`)
	require.NoError(t, err)

	vote, err := f.eng.CastVote(f.ctx, CastVoteInput{ElectionID: electionID, VoterID: voterID})
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CountRows(t, f.db, `SELECT COUNT(*) FROM vote WHERE id = $1`, vote.ID))
}

func TestHasVotedUnknown(t *testing.T) {
	f := setup(t)
	electionID := testutil.CreateTestElection(t, f.db, f.actor.InstitutionID, testutil.ElectionOpts{})
	voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, "S001", true)

	voted, err := f.eng.HasVoted(f.ctx, voterID, electionID)
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = f.eng.HasVoted(f.ctx, "nope", electionID)
	assert.ErrorIs(t, err, election.ErrVoterNotFound)

	_, err = f.eng.HasVoted(f.ctx, voterID, "nope")
	assert.ErrorIs(t, err, election.ErrElectionNotFound)
}

func TestVoterLogin(t *testing.T) {
	f := setup(t)
	voterID := testutil.CreateTestVoter(t, f.db, f.actor.InstitutionID, "S001", true)

	v, err := f.eng.VoterLogin(f.ctx, f.actor.InstitutionID, " S001 ")
	require.NoError(t, err)
	assert.Equal(t, voterID, v.ID)

	_, err = f.eng.VoterLogin(f.ctx, f.actor.InstitutionID, "S999")
	assert.ErrorIs(t, err, election.ErrVoterNotFound)

	_, err = f.eng.VoterLogin(f.ctx, "", "S001")
	assert.Equal(t, election.KindValidation, election.KindOf(err))
}
