// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/scrutin/models"
	"github.com/danielhkuo/scrutin/testutil"
)

// TestConcurrentCastSameVoter verifies that when one voter submits many
// ballots at once, exactly one is recorded and the rest are refused
func TestConcurrentCastSameVoter(t *testing.T) {
	env := newTestEnv(t)
	h := NewVoteHandler(env.eng)

	instID, _ := testutil.CreateTestInstitution(t, env.db, "UNIKIN")
	electionID := testutil.CreateOpenElection(t, env.db, instID)
	candidateID := testutil.AddTestCandidate(t, env.db, electionID, "Alice")
	voterID := testutil.CreateTestVoter(t, env.db, instID, "S001", true)

	const attempts = 10
	var created, refused atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := serve(h.CastVote, "POST", "/votes/cast_vote", models.CastVoteRequest{
				VoterID:     voterID,
				ElectionID:  electionID,
				CandidateID: &candidateID,
			}, "")
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusBadRequest:
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 recorded vote, got %d", created.Load())
	}
	if refused.Load() != attempts-1 {
		t.Errorf("Expected %d refusals, got %d", attempts-1, refused.Load())
	}
	if n := testutil.CountRows(t, env.db, `SELECT COUNT(*) FROM vote WHERE election_id = $1`, electionID); n != 1 {
		t.Errorf("Expected 1 vote in database, got %d", n)
	}
}

// TestConcurrentCastManyVoters verifies simultaneous ballots from distinct
// voters are all recorded and tallied
func TestConcurrentCastManyVoters(t *testing.T) {
	env := newTestEnv(t)
	votes := NewVoteHandler(env.eng)
	elections := NewElectionHandler(env.eng)

	instID, _ := testutil.CreateTestInstitution(t, env.db, "UPN")
	electionID := testutil.CreateOpenElection(t, env.db, instID)
	alice := testutil.AddTestCandidate(t, env.db, electionID, "Alice")
	bob := testutil.AddTestCandidate(t, env.db, electionID, "Bob")

	const numVoters = 12
	voterIDs := make([]string, numVoters)
	for i := range voterIDs {
		voterIDs[i] = testutil.CreateTestVoter(t, env.db, instID, fmt.Sprintf("S%03d", i), true)
	}

	var success atomic.Int32
	var wg sync.WaitGroup
	for i, voterID := range voterIDs {
		wg.Add(1)
		go func(i int, voterID string) {
			defer wg.Done()
			choice := alice
			if i%3 == 0 {
				choice = bob
			}
			w := serve(votes.CastVote, "POST", "/votes/cast_vote", models.CastVoteRequest{
				VoterID:     voterID,
				ElectionID:  electionID,
				CandidateID: &choice,
			}, "")
			if w.Code == http.StatusCreated {
				success.Add(1)
			}
		}(i, voterID)
	}
	wg.Wait()

	if success.Load() != numVoters {
		t.Fatalf("Expected %d successful casts, got %d", numVoters, success.Load())
	}

	w := serve(elections.Results, "GET", "/elections/"+electionID+"/results", nil, "", "id", electionID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.TotalVotes != numVoters {
		t.Errorf("Expected %d total votes, got %d", numVoters, resp.TotalVotes)
	}
	if resp.ParticipationRate != 100 {
		t.Errorf("Expected participation 100, got %v", resp.ParticipationRate)
	}
	if resp.Winner == nil || resp.Winner.CandidateName != "Alice" {
		t.Errorf("Expected Alice to win, got %+v", resp.Winner)
	}
}
