// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/scrutin/models"
	"github.com/danielhkuo/scrutin/testutil"
)

// pngHeader is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCreateCandidate(t *testing.T) {
	env := newTestEnv(t)
	h := NewCandidateHandler(env.eng)

	instID, token := testutil.CreateTestInstitution(t, env.db, "UNIKIN")
	_, otherToken := testutil.CreateTestInstitution(t, env.db, "UPC")
	electionID := testutil.CreateTestElection(t, env.db, instID, testutil.ElectionOpts{})

	t.Run("with photo", func(t *testing.T) {
		req := multipartRequest(t, "/candidates", token, map[string]string{
			"election": electionID,
			"name":     "Alice Mbuyi",
			"bio":      "Faculté de droit",
			"position": "Présidente",
		}, "photo", "alice.png", pngHeader)
		w := httptest.NewRecorder()
		env.authed(h.Create)(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.CandidateResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Name != "Alice Mbuyi" || resp.ElectionID != electionID || resp.Position != "Présidente" {
			t.Errorf("Unexpected candidate: %+v", resp)
		}
		if resp.PhotoURL != "/candidates/"+resp.ID+"/photo" {
			t.Errorf("Expected photo URL, got '%s'", resp.PhotoURL)
		}

		w = serve(h.Photo, "GET", resp.PhotoURL, nil, "", "id", resp.ID)
		testutil.AssertStatus(t, w, http.StatusOK)
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("Expected image/png, got '%s'", ct)
		}
		if !bytes.Equal(w.Body.Bytes(), pngHeader) {
			t.Error("Expected the uploaded photo bytes")
		}
	})

	t.Run("without photo", func(t *testing.T) {
		req := multipartRequest(t, "/candidates", token, map[string]string{
			"election_id": electionID,
			"name":        "Bob Kabila",
		}, "", "", nil)
		w := httptest.NewRecorder()
		env.authed(h.Create)(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.CandidateResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.PhotoURL != "" {
			t.Errorf("Expected no photo URL, got '%s'", resp.PhotoURL)
		}

		w = serve(h.Photo, "GET", "/candidates/"+resp.ID+"/photo", nil, "", "id", resp.ID)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("photo too large", func(t *testing.T) {
		big := make([]byte, MaxPhotoBytes+1)
		req := multipartRequest(t, "/candidates", token, map[string]string{
			"election": electionID,
			"name":     "Carol",
		}, "photo", "carol.jpg", big)
		w := httptest.NewRecorder()
		env.authed(h.Create)(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if !strings.Contains(resp.Message, "5.0 MiB") {
			t.Errorf("Expected size limit in message, got '%s'", resp.Message)
		}
	})

	testCases := []struct {
		name           string
		token          string
		fields         map[string]string
		expectedStatus int
	}{
		{"missing name", token, map[string]string{"election": electionID}, http.StatusBadRequest},
		{"missing election", token, map[string]string{"name": "Dan"}, http.StatusBadRequest},
		{"unknown election", token, map[string]string{"election": "missing", "name": "Dan"}, http.StatusNotFound},
		{"other institution", otherToken, map[string]string{"election": electionID, "name": "Dan"}, http.StatusForbidden},
		{"no token", "", map[string]string{"election": electionID, "name": "Dan"}, http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := multipartRequest(t, "/candidates", tc.token, tc.fields, "", "", nil)
			w := httptest.NewRecorder()
			env.authed(h.Create)(w, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestListAndDeleteCandidates(t *testing.T) {
	env := newTestEnv(t)
	h := NewCandidateHandler(env.eng)

	instID, token := testutil.CreateTestInstitution(t, env.db, "ISTA")
	electionID := testutil.CreateOpenElection(t, env.db, instID)
	alice := testutil.AddTestCandidate(t, env.db, electionID, "Alice")
	bob := testutil.AddTestCandidate(t, env.db, electionID, "Bob")
	voter := testutil.CreateTestVoter(t, env.db, instID, "S1", true)
	testutil.CastTestVote(t, env.db, electionID, voter, bob, env.clock.T)

	w := serve(h.List, "GET", "/candidates?election_id="+electionID, nil, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	var list []models.CandidateResponse
	testutil.AssertJSON(t, w, &list)
	if len(list) != 2 || list[0].ID != alice || list[1].VoteCount != 1 {
		t.Errorf("Unexpected candidate list: %+v", list)
	}

	w = serve(h.List, "GET", "/candidates", nil, "")
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = serve(h.Get, "GET", "/candidates/"+bob, nil, "", "id", bob)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = serve(env.authed(h.Delete), "DELETE", "/candidates/"+bob, nil, token, "id", bob)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = serve(h.Get, "GET", "/candidates/"+bob, nil, "", "id", bob)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// the ballot survives as a blank vote
	if n := testutil.CountRows(t, env.db, `SELECT COUNT(*) FROM vote WHERE election_id = $1 AND candidate_id IS NULL`, electionID); n != 1 {
		t.Errorf("Expected 1 blank vote after delete, got %d", n)
	}
}
