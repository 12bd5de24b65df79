// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/models"
)

type VoteHandler struct {
	eng *engine.Engine
}

func NewVoteHandler(eng *engine.Engine) *VoteHandler {
	return &VoteHandler{eng: eng}
}

// CastVote handles POST /votes/cast_vote
// A null or missing candidate_id records a blank vote.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	vote, err := h.eng.CastVote(r.Context(), engine.CastVoteInput{
		ElectionID:  req.ElectionID,
		VoterID:     req.VoterID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Detail: "Vote recorded.",
		VoteID: vote.ID,
	})
}

// HasVoted handles GET /votes/has_voted?voter_id=&election_id=
func (h *VoteHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	voted, err := h.eng.HasVoted(r.Context(), q.Get("voter_id"), q.Get("election_id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{Voted: voted})
}
