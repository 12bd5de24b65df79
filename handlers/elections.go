// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/models"
)

type ElectionHandler struct {
	eng *engine.Engine
}

func NewElectionHandler(eng *engine.Engine) *ElectionHandler {
	return &ElectionHandler{eng: eng}
}

// Create handles POST /elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	start, end, err := parseWindow(req.Start, req.End, h.eng.Location())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	el, err := h.eng.CreateElection(r.Context(), actor, engine.CreateElectionInput{
		Title:             req.Title,
		Description:       req.Description,
		ScrutinType:       election.ScrutinType(req.ScrutinType),
		MajorityThreshold: req.MajorityThreshold,
		AdvanceThreshold:  req.AdvanceThreshold,
		Start:             start,
		End:               end,
		OpenImmediately:   req.OpenImmediately,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	view, err := h.eng.Election(r.Context(), el.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, electionResponse(view))
}

// List handles GET /elections
// Authenticated callers see their own elections; anonymous callers name an
// institution with ?institution_id=.
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	institutionID := r.URL.Query().Get("institution_id")
	if actor, ok := middleware.InstitutionFrom(r.Context()); ok && institutionID == "" {
		institutionID = actor.InstitutionID
	}
	if institutionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "institution_id is required")
		return
	}

	views, err := h.eng.Elections(r.Context(), institutionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := make([]models.ElectionResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, electionResponse(v))
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Get handles GET /elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.eng.Election(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, electionResponse(view))
}

// Delete handles DELETE /elections/{id}
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := h.eng.DeleteElection(r.Context(), actor, r.PathValue("id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Open handles POST /elections/{id}/open_election
// An explicit open_immediately=false records the request without opening.
func (h *ElectionHandler) Open(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.OpenElectionRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	openNow := req.OpenImmediately == nil || *req.OpenImmediately

	el, opened, err := h.eng.OpenElection(r.Context(), actor, r.PathValue("id"), openNow)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	ids := []string{}
	if opened {
		ids = append(ids, el.ID)
	}
	middleware.JSONResponse(w, http.StatusOK, models.OpenResponse{
		Status: models.StatusOpened,
		Opened: ids,
	})
}

// Close handles POST /elections/{id}/close_election
func (h *ElectionHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	el, err := h.eng.CloseElection(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CloseResponse{
		Status: models.StatusClosed,
		Closed: []string{el.ID},
	})
}

// Results handles GET /elections/{id}/results
func (h *ElectionHandler) Results(w http.ResponseWriter, r *http.Request) {
	res, err := h.eng.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resultsResponse(res))
}

// Timeline handles GET /elections/{id}/timeline?unit=&start=&end=
func (h *ElectionHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseWindow(q.Get("start"), q.Get("end"), h.eng.Location())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid start/end datetime format")
		return
	}

	buckets, err := h.eng.Timeline(r.Context(), r.PathValue("id"), election.ParseUnit(q.Get("unit")), from, to)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if buckets == nil {
		buckets = []election.Bucket{}
	}
	middleware.JSONResponse(w, http.StatusOK, models.TimelineResponse{Timeline: buckets})
}

// AdvanceToRound2 handles POST /elections/{id}/advance_to_round2
// Answers 201 when a new election was created and 200 when advanced in place.
func (h *ElectionHandler) AdvanceToRound2(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.AdvanceRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	start, end, err := parseWindow(req.Start, req.End, h.eng.Location())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	res, err := h.eng.AdvanceToRound2(r.Context(), actor, r.PathValue("id"), engine.AdvanceInput{
		QualifiedCandidateIDs: req.QualifiedCandidateIDs,
		CreateNewElection:     req.CreateNewElection,
		Start:                 start,
		End:                   end,
		Title:                 req.Title,
		OpenImmediately:       req.OpenImmediately,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if !res.Created {
		middleware.JSONResponse(w, http.StatusOK, models.AdvanceResponse{
			Status:       models.StatusAdvanced,
			CurrentRound: res.Election.CurrentRound,
		})
		return
	}

	qualified := make([]models.CandidateResponse, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		qualified = append(qualified, candidateResponse(engine.CandidateView{Candidate: c}))
	}
	middleware.JSONResponse(w, http.StatusCreated, models.AdvanceResponse{
		Status:              models.StatusCreated,
		NewElectionID:       res.Election.ID,
		QualifiedCandidates: qualified,
	})
}

// FinalizeWinner handles POST /elections/{id}/finalize_winner
func (h *ElectionHandler) FinalizeWinner(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.FinalizeWinnerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	c, err := h.eng.FinalizeWinner(r.Context(), actor, r.PathValue("id"), req.CandidateID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	winner, err := h.eng.Candidate(r.Context(), c.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FinalizeResponse{
		Status: models.StatusFinalized,
		Winner: candidateResponse(winner),
	})
}
