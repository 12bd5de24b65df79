// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/models"
)

type CandidateHandler struct {
	eng *engine.Engine
}

func NewCandidateHandler(eng *engine.Engine) *CandidateHandler {
	return &CandidateHandler{eng: eng}
}

// Create handles POST /candidates
// Multipart fields: election, name, bio, position and an optional photo.
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	photo, _, err := readUpload(w, r, "photo", MaxPhotoBytes)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	electionID := r.FormValue("election")
	if electionID == "" {
		electionID = r.FormValue("election_id")
	}

	c, err := h.eng.AddCandidate(r.Context(), actor, engine.CandidateInput{
		ElectionID: electionID,
		Name:       r.FormValue("name"),
		Bio:        r.FormValue("bio"),
		Position:   r.FormValue("position"),
		Photo:      photo,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, candidateResponse(engine.CandidateView{Candidate: c}))
}

// List handles GET /candidates?election_id=
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	electionID := r.URL.Query().Get("election_id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	views, err := h.eng.Candidates(r.Context(), electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := make([]models.CandidateResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, candidateResponse(v))
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Get handles GET /candidates/{id}
func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.eng.Candidate(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidateResponse(view))
}

// Delete handles DELETE /candidates/{id}
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := h.eng.DeleteCandidate(r.Context(), actor, r.PathValue("id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Photo handles GET /candidates/{id}/photo
func (h *CandidateHandler) Photo(w http.ResponseWriter, r *http.Request) {
	data, err := h.eng.CandidatePhoto(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
