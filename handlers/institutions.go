// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/models"
)

type InstitutionHandler struct {
	eng *engine.Engine
}

func NewInstitutionHandler(eng *engine.Engine) *InstitutionHandler {
	return &InstitutionHandler{eng: eng}
}

// Me handles GET /institutions/me
func (h *InstitutionHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	inst, err := h.eng.Institution(r.Context(), actor.InstitutionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, institutionResponse(inst))
}

// UpdateMe handles PATCH /institutions/me
func (h *InstitutionHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.UpdateInstitutionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	inst, err := h.eng.UpdateInstitution(r.Context(), actor, engine.UpdateInstitutionInput{
		Name:        req.Name,
		Description: req.Description,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, institutionResponse(inst))
}
