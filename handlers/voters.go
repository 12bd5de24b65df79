// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/models"
)

type VoterHandler struct {
	eng *engine.Engine
}

func NewVoterHandler(eng *engine.Engine) *VoterHandler {
	return &VoterHandler{eng: eng}
}

// Create handles POST /voters
func (h *VoterHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.VoterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	v, err := h.eng.AddVoter(r.Context(), actor, engine.VoterInput{
		Identifier: req.Identifier,
		Name:       req.Name,
		Eligible:   req.Eligible,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, voterResponse(v))
}

// List handles GET /voters
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	voters, err := h.eng.Voters(r.Context(), actor)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := make([]models.VoterResponse, 0, len(voters))
	for _, v := range voters {
		resp = append(resp, voterResponse(v))
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Update handles PATCH /voters/{id}
func (h *VoterHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.UpdateVoterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	v, err := h.eng.UpdateVoter(r.Context(), actor, r.PathValue("id"), engine.VoterPatch{
		Identifier: req.Identifier,
		Name:       req.Name,
		Eligible:   req.Eligible,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voterResponse(v))
}

// Delete handles DELETE /voters/{id}
func (h *VoterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := h.eng.DeleteVoter(r.Context(), actor, r.PathValue("id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /voters/summary
func (h *VoterHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	sum, err := h.eng.VotersSummary(r.Context(), actor)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := models.VotersSummaryResponse{
		TotalVoters:    sum.Total,
		EligibleVoters: sum.Eligible,
	}
	if a := sum.LastImport; a != nil {
		resp.LastImport = &models.AuditResponse{
			ID:        a.ID,
			Action:    a.Action,
			Actor:     a.Actor,
			Detail:    a.Detail,
			CreatedAt: a.CreatedAt,
		}
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Import handles POST /institutions/me/import_voters[?preview=true]
// The voter file is the multipart field "file".
func (h *VoterHandler) Import(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	raw, filename, err := readUpload(w, r, "file", MaxImportBytes)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if raw == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file required")
		return
	}

	if r.URL.Query().Get("preview") == "true" {
		p, err := h.eng.PreviewImport(raw)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.ImportPreviewResponse{
			TotalRows: p.TotalRows,
			Eligible:  p.Eligible,
			Invalid:   p.Invalid,
		})
		return
	}

	res, err := h.eng.ImportVoters(r.Context(), actor, filename, raw)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("voter file uploaded",
		"institution_id", actor.InstitutionID,
		"filename", filename,
		"size", humanize.Bytes(uint64(len(raw))),
	)
	middleware.JSONResponse(w, http.StatusOK, models.ImportResultResponse{
		ImportID:  res.Import.ID,
		Created:   res.Created,
		Updated:   res.Updated,
		TotalRows: res.TotalRows,
	})
}

// Imports handles GET /institutions/me/imports
func (h *VoterHandler) Imports(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	imports, err := h.eng.Imports(r.Context(), actor)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := models.ImportsResponse{Imports: make([]models.ImportResponse, 0, len(imports))}
	for _, imp := range imports {
		resp.Imports = append(resp.Imports, importResponse(imp))
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DeleteImport handles POST /institutions/me/imports/delete
// Refused with a sample of identifiers when imported voters have voted.
func (h *VoterHandler) DeleteImport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.DeleteImportRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	err := h.eng.DeleteImport(r.Context(), actor, req.FileID)
	var blocked *engine.ImportBlockedError
	if errors.As(err, &blocked) {
		middleware.JSONResponse(w, http.StatusBadRequest, models.BlockedImportResponse{
			ErrorResponse: models.ErrorResponse{
				Error:   http.StatusText(http.StatusBadRequest),
				Message: election.ErrImportHasVotes.Message,
			},
			BlockedVotersSample: blocked.Sample,
			BlockedCount:        blocked.Count,
		})
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DetailResponse{Detail: "Deleted."})
}

// ForceDeleteImport handles POST /institutions/me/imports/force_delete
// Deletes the imported voters with their votes and returns a CSV backup.
func (h *VoterHandler) ForceDeleteImport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req models.DeleteImportRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	backup, err := h.eng.ForceDeleteImport(r.Context(), actor, req.FileID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ForceDeleteResponse{
		Detail: "Deleted.",
		Backup: string(backup),
	})
}
