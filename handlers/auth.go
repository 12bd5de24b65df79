// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/cliparse"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/middleware"
	"github.com/danielhkuo/scrutin/models"
)

type AuthHandler struct {
	eng *engine.Engine
	cfg cliparse.Config
}

func NewAuthHandler(eng *engine.Engine, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{eng: eng, cfg: cfg}
}

// Register handles POST /auth/institution/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	inst, err := h.eng.Register(r.Context(), engine.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, inst)
}

// Login handles POST /auth/institution/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	inst, err := h.eng.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("institution logged in", "institution_id", inst.ID)
	h.respondWithToken(w, http.StatusOK, inst)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, inst election.Institution) {
	token, err := auth.IssueToken(inst.ID, inst.Username, h.cfg.JWTSecret, h.cfg.TokenTTL, h.eng.Now())
	if err != nil {
		middleware.WriteError(w, election.Internal("failed to issue token", err))
		return
	}
	middleware.JSONResponse(w, status, models.AuthResponse{
		Token:       token,
		Institution: institutionResponse(inst),
	})
}

// VoterLogin handles POST /auth/voter/login
func (h *AuthHandler) VoterLogin(w http.ResponseWriter, r *http.Request) {
	var req models.VoterLoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	voter, err := h.eng.VoterLogin(r.Context(), req.InstitutionID, req.Identifier)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterLoginResponse{
		VoterID:    voter.ID,
		Identifier: voter.Identifier,
		Name:       voter.Name,
	})
}
