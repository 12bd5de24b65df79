// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/scrutin/cliparse"
	"github.com/danielhkuo/scrutin/engine"
	"github.com/danielhkuo/scrutin/handlers"
	"github.com/danielhkuo/scrutin/middleware"
)

func NewRouter(eng *engine.Engine, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(eng, cfg)
	institutionHandler := handlers.NewInstitutionHandler(eng)
	electionHandler := handlers.NewElectionHandler(eng)
	candidateHandler := handlers.NewCandidateHandler(eng)
	voterHandler := handlers.NewVoterHandler(eng)
	voteHandler := handlers.NewVoteHandler(eng)

	public := middleware.WithLogging
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireInstitution(cfg.JWTSecret, h))
	}
	optional := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.OptionalInstitution(cfg.JWTSecret, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /auth/institution/register", public(authHandler.Register))
	mux.HandleFunc("POST /auth/institution/login", public(authHandler.Login))
	mux.HandleFunc("POST /auth/voter/login", public(authHandler.VoterLogin))

	// Institution profile and voter files
	mux.HandleFunc("GET /institutions/me", private(institutionHandler.Me))
	mux.HandleFunc("PATCH /institutions/me", private(institutionHandler.UpdateMe))
	mux.HandleFunc("POST /institutions/me/import_voters", private(voterHandler.Import))
	mux.HandleFunc("GET /institutions/me/imports", private(voterHandler.Imports))
	mux.HandleFunc("POST /institutions/me/imports/delete", private(voterHandler.DeleteImport))
	mux.HandleFunc("POST /institutions/me/imports/force_delete", private(voterHandler.ForceDeleteImport))

	// Elections (reads are public)
	mux.HandleFunc("POST /elections", private(electionHandler.Create))
	mux.HandleFunc("GET /elections", optional(electionHandler.List))
	mux.HandleFunc("GET /elections/{id}", public(electionHandler.Get))
	mux.HandleFunc("DELETE /elections/{id}", private(electionHandler.Delete))
	mux.HandleFunc("GET /elections/{id}/results", public(electionHandler.Results))
	mux.HandleFunc("GET /elections/{id}/timeline", public(electionHandler.Timeline))
	mux.HandleFunc("POST /elections/{id}/open_election", private(electionHandler.Open))
	mux.HandleFunc("POST /elections/{id}/close_election", private(electionHandler.Close))
	mux.HandleFunc("POST /elections/{id}/advance_to_round2", private(electionHandler.AdvanceToRound2))
	mux.HandleFunc("POST /elections/{id}/finalize_winner", private(electionHandler.FinalizeWinner))

	// Candidates
	mux.HandleFunc("POST /candidates", private(candidateHandler.Create))
	mux.HandleFunc("GET /candidates", public(candidateHandler.List))
	mux.HandleFunc("GET /candidates/{id}", public(candidateHandler.Get))
	mux.HandleFunc("DELETE /candidates/{id}", private(candidateHandler.Delete))
	mux.HandleFunc("GET /candidates/{id}/photo", public(candidateHandler.Photo))

	// Voter registry
	mux.HandleFunc("POST /voters", private(voterHandler.Create))
	mux.HandleFunc("GET /voters", private(voterHandler.List))
	mux.HandleFunc("GET /voters/summary", private(voterHandler.Summary))
	mux.HandleFunc("PATCH /voters/{id}", private(voterHandler.Update))
	mux.HandleFunc("DELETE /voters/{id}", private(voterHandler.Delete))

	// Voting (public)
	mux.HandleFunc("POST /votes/cast_vote", public(voteHandler.CastVote))
	mux.HandleFunc("GET /votes/has_voted", public(voteHandler.HasVoted))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			middleware.ErrorResponse(w, http.StatusNotFound, "route not found")
			return
		}
		w.Write([]byte("scrutin API v1"))
	})

	return mux
}
