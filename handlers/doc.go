// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the scrutin API.

# Handler Types

Each handler is a struct over the election engine:

  - AuthHandler: institution register and login, voter login
  - InstitutionHandler: the caller's institution profile
  - ElectionHandler: election lifecycle, results, timeline, rounds
  - CandidateHandler: candidates and their photos
  - VoterHandler: voter registry and voter file imports
  - VoteHandler: casting and checking ballots

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(eng)
	authHandler := handlers.NewAuthHandler(eng, cfg)

Institution-only handlers read the caller from the request context, so
they are mounted behind middleware.RequireInstitution.

# Election Lifecycle

An election is created without a window unless open_immediately is set.

	POST /elections                        → Create
	POST /elections/{id}/open_election     → Open (start = now if unset)
	POST /elections/{id}/close_election    → Close (end = now if later)
	GET  /elections/{id}/results           → Results
	POST /elections/{id}/advance_to_round2 → AdvanceToRound2
	POST /elections/{id}/finalize_winner   → FinalizeWinner

Reads close an election whose end has passed before answering.

# Voting Flow

	POST /auth/voter/login → VoterLogin (403 when not eligible)
	POST /votes/cast_vote  → CastVote (one ballot per voter and election)
	GET  /votes/has_voted  → HasVoted

# Uploads

Candidate photos (multipart field "photo") are capped at MaxPhotoBytes and
voter files (field "file") at MaxImportBytes.

# Errors

Engine errors are written with middleware.WriteError, which picks the
status from the error kind.
*/
package handlers
