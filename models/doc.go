// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request and response types for the API.

# Request Types

Types for parsing incoming JSON. Tags under validate: are checked by
middleware.DecodeAndValidate.

  - RegisterRequest, LoginRequest, UpdateInstitutionRequest
  - VoterLoginRequest
  - CreateElectionRequest: title, scrutin_type, thresholds, start, end
  - AdvanceRequest: qualified_candidate_ids, create_new_election, start, end
  - FinalizeWinnerRequest: candidate_id
  - CastVoteRequest: voter_id, election_id, candidate_id (null for blank)
  - VoterRequest, UpdateVoterRequest
  - DeleteImportRequest: file_id

# Response Types

  - AuthResponse: token, institution
  - ElectionResponse: election with is_open, voted_voters_count, candidates
  - CandidateResponse: candidate with vote_count and photo URL
  - ResultsResponse: tally rows, null_votes, status, winner or qualifiers
  - TimelineResponse: sparse buckets of votes per minute or hour
  - AdvanceResponse: created with new_election_id, or advanced in place
  - CastVoteResponse: detail, vote_id
  - ErrorResponse: error, message
  - BlockedImportResponse: error plus blocked_voters_sample, blocked_count

Datetimes are encoded as RFC 3339 in UTC.
*/
package models
