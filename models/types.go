// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/danielhkuo/scrutin/election"
)

// Response status values
const (
	StatusCreated   = "created"
	StatusAdvanced  = "advanced"
	StatusFinalized = "finalized"
	StatusOpened    = "opened"
	StatusClosed    = "closed"
)

// Request types

type RegisterRequest struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"institution_name" validate:"required"`
	Description string `json:"description"`
}

// Username may also be the institution name
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateInstitutionRequest struct {
	Name        *string `json:"institution_name"`
	Description *string `json:"description"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
}

type VoterLoginRequest struct {
	InstitutionID string `json:"institution_id" validate:"required"`
	Identifier    string `json:"identifier" validate:"required"`
}

// Start and End accept RFC 3339 or a local datetime without offset
type CreateElectionRequest struct {
	Title             string   `json:"title" validate:"required"`
	Description       string   `json:"description"`
	ScrutinType       string   `json:"scrutin_type" validate:"omitempty,oneof=single_round two_round"`
	MajorityThreshold *float64 `json:"majority_threshold"`
	AdvanceThreshold  *float64 `json:"advance_threshold"`
	Start             string   `json:"start"`
	End               string   `json:"end"`
	OpenImmediately   bool     `json:"open_immediately"`
}

type AdvanceRequest struct {
	QualifiedCandidateIDs []string `json:"qualified_candidate_ids"`
	CreateNewElection     *bool    `json:"create_new_election"`
	Start                 string   `json:"start"`
	End                   string   `json:"end"`
	Title                 string   `json:"title"`
	OpenImmediately       bool     `json:"open_immediately"`
}

// OpenElectionRequest defaults to opening now when open_immediately is absent.
type OpenElectionRequest struct {
	OpenImmediately *bool `json:"open_immediately"`
}

type FinalizeWinnerRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
}

// CandidateID nil, "", "null" or "none" is a blank vote
type CastVoteRequest struct {
	VoterID     string  `json:"voter_id"`
	ElectionID  string  `json:"election_id"`
	CandidateID *string `json:"candidate_id"`
}

type VoterRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Name       string `json:"name"`
	Eligible   *bool  `json:"eligible"`
}

type UpdateVoterRequest struct {
	Identifier *string `json:"identifier"`
	Name       *string `json:"name"`
	Eligible   *bool   `json:"eligible"`
}

type DeleteImportRequest struct {
	FileID string `json:"file_id" validate:"required"`
}

// Response types

type InstitutionResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Name        string    `json:"institution_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token       string              `json:"token"`
	Institution InstitutionResponse `json:"institution"`
}

type VoterLoginResponse struct {
	VoterID    string `json:"voter_id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

type CandidateResponse struct {
	ID         string    `json:"id"`
	ElectionID string    `json:"election"`
	Name       string    `json:"name"`
	Bio        string    `json:"bio"`
	Position   string    `json:"position"`
	PhotoURL   string    `json:"photo,omitempty"`
	VoteCount  int       `json:"vote_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type ElectionResponse struct {
	ID                string              `json:"id"`
	InstitutionID     string              `json:"institution"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	ScrutinType       string              `json:"scrutin_type"`
	MajorityThreshold float64             `json:"majority_threshold"`
	AdvanceThreshold  float64             `json:"advance_threshold"`
	CurrentRound      int                 `json:"current_round"`
	Start             *time.Time          `json:"start"`
	End               *time.Time          `json:"end"`
	Closed            bool                `json:"closed"`
	IsOpen            bool                `json:"is_open"`
	VotedVotersCount  int                 `json:"voted_voters_count"`
	Candidates        []CandidateResponse `json:"candidates"`
	FinalizedWinner   *CandidateResponse  `json:"finalized_winner"`
	CreatedAt         time.Time           `json:"created_at"`
}

type VoterResponse struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	Eligible   bool      `json:"eligible"`
	ImportID   *string   `json:"import_file"`
	CreatedAt  time.Time `json:"created_at"`
}

type AuditResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"timestamp"`
}

type VotersSummaryResponse struct {
	TotalVoters    int            `json:"total_voters"`
	EligibleVoters int            `json:"eligible_voters"`
	LastImport     *AuditResponse `json:"last_import"`
}

type ImportResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
	TotalRows  int       `json:"total_rows"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
}

type ImportsResponse struct {
	Imports []ImportResponse `json:"imports"`
}

type ImportPreviewResponse struct {
	TotalRows int `json:"total_rows"`
	Eligible  int `json:"eligible"`
	Invalid   int `json:"invalid"`
}

type ImportResultResponse struct {
	ImportID  string `json:"import_id"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	TotalRows int    `json:"total_rows"`
}

type ForceDeleteResponse struct {
	Detail string `json:"detail"`
	Backup string `json:"backup"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

type CastVoteResponse struct {
	Detail string `json:"detail"`
	VoteID string `json:"vote_id"`
}

type HasVotedResponse struct {
	Voted bool `json:"voted"`
}

// ResultsResponse carries the tally and its resolution. Winner is set for
// single_round_result and first_round_elected; the qualification fields only
// for second_round_required.
type ResultsResponse struct {
	ElectionID                string         `json:"election_id"`
	ElectionTitle             string         `json:"election_title"`
	TotalVotes                int            `json:"total_votes"`
	ParticipationRate         float64        `json:"participation_rate"`
	Candidates                []election.Row `json:"candidates"`
	NullVotes                 int            `json:"null_votes"`
	PercentNull               float64        `json:"percent_null"`
	Status                    string         `json:"status"`
	Winner                    *election.Row  `json:"winner,omitempty"`
	QualifiedCandidates       []election.Row `json:"qualified_candidates,omitempty"`
	ElectionCurrentRound      *int           `json:"election_current_round,omitempty"`
	ElectionMajorityThreshold *float64       `json:"election_majority_threshold,omitempty"`
	ElectionAdvanceThreshold  *float64       `json:"election_advance_threshold,omitempty"`
}

type TimelineResponse struct {
	Timeline []election.Bucket `json:"timeline"`
}

type AdvanceResponse struct {
	Status              string              `json:"status"`
	NewElectionID       string              `json:"new_election_id,omitempty"`
	CurrentRound        int                 `json:"current_round,omitempty"`
	QualifiedCandidates []CandidateResponse `json:"qualified_candidates,omitempty"`
}

type FinalizeResponse struct {
	Status string            `json:"status"`
	Winner CandidateResponse `json:"winner"`
}

type OpenResponse struct {
	Status string   `json:"status"`
	Opened []string `json:"opened"`
}

type CloseResponse struct {
	Status string   `json:"status"`
	Closed []string `json:"closed"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// BlockedImportResponse lists voters whose votes prevent deleting an import
type BlockedImportResponse struct {
	ErrorResponse
	BlockedVotersSample []string `json:"blocked_voters_sample"`
	BlockedCount        int      `json:"blocked_count"`
}
