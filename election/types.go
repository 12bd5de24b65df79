// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"time"

	"github.com/moznion/go-optional"
)

// ScrutinType is the voting rule family of an election.
type ScrutinType string

const (
	SingleRound ScrutinType = "single_round"
	TwoRound    ScrutinType = "two_round"
)

// Valid reports whether s is a known scrutin type.
func (s ScrutinType) Valid() bool {
	return s == SingleRound || s == TwoRound
}

// Default thresholds, in percent.
const (
	DefaultMajorityThreshold = 50.0
	DefaultAdvanceThreshold  = 12.5
)

// Audit actions.
const (
	ActionInstitutionRegistered = "institution_registered"
	ActionInstitutionUpdated    = "institution_updated"
	ActionElectionCreated       = "election_created"
	ActionElectionOpened        = "election_opened"
	ActionElectionClosed        = "election_closed"
	ActionElectionDeleted       = "election_deleted"
	ActionCandidateAdded        = "candidate_added"
	ActionCandidateDeleted      = "candidate_deleted"
	ActionVoterAdded            = "voter_added"
	ActionVotersImported        = "voters_imported"
	ActionImportDeleted         = "import_file_deleted"
	ActionImportForceDeleted    = "import_file_force_deleted"
	ActionVoteCast              = "vote_cast"
	ActionAdvanceToRound2       = "advance_to_round2"
	ActionFinalizeWinner        = "finalize_winner"
)

type Institution struct {
	ID           string
	Username     string
	Email        string
	Name         string
	Description  string
	PasswordHash string
	CreatedAt    time.Time
}

type Election struct {
	ID                string
	InstitutionID     string
	Title             string
	Description       string
	ScrutinType       ScrutinType
	MajorityThreshold float64
	AdvanceThreshold  float64
	CurrentRound      int
	Start             optional.Option[time.Time]
	End               optional.Option[time.Time]
	Closed            bool
	FinalizedWinnerID *string
	CreatedAt         time.Time
}

// IsOpen applies the temporal gate to the election window.
func (e Election) IsOpen(now time.Time) bool {
	return IsOpen(now, e.Start, e.End)
}

// EndReached reports whether an end is configured and now is at or past it.
func (e Election) EndReached(now time.Time) bool {
	end, err := e.End.Take()
	if err != nil {
		return false
	}
	return !now.Before(end)
}

type Candidate struct {
	ID         string
	ElectionID string
	Name       string
	Bio        string
	Position   string
	PhotoKey   string
	CreatedAt  time.Time
}

type Voter struct {
	ID            string
	InstitutionID string
	Identifier    string
	Name          string
	Eligible      bool
	ImportID      *string
	CreatedAt     time.Time
}

// Vote is a ledger entry. A nil CandidateID is a blank vote.
type Vote struct {
	ID          string
	ElectionID  string
	VoterID     string
	CandidateID *string
	CreatedAt   time.Time
}

type VoterImport struct {
	ID            string
	InstitutionID string
	Filename      string
	FileKey       string
	UploadedBy    string
	UploadedAt    time.Time
	TotalRows     int
	Created       int
	Updated       int
}

// AuditEntry is an append-only record. ElectionID and InstitutionID mirror
// keys of Detail so lookups do not depend on JSON operators.
type AuditEntry struct {
	ID            string
	Action        string
	Actor         string
	InstitutionID string
	ElectionID    string
	Detail        map[string]any
	CreatedAt     time.Time
}
