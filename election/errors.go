// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPermission
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPermission:
		return "permission"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is the single error type returned across package boundaries.
// Message is safe to show to clients; Err is not.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Permission(format string, args ...any) error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a storage or infrastructure failure.
func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err. Untyped errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}

var (
	ErrElectionNotFound    = &Error{Kind: KindNotFound, Message: "election not found"}
	ErrCandidateNotFound   = &Error{Kind: KindNotFound, Message: "candidate not found"}
	ErrVoterNotFound       = &Error{Kind: KindNotFound, Message: "voter not found"}
	ErrInstitutionNotFound = &Error{Kind: KindNotFound, Message: "institution not found"}
	ErrImportNotFound      = &Error{Kind: KindNotFound, Message: "import file not found"}

	ErrWindowClosed     = &Error{Kind: KindConflict, Message: "voting window closed or not started"}
	ErrAlreadyVoted     = &Error{Kind: KindConflict, Message: "voter already voted in this election"}
	ErrNotTwoRound      = &Error{Kind: KindConflict, Message: "election not configured for two-round majoritarian"}
	ErrAlreadyRoundTwo  = &Error{Kind: KindConflict, Message: "election is already in its second round"}
	ErrElectionClosed   = &Error{Kind: KindConflict, Message: "election is closed"}
	ErrDuplicate        = &Error{Kind: KindConflict, Message: "already exists"}
	ErrImportHasVotes   = &Error{Kind: KindConflict, Message: "cannot delete import: some imported voters have recorded votes"}
	ErrNotEligible      = &Error{Kind: KindPermission, Message: "voter not eligible"}
	ErrWrongInstitution = &Error{Kind: KindPermission, Message: "resource belongs to another institution"}
	ErrBadCredentials   = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
)
