// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/scrutin/election"
)

const institutionColumns = `id, username, email, name, description, password_hash, created_at`

func scanInstitution(row scanner) (election.Institution, error) {
	var in election.Institution
	err := row.Scan(&in.ID, &in.Username, &in.Email, &in.Name, &in.Description, &in.PasswordHash, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return in, election.ErrInstitutionNotFound
	}
	if err != nil {
		return in, fmt.Errorf("failed to scan institution: %w", err)
	}
	in.CreatedAt = in.CreatedAt.UTC()
	return in, nil
}

// CreateInstitution inserts in. Duplicate username, email or name yields
// election.ErrDuplicate.
func (s *Store) CreateInstitution(ctx context.Context, in election.Institution) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO institution (id, username, email, name, description, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, in.ID, in.Username, in.Email, in.Name, in.Description, in.PasswordHash, in.CreatedAt.UTC())
	if IsUniqueViolation(err) {
		return election.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert institution: %w", err)
	}
	return nil
}

func (s *Store) GetInstitution(ctx context.Context, id string) (election.Institution, error) {
	return scanInstitution(s.q.QueryRowContext(ctx, `
		SELECT `+institutionColumns+` FROM institution WHERE id = $1
	`, id))
}

// FindInstitutionByLogin matches the institution name case-insensitively,
// falling back to the account username.
func (s *Store) FindInstitutionByLogin(ctx context.Context, login string) (election.Institution, error) {
	in, err := scanInstitution(s.q.QueryRowContext(ctx, `
		SELECT `+institutionColumns+` FROM institution WHERE LOWER(name) = LOWER($1)
	`, login))
	if !errors.Is(err, election.ErrInstitutionNotFound) {
		return in, err
	}
	return scanInstitution(s.q.QueryRowContext(ctx, `
		SELECT `+institutionColumns+` FROM institution WHERE username = $1
	`, login))
}

func (s *Store) UpdateInstitution(ctx context.Context, in election.Institution) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE institution SET name = $2, description = $3, email = $4, password_hash = $5
		WHERE id = $1
	`, in.ID, in.Name, in.Description, in.Email, in.PasswordHash)
	if IsUniqueViolation(err) {
		return election.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update institution: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return election.ErrInstitutionNotFound
	}
	return nil
}
