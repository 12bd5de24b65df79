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

const importColumns = `id, institution_id, filename, file_key, uploaded_by, uploaded_at, total_rows, created, updated`

func scanImport(row scanner) (election.VoterImport, error) {
	var imp election.VoterImport
	err := row.Scan(&imp.ID, &imp.InstitutionID, &imp.Filename, &imp.FileKey, &imp.UploadedBy,
		&imp.UploadedAt, &imp.TotalRows, &imp.Created, &imp.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return imp, election.ErrImportNotFound
	}
	if err != nil {
		return imp, fmt.Errorf("failed to scan import: %w", err)
	}
	imp.UploadedAt = imp.UploadedAt.UTC()
	return imp, nil
}

func (s *Store) CreateImport(ctx context.Context, imp election.VoterImport) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO voter_import (id, institution_id, filename, file_key, uploaded_by, uploaded_at, total_rows, created, updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, imp.ID, imp.InstitutionID, imp.Filename, imp.FileKey, imp.UploadedBy, imp.UploadedAt.UTC(),
		imp.TotalRows, imp.Created, imp.Updated)
	if err != nil {
		return fmt.Errorf("failed to insert import: %w", err)
	}
	return nil
}

func (s *Store) SetImportCounts(ctx context.Context, id string, created, updated int) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE voter_import SET created = $2, updated = $3 WHERE id = $1
	`, id, created, updated)
	if err != nil {
		return fmt.Errorf("failed to update import counts: %w", err)
	}
	return nil
}

// GetImport finds an import only within the given institution.
func (s *Store) GetImport(ctx context.Context, institutionID, id string) (election.VoterImport, error) {
	return scanImport(s.q.QueryRowContext(ctx, `
		SELECT `+importColumns+` FROM voter_import WHERE id = $1 AND institution_id = $2
	`, id, institutionID))
}

// ListImports returns an institution's imports, newest first.
func (s *Store) ListImports(ctx context.Context, institutionID string) ([]election.VoterImport, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+importColumns+` FROM voter_import WHERE institution_id = $1
		ORDER BY uploaded_at DESC, id
	`, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer rows.Close()

	var out []election.VoterImport
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate imports: %w", err)
	}
	return out, nil
}

// ImportedVotersWithVotes returns up to limit identifiers of voters from the
// import who have voted, and the total number of such voters.
func (s *Store) ImportedVotersWithVotes(ctx context.Context, importID string, limit int) ([]string, int, error) {
	var total int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT v.id) FROM voter v
		JOIN vote ON vote.voter_id = v.id
		WHERE v.import_id = $1
	`, importID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count blocked voters: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT DISTINCT v.identifier FROM voter v
		JOIN vote ON vote.voter_id = v.id
		WHERE v.import_id = $1
		ORDER BY v.identifier LIMIT $2
	`, importID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query blocked voters: %w", err)
	}
	defer rows.Close()

	var sample []string
	for rows.Next() {
		var identifier string
		if err := rows.Scan(&identifier); err != nil {
			return nil, 0, fmt.Errorf("failed to scan blocked voter: %w", err)
		}
		sample = append(sample, identifier)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate blocked voters: %w", err)
	}
	return sample, total, nil
}

// DeleteImport removes the import together with the voters it created or
// last updated. Their votes go with them.
func (s *Store) DeleteImport(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM voter WHERE import_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete imported voters: %w", err)
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM voter_import WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return election.ErrImportNotFound
	}
	return nil
}
