// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/importer"
	"github.com/danielhkuo/scrutin/store"
)

// blockedSampleSize caps the identifiers reported when a delete is refused.
const blockedSampleSize = 20

// ImportPreview are the counts of a parsed voter file.
type ImportPreview struct {
	TotalRows int
	Eligible  int
	Invalid   int
}

// ImportResult is the outcome of an applied voter file.
type ImportResult struct {
	Import    election.VoterImport
	Created   int
	Updated   int
	TotalRows int
}

// ImportBlockedError refuses deleting an import whose voters have voted.
type ImportBlockedError struct {
	Sample []string
	Count  int
}

func (e *ImportBlockedError) Error() string {
	return fmt.Sprintf("%s (%d voters)", election.ErrImportHasVotes.Message, e.Count)
}

func (e *ImportBlockedError) Unwrap() error { return election.ErrImportHasVotes }

func parseVoterFile(raw []byte) (importer.Result, error) {
	res, err := importer.Parse(raw)
	if err != nil {
		return res, election.Validation("%s", err.Error())
	}
	return res, nil
}

// PreviewImport parses a voter file without saving anything.
func (e *Engine) PreviewImport(raw []byte) (ImportPreview, error) {
	res, err := parseVoterFile(raw)
	if err != nil {
		return ImportPreview{}, err
	}
	return ImportPreview{TotalRows: res.TotalRows, Eligible: res.Eligible, Invalid: res.Invalid}, nil
}

// ImportVoters stores the file and creates or updates one voter per valid
// row. All rows are applied in one transaction or none are.
func (e *Engine) ImportVoters(ctx context.Context, actor Actor, filename string, raw []byte) (ImportResult, error) {
	res, err := parseVoterFile(raw)
	if err != nil {
		return ImportResult{}, err
	}

	key, err := e.assets.Put(ctx, raw)
	if err != nil {
		return ImportResult{}, election.Internal("failed to store import file", err)
	}

	imp := election.VoterImport{
		ID:            auth.NewID(),
		InstitutionID: actor.InstitutionID,
		Filename:      filename,
		FileKey:       key,
		UploadedBy:    actor.Username,
		UploadedAt:    e.Now(),
		TotalRows:     res.TotalRows,
	}

	var created, updated int
	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateImport(ctx, imp); err != nil {
			return err
		}
		for _, row := range res.Rows {
			isNew, err := tx.UpsertVoter(ctx, election.Voter{
				ID:            auth.NewID(),
				InstitutionID: actor.InstitutionID,
				Identifier:    row.Identifier,
				Name:          row.Name,
				Eligible:      row.Eligible,
				ImportID:      &imp.ID,
				CreatedAt:     imp.UploadedAt,
			})
			if err != nil {
				return fmt.Errorf("row %q: %w", row.Identifier, err)
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}
		if err := tx.SetImportCounts(ctx, imp.ID, created, updated); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionVotersImported,
			Actor:         actor.Username,
			InstitutionID: actor.InstitutionID,
			Detail: map[string]any{
				"institution_id": actor.InstitutionID,
				"created":        created,
				"updated":        updated,
				"total_rows":     res.TotalRows,
			},
		})
		return nil
	})
	if err != nil {
		e.dropAsset(ctx, key)
		return ImportResult{}, wrap("failed to import voters", err)
	}

	imp.Created, imp.Updated = created, updated
	slog.Info("voters imported",
		"event", "voters_imported",
		"institution_id", actor.InstitutionID,
		"file", filename,
		"size", humanize.Bytes(uint64(len(raw))),
		"created", created,
		"updated", updated,
	)
	return ImportResult{Import: imp, Created: created, Updated: updated, TotalRows: res.TotalRows}, nil
}

func (e *Engine) Imports(ctx context.Context, actor Actor) ([]election.VoterImport, error) {
	list, err := e.store.ListImports(ctx, actor.InstitutionID)
	if err != nil {
		return nil, wrap("failed to list imports", err)
	}
	return list, nil
}

// DeleteImport removes an import and its voters, unless one of them has
// voted, in which case an *ImportBlockedError is returned.
func (e *Engine) DeleteImport(ctx context.Context, actor Actor, importID string) error {
	if importID == "" {
		return election.Validation("file_id required")
	}
	var blocked *ImportBlockedError
	var fileKey string
	err := e.store.InTx(ctx, func(tx *store.Store) error {
		imp, err := tx.GetImport(ctx, actor.InstitutionID, importID)
		if err != nil {
			return err
		}
		sample, count, err := tx.ImportedVotersWithVotes(ctx, imp.ID, blockedSampleSize)
		if err != nil {
			return err
		}
		if count > 0 {
			blocked = &ImportBlockedError{Sample: sample, Count: count}
			return blocked
		}
		if err := tx.DeleteImport(ctx, imp.ID); err != nil {
			return err
		}
		fileKey = imp.FileKey
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionImportDeleted,
			Actor:         actor.Username,
			InstitutionID: actor.InstitutionID,
			Detail:        map[string]any{"file_id": imp.ID, "institution_id": actor.InstitutionID},
		})
		return nil
	})
	if blocked != nil {
		return blocked
	}
	if err != nil {
		return wrap("failed to delete import", err)
	}
	e.dropAsset(ctx, fileKey)
	return nil
}

// ForceDeleteImport removes an import with its voters and their votes and
// returns a CSV backup of what was removed. The backup is also kept in the
// asset store.
func (e *Engine) ForceDeleteImport(ctx context.Context, actor Actor, importID string) ([]byte, error) {
	if importID == "" {
		return nil, election.Validation("file_id required")
	}
	var (
		backup  []byte
		fileKey string
	)
	err := e.store.InTx(ctx, func(tx *store.Store) error {
		imp, err := tx.GetImport(ctx, actor.InstitutionID, importID)
		if err != nil {
			return err
		}
		voters, err := tx.ListImportedVoters(ctx, imp.ID)
		if err != nil {
			return err
		}
		backup, err = backupVoters(ctx, tx, voters)
		if err != nil {
			return err
		}
		backupKey, err := e.assets.Put(ctx, backup)
		if err != nil {
			slog.Warn("failed to store import backup", "file_id", imp.ID, "error", err)
		}
		if err := tx.DeleteImport(ctx, imp.ID); err != nil {
			return err
		}
		fileKey = imp.FileKey
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionImportForceDeleted,
			Actor:         actor.Username,
			InstitutionID: actor.InstitutionID,
			Detail: map[string]any{
				"file_id":        imp.ID,
				"institution_id": actor.InstitutionID,
				"voters":         len(voters),
				"backup_key":     backupKey,
			},
		})
		return nil
	})
	if err != nil {
		return nil, wrap("failed to force delete import", err)
	}
	e.dropAsset(ctx, fileKey)
	return backup, nil
}

type backupVote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	CandidateID *string   `json:"candidate_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func backupVoters(ctx context.Context, tx *store.Store, voters []election.Voter) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"voter_identifier", "voter_name", "eligible", "created_at", "votes"})
	for _, v := range voters {
		votes, err := tx.ListVoterVotes(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		rows := make([]backupVote, 0, len(votes))
		for _, vote := range votes {
			rows = append(rows, backupVote{
				ID:          vote.ID,
				ElectionID:  vote.ElectionID,
				CandidateID: vote.CandidateID,
				Timestamp:   vote.CreatedAt,
			})
		}
		encoded, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to encode votes: %w", err)
		}
		w.Write([]string{
			v.Identifier,
			v.Name,
			strconv.FormatBool(v.Eligible),
			v.CreatedAt.Format(time.RFC3339),
			string(encoded),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Engine) dropAsset(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := e.assets.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete asset", "key", key, "error", err)
	}
}
