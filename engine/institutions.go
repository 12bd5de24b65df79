// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/scrutin/auth"
	"github.com/danielhkuo/scrutin/election"
	"github.com/danielhkuo/scrutin/store"
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Name        string
	Description string
}

// Register creates an institution account.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (election.Institution, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Username == "" || in.Email == "" || in.Name == "" {
		return election.Institution{}, election.Validation("username, email and institution_name are required")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return election.Institution{}, election.Validation("password must be at least %d characters", auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return election.Institution{}, election.Internal("failed to hash password", err)
	}
	inst := election.Institution{
		ID:           auth.NewID(),
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		Description:  strings.TrimSpace(in.Description),
		PasswordHash: hash,
		CreatedAt:    e.Now(),
	}

	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateInstitution(ctx, inst); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionInstitutionRegistered,
			Actor:         inst.Username,
			InstitutionID: inst.ID,
			Detail:        map[string]any{"institution_id": inst.ID, "name": inst.Name},
		})
		return nil
	})
	if errors.Is(err, election.ErrDuplicate) {
		return election.Institution{}, election.Conflict("username, email or institution name already in use")
	}
	if err != nil {
		return election.Institution{}, wrap("failed to register institution", err)
	}
	slog.Info("institution registered", "event", "institution_registered", "institution_id", inst.ID)
	return inst, nil
}

// Login accepts the institution name (any case) or the account username.
func (e *Engine) Login(ctx context.Context, login, password string) (election.Institution, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return election.Institution{}, election.Validation("username and password are required")
	}
	inst, err := e.store.FindInstitutionByLogin(ctx, login)
	if errors.Is(err, election.ErrInstitutionNotFound) {
		return election.Institution{}, election.ErrBadCredentials
	}
	if err != nil {
		return election.Institution{}, wrap("failed to load institution", err)
	}
	if err := auth.CheckPassword(inst.PasswordHash, password); err != nil {
		return election.Institution{}, election.ErrBadCredentials
	}
	return inst, nil
}

func (e *Engine) Institution(ctx context.Context, id string) (election.Institution, error) {
	inst, err := e.store.GetInstitution(ctx, id)
	if err != nil {
		return inst, wrap("failed to load institution", err)
	}
	return inst, nil
}

// UpdateInstitutionInput changes only the non-nil fields.
type UpdateInstitutionInput struct {
	Name        *string
	Description *string
	Email       *string
	Password    *string
}

func (e *Engine) UpdateInstitution(ctx context.Context, actor Actor, in UpdateInstitutionInput) (election.Institution, error) {
	inst, err := e.store.GetInstitution(ctx, actor.InstitutionID)
	if err != nil {
		return inst, wrap("failed to load institution", err)
	}

	changed := false
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" && strings.TrimSpace(*in.Name) != inst.Name {
		inst.Name = strings.TrimSpace(*in.Name)
		changed = true
	}
	if in.Description != nil && *in.Description != inst.Description {
		inst.Description = strings.TrimSpace(*in.Description)
		changed = true
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" && strings.TrimSpace(*in.Email) != inst.Email {
		inst.Email = strings.TrimSpace(*in.Email)
		changed = true
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < auth.MinPasswordLength {
			return inst, election.Validation("password must be at least %d characters", auth.MinPasswordLength)
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return inst, election.Internal("failed to hash password", err)
		}
		inst.PasswordHash = hash
		changed = true
	}
	if !changed {
		return inst, nil
	}

	err = e.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.UpdateInstitution(ctx, inst); err != nil {
			return err
		}
		e.audit(ctx, tx, election.AuditEntry{
			Action:        election.ActionInstitutionUpdated,
			Actor:         actor.Username,
			InstitutionID: inst.ID,
			Detail:        map[string]any{"institution_id": inst.ID},
		})
		return nil
	})
	if errors.Is(err, election.ErrDuplicate) {
		return inst, election.Conflict("email or institution name already in use")
	}
	if err != nil {
		return inst, wrap("failed to update institution", err)
	}
	return inst, nil
}
