// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package assets stores uploaded blobs on disk.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ipfs/go-datastore"
	flatfs "github.com/ipfs/go-ds-flatfs"
)

var ErrNotFound = errors.New("asset not found")

// Store keeps uploaded blobs (candidate photos, voter import files) in a
// sharded directory tree.
type Store struct {
	ds *flatfs.Datastore
}

// Open creates the directory on first use.
func Open(dir string) (*Store, error) {
	ds, err := flatfs.CreateOrOpen(dir, flatfs.NextToLast(2), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset store at %s: %w", dir, err)
	}
	return &Store{ds: ds}, nil
}

func (s *Store) Close() error {
	return s.ds.Close()
}

// Put stores data under a fresh key and returns the key.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	key := newKey()
	if err := s.ds.Put(ctx, datastore.NewKey(key), data); err != nil {
		return "", fmt.Errorf("failed to store asset: %w", err)
	}
	return key, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.ds.Get(ctx, datastore.NewKey(key))
	if errors.Is(err, datastore.ErrNotFound) || errors.Is(err, flatfs.ErrInvalidKey) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	return data, nil
}

// Copy duplicates the blob under a new key so that the copy can change or be
// deleted independently of the original.
func (s *Store) Copy(ctx context.Context, key string) (string, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, data)
}

// Delete is a no-op for unknown keys.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.ds.Delete(ctx, datastore.NewKey(key))
	if err != nil && !errors.Is(err, datastore.ErrNotFound) {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// flatfs accepts only [0-9A-Z+-_=] in keys.
func newKey() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
