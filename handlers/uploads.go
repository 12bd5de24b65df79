// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/scrutin/election"
)

const (
	// MaxPhotoBytes caps candidate photo uploads
	MaxPhotoBytes = 5 << 20
	// MaxImportBytes caps voter file uploads
	MaxImportBytes = 10 << 20

	// room for the other form fields and multipart framing
	formOverhead = 1 << 20
)

// readUpload parses a multipart form and returns the named file. A missing
// file yields nil data and no error.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, "", election.Validation("%s exceeds the %s limit", field, humanize.IBytes(uint64(limit)))
		}
		return nil, "", election.Validation("invalid multipart form")
	}

	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", election.Validation("could not read %s", field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, "", election.Validation("could not read %s", field)
	}
	if int64(len(data)) > limit {
		return nil, "", election.Validation("%s exceeds the %s limit", field, humanize.IBytes(uint64(limit)))
	}
	return data, header.Filename, nil
}
