// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package importer parses voter files.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	ErrEmptyFile  = errors.New("file is empty")
	ErrNoHeader   = errors.New("missing header row")
	ErrNoIDColumn = errors.New("no identifier column (identifier, id or email)")
)

// Header aliases, matched case-insensitively.
var (
	identifierHeaders = []string{"identifier", "id", "email"}
	nameHeaders       = []string{"name", "full_name", "nom"}
	eligibleHeaders   = []string{"eligible"}
)

// Row is one parsed voter.
type Row struct {
	Identifier string
	Name       string
	Eligible   bool
}

// Result holds the parsed rows and the counts reported to the uploader.
type Result struct {
	Rows      []Row
	TotalRows int
	Eligible  int
	Invalid   int
}

// Parse reads a CSV voter file. UTF-8 (with or without BOM) is tried first,
// then Latin-1. Rows without an identifier are counted as invalid. A missing
// eligible column means every voter is eligible.
func Parse(raw []byte) (Result, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Result{}, ErrEmptyFile
	}
	text, err := decode(raw)
	if err != nil {
		return Result{}, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, ErrNoHeader
	}
	if err != nil {
		return Result{}, fmt.Errorf("invalid CSV header: %w", err)
	}

	idCol := column(header, identifierHeaders)
	if idCol < 0 {
		return Result{}, ErrNoIDColumn
	}
	nameCol := column(header, nameHeaders)
	eligibleCol := column(header, eligibleHeaders)

	var res Result
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("invalid CSV at row %d: %w", res.TotalRows+2, err)
		}
		res.TotalRows++

		identifier := field(record, idCol)
		if identifier == "" {
			res.Invalid++
			continue
		}
		row := Row{
			Identifier: identifier,
			Name:       field(record, nameCol),
			Eligible:   parseEligible(field(record, eligibleCol)),
		}
		if row.Eligible {
			res.Eligible++
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("could not decode file, use UTF-8 or Latin-1: %w", err)
	}
	return string(out), nil
}

func column(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), alias) {
				return i
			}
		}
	}
	return -1
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

// parseEligible treats blanks and unknown values as eligible.
func parseEligible(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "no", "n", "non", "faux":
		return false
	default:
		return true
	}
}
