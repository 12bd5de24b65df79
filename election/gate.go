// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"strings"
	"time"

	"github.com/moznion/go-optional"
)

// IsOpen decides whether voting is permitted at now.
//
// With both bounds set the window is [start, end). With only a start it is
// open-ended. Without a start the election is closed, whatever end says.
func IsOpen(now time.Time, start, end optional.Option[time.Time]) bool {
	s, err := start.Take()
	if err != nil {
		return false
	}
	if now.Before(s) {
		return false
	}
	if e, err := end.Take(); err == nil {
		return now.Before(e)
	}
	return true
}

var ErrBadInstant = errors.New("unrecognised datetime")

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant parses an RFC 3339 datetime, or a datetime without offset
// which is then read in loc. The result is in UTC.
func ParseInstant(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrBadInstant
}

// ParseOptionalInstant treats an empty string as absent.
func ParseOptionalInstant(raw string, loc *time.Location) (optional.Option[time.Time], error) {
	if strings.TrimSpace(raw) == "" {
		return optional.None[time.Time](), nil
	}
	t, err := ParseInstant(raw, loc)
	if err != nil {
		return optional.None[time.Time](), err
	}
	return optional.Some(t), nil
}

// ValidWindow enforces start < end when both are set.
func ValidWindow(start, end optional.Option[time.Time]) error {
	s, errS := start.Take()
	e, errE := end.Take()
	if errS == nil && errE == nil && !s.Before(e) {
		return Validation("start must be before end")
	}
	return nil
}
