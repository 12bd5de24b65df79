// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"sort"
	"strings"
	"time"

	"github.com/moznion/go-optional"
)

// Unit is a timeline bucket granularity.
type Unit string

const (
	UnitMinute Unit = "minute"
	UnitHour   Unit = "hour"
)

// ParseUnit defaults to minutes for anything but "hour".
func ParseUnit(raw string) Unit {
	if strings.EqualFold(strings.TrimSpace(raw), string(UnitHour)) {
		return UnitHour
	}
	return UnitMinute
}

// Truncate floors t to the unit in loc. Working in loc keeps buckets aligned
// for zones whose offset is not a whole hour.
func (u Unit) Truncate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	minute := t.Minute()
	if u == UnitHour {
		minute = 0
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, loc)
}

type BucketCount struct {
	CandidateID *string `json:"candidate_id"`
	Votes       int     `json:"votes"`
}

type Bucket struct {
	Timestamp   time.Time     `json:"timestamp"`
	Total       int           `json:"total"`
	ByCandidate []BucketCount `json:"by_candidate"`
}

// BuildTimeline groups votes into sparse buckets sorted by time. from and to
// are inclusive filters on the vote timestamp.
func BuildTimeline(votes []Vote, unit Unit, from, to optional.Option[time.Time], loc *time.Location) []Bucket {
	lo, hasLo := takeTime(from)
	hi, hasHi := takeTime(to)

	type key struct {
		at        int64
		candidate string
		blank     bool
	}
	counts := map[key]int{}
	stamps := map[int64]time.Time{}

	for _, v := range votes {
		if hasLo && v.CreatedAt.Before(lo) {
			continue
		}
		if hasHi && v.CreatedAt.After(hi) {
			continue
		}
		b := unit.Truncate(v.CreatedAt, loc)
		k := key{at: b.UnixNano(), blank: v.CandidateID == nil}
		if v.CandidateID != nil {
			k.candidate = *v.CandidateID
		}
		counts[k]++
		stamps[k.at] = b
	}

	byStamp := map[int64]*Bucket{}
	for k, n := range counts {
		b, ok := byStamp[k.at]
		if !ok {
			b = &Bucket{Timestamp: stamps[k.at]}
			byStamp[k.at] = b
		}
		bc := BucketCount{Votes: n}
		if !k.blank {
			id := k.candidate
			bc.CandidateID = &id
		}
		b.ByCandidate = append(b.ByCandidate, bc)
		b.Total += n
	}

	out := make([]Bucket, 0, len(byStamp))
	for _, b := range byStamp {
		sort.Slice(b.ByCandidate, func(i, j int) bool {
			ci, cj := b.ByCandidate[i].CandidateID, b.ByCandidate[j].CandidateID
			if ci == nil || cj == nil {
				return cj == nil && ci != nil
			}
			return *ci < *cj
		})
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func takeTime(o optional.Option[time.Time]) (time.Time, bool) {
	t, err := o.Take()
	return t, err == nil
}
