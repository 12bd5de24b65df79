// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"math"
	"sort"
)

// NullCandidateName labels the synthetic row holding blank votes.
const NullCandidateName = "No selection"

// Row is one line of a tally. CandidateID is nil for the blank-vote row.
type Row struct {
	CandidateID   *string `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	Votes         int     `json:"votes"`
	Percent       float64 `json:"percent"`
}

type Tally struct {
	TotalVotes        int
	Candidates        []Row
	Null              Row
	ParticipationRate float64
}

// Rows returns the candidate rows followed by the blank-vote row.
func (t Tally) Rows() []Row {
	rows := make([]Row, 0, len(t.Candidates)+1)
	rows = append(rows, t.Candidates...)
	return append(rows, t.Null)
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Percent is part/total as a percentage, 0 when total is 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

// ComputeTally aggregates per-candidate counts. candidates keeps its order in
// the result; counts is keyed by candidate id; nullVotes are ballots with no
// selection; eligible is the institution's eligible voter count.
func ComputeTally(candidates []Candidate, counts map[string]int, nullVotes, eligible int) Tally {
	total := nullVotes
	for _, n := range counts {
		total += n
	}

	t := Tally{
		TotalVotes: total,
		Candidates: make([]Row, 0, len(candidates)),
		Null: Row{
			CandidateName: NullCandidateName,
			Votes:         nullVotes,
			Percent:       Percent(nullVotes, total),
		},
		ParticipationRate: Percent(total, eligible),
	}
	for _, c := range candidates {
		id := c.ID
		n := counts[id]
		t.Candidates = append(t.Candidates, Row{
			CandidateID:   &id,
			CandidateName: c.Name,
			Votes:         n,
			Percent:       Percent(n, total),
		})
	}
	return t
}

// ByVotes returns a copy of rows sorted by descending votes. Ties keep their
// input order.
func ByVotes(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Votes > out[j].Votes
	})
	return out
}

// TopByVotes returns at most n rows with the most votes.
func TopByVotes(rows []Row, n int) []Row {
	sorted := ByVotes(rows)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
