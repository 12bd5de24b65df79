// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

// Status is the outcome of resolving a tally.
type Status string

const (
	StatusNoVotes             Status = "no_votes"
	StatusSingleRoundResult   Status = "single_round_result"
	StatusFirstRoundElected   Status = "first_round_elected"
	StatusSecondRoundRequired Status = "second_round_required"
)

// Resolution is the outcome of a round. Winner is set for single_round_result
// and first_round_elected; Qualified only for second_round_required.
type Resolution struct {
	Status    Status
	Winner    *Row
	Qualified []Row
}

// Resolve applies the election's scrutin rules to a tally.
func Resolve(e Election, t Tally) Resolution {
	ranked := ByVotes(t.Candidates)

	if e.ScrutinType != TwoRound {
		// blank ballots still count as votes; the top candidate wins
		if len(ranked) == 0 || t.TotalVotes == 0 {
			return Resolution{Status: StatusNoVotes}
		}
		w := ranked[0]
		return Resolution{Status: StatusSingleRoundResult, Winner: &w}
	}

	for _, r := range ranked {
		if r.Percent >= e.MajorityThreshold && r.Votes > 0 {
			w := r
			return Resolution{Status: StatusFirstRoundElected, Winner: &w}
		}
	}

	return Resolution{
		Status:    StatusSecondRoundRequired,
		Qualified: Qualifiers(ranked, e.AdvanceThreshold),
	}
}

// Qualifiers returns the rows at or above the advance threshold. When fewer
// than two qualify, the top two by votes are returned instead so a runoff is
// always possible.
func Qualifiers(rows []Row, advanceThreshold float64) []Row {
	ranked := ByVotes(rows)
	var q []Row
	for _, r := range ranked {
		if r.Percent >= advanceThreshold {
			q = append(q, r)
		}
	}
	if len(q) < 2 {
		return TopByVotes(ranked, 2)
	}
	return q
}
