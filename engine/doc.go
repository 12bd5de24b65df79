// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine runs the election use cases on top of the store.

# Construction

	st := store.New(conn)
	eng := engine.New(st, assetStore, election.SystemClock{}, loc)

The clock drives the temporal gate and the closer; tests pass an
*election.FixedClock. loc is the zone for datetimes without offset and for
timeline buckets.

# Vote Casting

CastVote checks, in order:

 1. the election exists and is open (closing it first if its end passed)
 2. the voter exists
 3. the candidate, if any, belongs to the election
 4. the voter has not voted yet

The prior-vote check and the insert share one transaction; the
(election, voter) unique constraint rejects a concurrent duplicate, which
surfaces as election.ErrAlreadyVoted.

# Closing

EnsureClosed is called on every read of an election. Past its end the
election is flagged closed and exactly one election_closed audit entry is
written. SweepClosed does the same for every due election and backs the
optional cron sweep.

# Rounds

AdvanceToRound2 creates a new round-2 election with copies of the
qualifiers (photos duplicated in the asset store) unless CreateNewElection
is false, in which case the election moves to round 2 in place. FinalizeWinner
records a manual winner.

# Audit

Audit entries are written inside the transaction of the change they describe,
behind a savepoint. A failed entry is logged at warn level and dropped.

# Errors

Every method returns *election.Error values (or errors wrapping one);
storage failures become election.KindInternal.
*/
package engine
