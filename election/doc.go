// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election holds the rules of an election, free of storage and HTTP.

# Temporal Gate

IsOpen is the only place openness is decided:

	start and end set → start <= now < end
	start only        → start <= now
	no start          → closed

# Tally

ComputeTally turns per-candidate counts into rows with percentages rounded to
two decimals, plus a synthetic row for blank votes. BuildTimeline buckets
votes by minute or hour.

# Resolution

Resolve applies single-round plurality or two-round majority rules and
reports no_votes, single_round_result, first_round_elected or
second_round_required.

# Errors

Every error leaving the core packages is an *Error whose Kind tells the HTTP
layer which status to use.
*/
package election
