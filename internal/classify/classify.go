// Package classify turns a raw probe outcome and the prior streak count
// for a service into a persisted status and the next streak count. It is
// a pure function with no I/O so the two-strike rule can be exercised
// exhaustively in tests without standing up a scheduler.
package classify

import "github.com/gnmradar/collector/pkg/types"

// Classify applies the two-strike classification rules:
//
//  1. Hard failure: streak increments; persisted status is WARN on the
//     first strike, CRIT from the second strike on.
//  2. Degraded: persisted status is WARN; the streak is left untouched —
//     a transient degraded observation neither extinguishes nor advances
//     a pending failure streak.
//  3. OK: streak resets to zero; persisted status is OK.
//  4. ImmediateCrit (only the ssl_cert already-expired case) bypasses the
//     two-strike rule entirely: persisted status is CRIT and the streak
//     is left untouched, since it reflects no information about
//     transport-level flakiness.
func Classify(result types.CheckResult, streakBefore int) (status, streakAfter int) {
	switch {
	case result.ImmediateCrit:
		return types.StatusCrit, streakBefore

	case result.HardFailure:
		streakAfter = streakBefore + 1
		if streakAfter == 1 {
			return types.StatusWarn, streakAfter
		}
		return types.StatusCrit, streakAfter

	case result.Degraded:
		return types.StatusWarn, streakBefore

	default:
		return types.StatusOK, 0
	}
}
