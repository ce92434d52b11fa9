package exchange

import (
	"math/rand"
)

// OutcomeFunc decides the fate of a simulated exchange. It returns a draw in
// [0, n); a draw of 0 means the exchange fails, anything else commits. The
// decision is injectable so tests can pin the outcome instead of relying on
// randomness.
type OutcomeFunc func() int

// RandomOutcome returns an OutcomeFunc drawing uniformly over [0, n), so the
// odds of failure are 1 in n. The default n of 5 gives the historical
// 4-out-of-5 success rate.
func RandomOutcome(n int) OutcomeFunc {
	if n < 2 {
		n = 5
	}
	return func() int {
		return rand.Intn(n)
	}
}

// AlwaysCommit returns an OutcomeFunc that never fails the random draw
func AlwaysCommit() OutcomeFunc {
	return func() int { return 1 }
}

// AlwaysFail returns an OutcomeFunc that always fails the random draw
func AlwaysFail() OutcomeFunc {
	return func() int { return 0 }
}
