package puzzle

import (
	"sort"

	"github.com/astraeum/oraclecore/core"
)

// DeceptiveMark prefixes hints replaced by a corruption twist. The player sees
// the mark only when a truth-detection mechanic reveals it; judging ignores
// hints entirely.
const DeceptiveMark = "[DECEPTIVE] "

// CorruptHints replaces fraction of the hints with marked false hints,
// recording the corrupted indices in LieIndices. Indices are drawn without
// replacement from r. Returns the number of hints corrupted.
func CorruptHints(st *core.PuzzleState, fraction float64, r core.Rand) int {
	n := len(st.Hints)
	if n == 0 || fraction <= 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	numLies := int(float64(n) * fraction)
	if numLies == 0 {
		return 0
	}

	// Partial Fisher-Yates over the index set gives a uniform sample.
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < numLies; i++ {
		j := i + r.IntN(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	lies := indices[:numLies]
	sort.Ints(lies)

	for _, i := range lies {
		st.Hints[i] = DeceptiveMark + st.Hints[i]
	}
	st.LieIndices = append([]int(nil), lies...)
	return numLies
}

// DecayHints removes fraction of the hints from the end of the list,
// modelling clues burned away over the solve. Returns the number removed.
func DecayHints(st *core.PuzzleState, fraction float64) int {
	n := len(st.Hints)
	if n == 0 || fraction <= 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	removed := int(float64(n) * fraction)
	st.Hints = st.Hints[:n-removed]
	return removed
}

// ScaleTimeLimit multiplies the time limit by factor, never dropping below
// floor seconds. A zero time limit (unlimited) is left untouched.
func ScaleTimeLimit(st *core.PuzzleState, factor float64, floor int) {
	if st.TimeLimit <= 0 {
		return
	}
	scaled := int(float64(st.TimeLimit) * factor)
	if scaled < floor {
		scaled = floor
	}
	st.TimeLimit = scaled
}

// SetRuleShiftCheckpoints arms mid-solve rule shifts at the given
// completion-percentage checkpoints.
func SetRuleShiftCheckpoints(st *core.PuzzleState, checkpoints ...int) {
	st.RuleShiftCheckpoints = append([]int(nil), checkpoints...)
}

// TerrainDrift arms terrain/structure drift applied on a fixed tick interval.
func TerrainDrift(st *core.PuzzleState, tickSeconds int, magnitude string) {
	st.SetTwist("terrain_drift", map[string]any{
		"tick_seconds": tickSeconds,
		"magnitude":    magnitude,
	})
}
