package consensus

import (
	"github.com/nodecoin/nodecoin/config"
	"github.com/nodecoin/nodecoin/pkg/block"
)

// StartDifficulty re-exports config.StartDifficulty for callers that only
// import the consensus package.
const StartDifficulty = config.StartDifficulty

// RequiredDifficulty computes the difficulty the next block must meet,
// grounded on _examples/original_source/src/difficulter.rs's
// get_adjusted_difficulty/get_difficulty:
//   - empty chain → StartDifficulty.
//   - not at an adjustment boundary (or chain tip is genesis) → carry the
//     tip's difficulty forward unchanged.
//   - at a boundary → compare the time actually taken over the last
//     DifficultyAdjustmentInterval blocks against the expected time: less
//     than half → increment; more than double → decrement (floored at 0);
//     otherwise unchanged.
func RequiredDifficulty(chain []*block.Block) uint32 {
	if len(chain) == 0 {
		return StartDifficulty
	}
	latest := chain[len(chain)-1]
	if latest.Index == 0 || latest.Index%config.DifficultyAdjustmentInterval != 0 {
		return latest.Difficulty
	}

	prev := chain[len(chain)-config.DifficultyAdjustmentInterval]
	expected := uint64(config.BlockGenerationInterval * config.DifficultyAdjustmentInterval)
	taken := latest.Timestamp - prev.Timestamp

	switch {
	case taken < expected/2:
		return prev.Difficulty + 1
	case taken > expected*2:
		if prev.Difficulty == 0 {
			return 0
		}
		return prev.Difficulty - 1
	default:
		return prev.Difficulty
	}
}

// AccumulatedDifficulty sums 2^difficulty across every block in chain,
// the metric chain.Replace uses to decide whether a candidate chain is
// heavier than the canonical one (spec.md §4.4, §4.6).
func AccumulatedDifficulty(chain []*block.Block) uint64 {
	var total uint64
	for _, b := range chain {
		total += uint64(1) << uint(b.Difficulty)
	}
	return total
}
