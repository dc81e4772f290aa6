package consensus

import (
	"testing"

	"github.com/nodecoin/nodecoin/pkg/block"
)

func chainAt(indices []uint64, timestamps []uint64, difficulties []uint32) []*block.Block {
	chain := make([]*block.Block, len(indices))
	for i := range indices {
		chain[i] = &block.Block{Index: indices[i], Timestamp: timestamps[i], Difficulty: difficulties[i]}
	}
	return chain
}

func TestRequiredDifficulty_EmptyChain(t *testing.T) {
	if got := RequiredDifficulty(nil); got != StartDifficulty {
		t.Errorf("RequiredDifficulty(nil) = %d, want %d", got, StartDifficulty)
	}
}

func TestRequiredDifficulty_NotAtBoundary(t *testing.T) {
	chain := chainAt([]uint64{0, 1, 2}, []uint64{0, 10, 20}, []uint32{1, 1, 1})
	if got := RequiredDifficulty(chain); got != 1 {
		t.Errorf("RequiredDifficulty() = %d, want 1 (carry forward)", got)
	}
}

func TestRequiredDifficulty_FastBlocks_Increments(t *testing.T) {
	timestamps := make([]uint64, 11)
	difficulties := make([]uint32, 11)
	indices := make([]uint64, 11)
	for i := range timestamps {
		indices[i] = uint64(i)
		timestamps[i] = uint64(i) // 1 second apart, far under expected 100s
		difficulties[i] = 1
	}
	chain := chainAt(indices, timestamps, difficulties)

	got := RequiredDifficulty(chain)
	if got != 2 {
		t.Errorf("RequiredDifficulty() = %d, want 2 after fast blocks", got)
	}
}

func TestRequiredDifficulty_SlowBlocks_Decrements(t *testing.T) {
	timestamps := make([]uint64, 11)
	difficulties := make([]uint32, 11)
	indices := make([]uint64, 11)
	for i := range timestamps {
		indices[i] = uint64(i)
		timestamps[i] = uint64(i) * 1000 // far over expected 100s
		difficulties[i] = 5
	}
	chain := chainAt(indices, timestamps, difficulties)

	got := RequiredDifficulty(chain)
	if got != 4 {
		t.Errorf("RequiredDifficulty() = %d, want 4 after slow blocks", got)
	}
}

func TestRequiredDifficulty_SlowBlocks_FlooredAtZero(t *testing.T) {
	timestamps := make([]uint64, 11)
	difficulties := make([]uint32, 11)
	indices := make([]uint64, 11)
	for i := range timestamps {
		indices[i] = uint64(i)
		timestamps[i] = uint64(i) * 1000
		difficulties[i] = 0
	}
	chain := chainAt(indices, timestamps, difficulties)

	got := RequiredDifficulty(chain)
	if got != 0 {
		t.Errorf("RequiredDifficulty() = %d, want floored at 0", got)
	}
}

func TestAccumulatedDifficulty(t *testing.T) {
	chain := chainAt([]uint64{0, 1, 2}, []uint64{0, 0, 0}, []uint32{0, 1, 2})
	// 2^0 + 2^1 + 2^2 = 1 + 2 + 4 = 7
	if got := AccumulatedDifficulty(chain); got != 7 {
		t.Errorf("AccumulatedDifficulty() = %d, want 7", got)
	}
}
