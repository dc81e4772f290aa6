// Package consensus implements the pluggable validator strategy
// (SPEC_FULL.md §4.5, §9 "Pluggable validator"): block linkage and
// tx-level UTXO validation live in pkg/block and pkg/tx respectively, but
// how a block earns the right to extend the chain — proof-of-work today,
// a documented proof-of-stake hook for tomorrow — is isolated behind this
// Engine interface so chain.Add/Replace and block generation never
// special-case a particular strategy.
package consensus

import (
	"context"

	"github.com/nodecoin/nodecoin/pkg/block"
	"github.com/nodecoin/nodecoin/pkg/tx"
)

// Engine is a consensus strategy: it decides whether a candidate block
// earns its place after prev, and how to mine one.
type Engine interface {
	// IsValid checks next against prev under this strategy's rules —
	// structural linkage (pkg/block.ValidateLinkage) plus whatever the
	// strategy layers on top (PoW's difficulty predicate, a future PoS
	// stake check). requiredDifficulty is the chain's current
	// RequiredDifficulty(chain), computed by the caller.
	IsValid(prev, next *block.Block, requiredDifficulty uint32) error

	// FindBlock mines the next block on top of prev carrying data, at the
	// given difficulty. Blocks until a valid block is found or ctx is
	// cancelled (spec.md §9's redesign: mining runs without holding the
	// chain lock, so cancellation here is real rather than cooperative
	// process-exit teardown).
	FindBlock(ctx context.Context, prev *block.Block, data []*tx.Transaction, difficulty uint32) (*block.Block, error)
}
