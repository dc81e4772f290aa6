package p2p

import (
	"github.com/nodecoin/nodecoin/internal/utxo"
	"github.com/nodecoin/nodecoin/pkg/block"
	"github.com/nodecoin/nodecoin/pkg/tx"
)

// ChainView is the subset of *chain.Chain the gossip layer needs. Accepting
// an interface here instead of the concrete type keeps this package
// testable without standing up a full chain.
type ChainView interface {
	Latest() *block.Block
	Blocks() []*block.Block
	Add(next *block.Block) bool
	Replace(candidate []*block.Block) bool
	UTXOSet() *utxo.Set
}

// PoolView is the subset of *mempool.Pool the gossip layer needs.
type PoolView interface {
	Transactions() []*tx.Transaction
	Add(t *tx.Transaction, u tx.UTXOProvider) bool
}
