// Package chain implements the node's canonical blockchain: an ordered
// block list plus the UTXO set that list implies (spec.md §4.6).
package chain

import (
	"fmt"
	"sync"

	"github.com/nodecoin/nodecoin/config"
	"github.com/nodecoin/nodecoin/internal/consensus"
	"github.com/nodecoin/nodecoin/internal/log"
	"github.com/nodecoin/nodecoin/internal/mempool"
	"github.com/nodecoin/nodecoin/internal/utxo"
	"github.com/nodecoin/nodecoin/pkg/block"
)

// Chain is the canonical block list plus the UTXO set it implies. Its
// write lock covers both together since the two are always mutated as a
// unit. Lock ordering across the node is chain → mempool → utxos →
// wallet (spec.md §5); Chain itself sits at the front of that order, and
// internally acquires the mempool's lock (via pool.Update) only after
// its own state is already consistent.
type Chain struct {
	mu     sync.RWMutex
	engine consensus.Engine
	pool   *mempool.Pool
	blocks []*block.Block
	utxos  *utxo.Set
}

// New creates a chain seeded with the canonical genesis block and an
// empty UTXO set. pool may be nil for tests that don't need mempool
// eviction wired in.
func New(engine consensus.Engine, pool *mempool.Pool) *Chain {
	return &Chain{
		engine: engine,
		pool:   pool,
		blocks: []*block.Block{block.Genesis(config.StartDifficulty)},
		utxos:  utxo.New(),
	}
}

// Latest returns the chain tip.
func (c *Chain) Latest() *block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1]
}

// Blocks returns a copy of the full chain, genesis first.
func (c *Chain) Blocks() []*block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*block.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Height returns the tip's index.
func (c *Chain) Height() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1].Index
}

// UTXOSet returns an independent snapshot of the current UTXO set; the
// caller may read or even mutate it without affecting the chain.
func (c *Chain) UTXOSet() *utxo.Set {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.utxos.Clone()
}

// RequiredDifficulty reports the difficulty the next block must meet.
func (c *Chain) RequiredDifficulty() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return consensus.RequiredDifficulty(c.blocks)
}

// Add appends next iff it is valid against the current tip under the
// active validator strategy and its transactions process cleanly
// against the current UTXO set (spec.md §4.6). Rejection is a silent
// no-op (bool return, spec.md §7's propagation policy); the reason is
// logged at Warn.
func (c *Chain) Add(next *block.Block) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.blocks[len(c.blocks)-1]
	required := consensus.RequiredDifficulty(c.blocks)
	if err := c.engine.IsValid(tip, next, required); err != nil {
		log.Chain.Warn().Err(err).Uint64("index", next.Index).Msg("rejected block")
		return false
	}

	processed, err := utxo.Process(next.Data, c.utxos, next.Index, config.CoinbaseAmount)
	if err != nil {
		log.Chain.Warn().Err(err).Uint64("index", next.Index).Msg("rejected block transactions")
		return false
	}

	c.blocks = append(c.blocks, next)
	c.utxos = processed
	if c.pool != nil {
		c.pool.Update(c.utxos)
	}
	return true
}

// Replace swaps in candidate wholesale iff it replays cleanly from the
// canonical genesis against a fresh UTXO set and is strictly heavier
// than the current chain (spec.md §4.6). The receiver never trusts the
// sender's implicit UTXO state — every block is re-validated and
// re-processed from scratch.
func (c *Chain) Replace(candidate []*block.Block) bool {
	if len(candidate) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !candidate[0].Equal(c.blocks[0]) {
		log.Chain.Warn().Msg("rejected candidate chain: genesis mismatch")
		return false
	}

	replayed, err := c.replay(candidate)
	if err != nil {
		log.Chain.Warn().Err(err).Msg("rejected candidate chain")
		return false
	}

	if consensus.AccumulatedDifficulty(candidate) <= consensus.AccumulatedDifficulty(c.blocks) {
		log.Chain.Warn().Msg("rejected candidate chain: not heavier than the current chain")
		return false
	}

	c.blocks = candidate
	c.utxos = replayed
	if c.pool != nil {
		c.pool.Update(c.utxos)
	}
	return true
}

// replay re-validates every block in candidate against its predecessor
// and re-plays its transactions against a set that starts empty at
// genesis, realizing the replay invariant of spec.md §4.6.
func (c *Chain) replay(candidate []*block.Block) (*utxo.Set, error) {
	u := utxo.New()
	for i := 1; i < len(candidate); i++ {
		prev, next := candidate[i-1], candidate[i]
		required := consensus.RequiredDifficulty(candidate[:i])
		if err := c.engine.IsValid(prev, next, required); err != nil {
			return nil, fmt.Errorf("block %d: %w", next.Index, err)
		}
		processed, err := utxo.Process(next.Data, u, next.Index, config.CoinbaseAmount)
		if err != nil {
			return nil, fmt.Errorf("block %d transactions: %w", next.Index, err)
		}
		u = processed
	}
	return u, nil
}
