// Package mempool holds transactions waiting for block inclusion
// (SPEC_FULL.md §4.3). Unlike the teacher's internal/mempool/pool.go,
// there is no fee market here — spec.md's mempool has no concept of fee
// rate, eviction by fee, coinbase maturity, or token/stake validation, so
// none of that machinery survives; see DESIGN.md.
package mempool

import (
	"sync"

	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// Pool holds unconfirmed transactions in insertion order, the order
// miners pack them into a block.
type Pool struct {
	mu     sync.RWMutex
	order  []types.Hash
	byHash map[types.Hash]*tx.Transaction
	spends map[types.Outpoint]types.Hash
}

// New creates an empty mempool.
func New() *Pool {
	return &Pool{
		byHash: make(map[types.Hash]*tx.Transaction),
		spends: make(map[types.Outpoint]types.Hash),
	}
}

// Add validates transaction against u and appends it iff it validates and
// no existing pool entry already consumes one of its inputs
// (SPEC_FULL.md §4.3 add). Returns false on either rejection; never errors
// per spec.md §7's "admit errors return false" policy.
func (p *Pool) Add(transaction *tx.Transaction, u tx.UTXOProvider) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byHash[transaction.ID]; exists {
		return false
	}
	for _, in := range transaction.TxIns {
		op := types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex}
		if _, conflict := p.spends[op]; conflict {
			return false
		}
	}
	if err := transaction.Validate(u); err != nil {
		return false
	}

	p.byHash[transaction.ID] = transaction
	p.order = append(p.order, transaction.ID)
	for _, in := range transaction.TxIns {
		p.spends[types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex}] = transaction.ID
	}
	return true
}

// Update removes every entry that references an input no longer present
// in u, scanning right-to-left to keep remaining indices stable
// (SPEC_FULL.md §4.3 update). Called after every chain.add/replace so the
// pool's invariant — every entry independently validates against the
// current U — holds.
func (p *Pool) Update(u tx.UTXOProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.order) - 1; i >= 0; i-- {
		id := p.order[i]
		t := p.byHash[id]
		stale := false
		for _, in := range t.TxIns {
			if _, ok := u.Get(types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex}); !ok {
				stale = true
				break
			}
		}
		if stale {
			p.removeAt(i)
		}
	}
}

// removeAt deletes the entry at index i of p.order. Caller holds p.mu.
func (p *Pool) removeAt(i int) {
	id := p.order[i]
	t := p.byHash[id]
	for _, in := range t.TxIns {
		delete(p.spends, types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex})
	}
	delete(p.byHash, id)
	p.order = append(p.order[:i], p.order[i+1:]...)
}

// RemoveConfirmed drops every pool entry that was included in a mined
// block, so it is not offered again to the next miner.
func (p *Pool) RemoveConfirmed(confirmed []*tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range confirmed {
		if i := p.indexOf(t.ID); i >= 0 {
			p.removeAt(i)
		}
	}
}

func (p *Pool) indexOf(id types.Hash) int {
	for i, h := range p.order {
		if h == id {
			return i
		}
	}
	return -1
}

// Has reports whether a transaction id is currently pooled.
func (p *Pool) Has(id types.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byHash[id]
	return ok
}

// Get looks up a pooled transaction by its id. It is a lookup by
// transaction id, not by outpoint, so Pool does not implement
// tx.UTXOProvider.
func (p *Pool) Get(id types.Hash) (*tx.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.byHash[id]
	return t, ok
}

// Transactions returns every pooled transaction in insertion order, the
// order a miner packs them into a block.
func (p *Pool) Transactions() []*tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*tx.Transaction, len(p.order))
	for i, id := range p.order {
		out[i] = p.byHash[id]
	}
	return out
}

// Count returns the number of pooled transactions.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}
