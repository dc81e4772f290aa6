// Package utxo holds the in-memory unspent-transaction-output set and the
// block-level validation/transformation that keeps it in sync with the
// chain (SPEC_FULL.md §4.2). There is no persistence layer here: the set
// is replaced wholesale on every accepted `replace`, matching spec.md's
// "UTXO set ... replaced wholesale when the chain is replaced" — see
// DESIGN.md for why the teacher's badger-backed internal/utxo/store.go
// was dropped rather than adapted.
package utxo

import (
	"sync"

	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// Set is the UTXO set: an unordered map keyed by outpoint, implementing
// tx.UTXOProvider so validation code depends only on that interface.
type Set struct {
	mu   sync.RWMutex
	utxo map[types.Outpoint]tx.UnspentTxOut
}

// New creates an empty UTXO set.
func New() *Set {
	return &Set{utxo: make(map[types.Outpoint]tx.UnspentTxOut)}
}

// Get implements tx.UTXOProvider.
func (s *Set) Get(o types.Outpoint) (tx.UnspentTxOut, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.utxo[o]
	return u, ok
}

// Has reports whether an outpoint is currently unspent.
func (s *Set) Has(o types.Outpoint) bool {
	_, ok := s.Get(o)
	return ok
}

// Put inserts or overwrites a single unspent output.
func (s *Set) Put(u tx.UnspentTxOut) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.utxo[u.Outpoint()] = u
}

// Delete removes an outpoint, if present.
func (s *Set) Delete(o types.Outpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.utxo, o)
}

// ByAddress returns every unspent output locked to address, used by the
// wallet's balance() and coin selection.
func (s *Set) ByAddress(address types.Address) []tx.UnspentTxOut {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []tx.UnspentTxOut
	for _, u := range s.utxo {
		if u.Address == address {
			out = append(out, u)
		}
	}
	return out
}

// Balance sums every unspent output locked to address.
func (s *Set) Balance(address types.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total uint64
	for _, u := range s.utxo {
		if u.Address == address {
			total += u.Amount
		}
	}
	return total
}

// Clone returns a deep copy. Process builds each block's U' on a clone so
// the input set is never mutated, and chain.UTXOSet hands callers a clone
// as an independent snapshot.
func (s *Set) Clone() *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := New()
	for k, v := range s.utxo {
		clone.utxo[k] = v
	}
	return clone
}

// ReplaceWith atomically swaps this set's contents with a copy of
// other's in one step. internal/chain does not use it: it commits a
// processed set by replacing its *Set pointer.
func (s *Set) ReplaceWith(other *Set) {
	other.mu.RLock()
	snapshot := make(map[types.Outpoint]tx.UnspentTxOut, len(other.utxo))
	for k, v := range other.utxo {
		snapshot[k] = v
	}
	other.mu.RUnlock()

	s.mu.Lock()
	s.utxo = snapshot
	s.mu.Unlock()
}

// Len returns the number of unspent outputs.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.utxo)
}
