package utxo

import (
	"errors"
	"fmt"

	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// Block-level validation errors (SPEC_FULL.md §4.2, §7).
var (
	ErrBadCoinbaseShape  = errors.New("utxo: block's first transaction is not a valid coinbase")
	ErrBadCoinbaseAmount = errors.New("utxo: coinbase output does not equal the reward")
	ErrExtraCoinbase     = errors.New("utxo: only data[0] may be a coinbase transaction")
	ErrDoubleSpendBlock  = errors.New("utxo: two inputs in this block reference the same output")
)

// ValidateBlockTransactions checks a block's transaction list against U,
// which must reflect the chain state *before* this block (SPEC_FULL.md
// §4.2 "Block-level transaction validation"):
//  1. data[0] is a coinbase crediting exactly coinbaseAmount at height h.
//  2. No two inputs across the block share an outpoint.
//  3. Every other transaction validates against U.
//
// Per spec.md §9's documented caveat, transactions within the same block
// are validated against U as it stood before the block — a transaction
// cannot spend an output created earlier in the same block.
func ValidateBlockTransactions(data []*tx.Transaction, u *Set, height uint64, coinbaseAmount uint64) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: block has no transactions", ErrBadCoinbaseShape)
	}

	coinbase := data[0]
	if err := validateCoinbase(coinbase, height, coinbaseAmount); err != nil {
		return err
	}

	spent := make(map[types.Outpoint]int)
	for i, t := range data[1:] {
		idx := i + 1
		if t.IsCoinbase() {
			return fmt.Errorf("tx %d: %w", idx, ErrExtraCoinbase)
		}
		for _, in := range t.TxIns {
			op := types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex}
			if prev, dup := spent[op]; dup {
				return fmt.Errorf("tx %d: %w: outpoint also spent in tx %d", idx, ErrDoubleSpendBlock, prev)
			}
			spent[op] = idx
		}
		if err := t.Validate(u); err != nil {
			return fmt.Errorf("tx %d: %w", idx, err)
		}
	}
	return nil
}

func validateCoinbase(coinbase *tx.Transaction, height uint64, coinbaseAmount uint64) error {
	if coinbase.ID != coinbase.ComputeID() {
		return fmt.Errorf("%w: bad id", ErrBadCoinbaseShape)
	}
	if len(coinbase.TxIns) != 1 || !coinbase.TxIns[0].PrevTxID.IsZero() || coinbase.TxIns[0].PrevIndex != height {
		return fmt.Errorf("%w: input must be (empty, %d)", ErrBadCoinbaseShape, height)
	}
	if len(coinbase.TxOuts) != 1 {
		return fmt.Errorf("%w: must have exactly one output", ErrBadCoinbaseShape)
	}
	if coinbase.TxOuts[0].Amount != coinbaseAmount {
		return fmt.Errorf("%w: got %d, want %d", ErrBadCoinbaseAmount, coinbase.TxOuts[0].Amount, coinbaseAmount)
	}
	return nil
}

// Process validates data against u at height h, and on success returns the
// transformed set U' = (U ∖ consumed) ∪ produced (SPEC_FULL.md §4.2). It
// never mutates u: the caller commits the result (internal/chain swaps in
// the returned set) only once every block in a replay has processed successfully, preserving
// the replay invariant described in spec.md §4.6.
func Process(data []*tx.Transaction, u *Set, height uint64, coinbaseAmount uint64) (*Set, error) {
	if err := ValidateBlockTransactions(data, u, height, coinbaseAmount); err != nil {
		return nil, err
	}

	next := u.Clone()
	for _, t := range data {
		for _, in := range t.TxIns {
			if t.IsCoinbase() {
				continue
			}
			next.Delete(types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex})
		}
	}
	for _, t := range data {
		for i, out := range t.TxOuts {
			next.Put(tx.UnspentTxOut{
				TxID:    t.ID,
				Index:   uint64(i),
				Address: out.Address,
				Amount:  out.Amount,
			})
		}
	}
	return next, nil
}
