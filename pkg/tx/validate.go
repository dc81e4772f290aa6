package tx

import (
	"errors"
	"fmt"

	"github.com/nodecoin/nodecoin/pkg/crypto"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// Per-transaction validation errors (SPEC_FULL.md §7).
var (
	ErrBadTransactionID = errors.New("tx: id does not match recomputed id")
	ErrUnknownUTXO      = errors.New("tx: referenced output is not unspent")
	ErrInvalidSignature = errors.New("tx: signature does not verify")
	ErrAmountMismatch   = errors.New("tx: input total does not equal output total")
)

// UTXOProvider resolves an outpoint to its unspent output. The in-memory
// UTXO set (internal/utxo) implements it, and tests supply small map-based
// fakes — mirroring the teacher's tx.UTXOProvider seam.
type UTXOProvider interface {
	Get(o types.Outpoint) (UnspentTxOut, bool)
}

// Validate checks a non-coinbase transaction against the UTXO set U per
// SPEC_FULL.md §4.2:
//  1. tx.id matches the recomputed id.
//  2. Each input references an unspent output and its signature verifies
//     against that output's address.
//  3. The sum of referenced input amounts equals the sum of output amounts.
func (t *Transaction) Validate(u UTXOProvider) error {
	if t.ID != t.ComputeID() {
		return ErrBadTransactionID
	}

	var totalIn uint64
	msg := t.SignMessage()
	for i, in := range t.TxIns {
		ref, ok := u.Get(types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex})
		if !ok {
			return fmt.Errorf("input %d: %w: %s", i, ErrUnknownUTXO, in.PrevTxID)
		}
		if !crypto.Verify(msg, in.Signature, string(ref.Address)) {
			return fmt.Errorf("input %d: %w", i, ErrInvalidSignature)
		}
		totalIn += ref.Amount
	}

	if totalIn != t.TotalOutputValue() {
		return fmt.Errorf("%w: in=%d out=%d", ErrAmountMismatch, totalIn, t.TotalOutputValue())
	}

	return nil
}
