// Package tx defines transaction types, id computation and validation for
// the UTXO engine (SPEC_FULL.md §4.2).
package tx

import (
	"strconv"
	"strings"

	"github.com/nodecoin/nodecoin/pkg/crypto"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// TxIn references an unspent output and carries the signature authorizing
// its spend.
type TxIn struct {
	PrevTxID  types.Hash `json:"tx_out_id"`
	PrevIndex uint64     `json:"tx_out_index"`
	Signature string     `json:"signature"`
}

// TxOut locks an amount to a raw public key (no script layer — see
// SPEC_FULL.md §11 Non-goals).
type TxOut struct {
	Address types.Address `json:"address"`
	Amount  uint64        `json:"amount"`
}

// UnspentTxOut is a TxOut still consumable, projected with the
// transaction id and index it belongs to. This is the UTXO set's value type.
type UnspentTxOut struct {
	TxID    types.Hash    `json:"tx_out_id"`
	Index   uint64        `json:"tx_out_index"`
	Address types.Address `json:"address"`
	Amount  uint64        `json:"amount"`
}

// Outpoint returns the (tx_out_id, tx_out_index) key identifying this output.
func (u UnspentTxOut) Outpoint() types.Outpoint {
	return types.Outpoint{TxID: u.TxID, Index: u.Index}
}

// Transaction is the UTXO engine's unit of transfer: an ordered list of
// TxIn spending prior outputs and an ordered list of TxOut creating new ones.
type Transaction struct {
	ID     types.Hash `json:"id"`
	TxIns  []TxIn     `json:"tx_ins"`
	TxOuts []TxOut    `json:"tx_outs"`
}

// IsCoinbase reports whether this transaction has the coinbase shape: a
// single input with an empty prev_tx_id. Per spec.md §3, the coinbase's
// prev_index carries the block height rather than being zero, so only the
// empty prev_tx_id distinguishes it.
func (t *Transaction) IsCoinbase() bool {
	return len(t.TxIns) == 1 && t.TxIns[0].PrevTxID.IsZero()
}

// ComputeID recomputes the deterministic transaction id: the SHA-256 hex
// digest of, in order, each input's (prev_tx_id ‖ prev_index) followed by
// each output's (address ‖ amount). Signatures never factor into the id —
// they are computed *from* it. Grounded on
// _examples/original_source/src/transaction.rs get_transaction_id, which
// concatenates decimal-string encodings rather than binary ones; this
// project follows that exact byte-level convention since spec.md §3 is
// silent on the concatenation encoding and the original source is
// authoritative for it.
func (t *Transaction) ComputeID() types.Hash {
	var txInContent strings.Builder
	for _, in := range t.TxIns {
		txInContent.WriteString(in.PrevTxID.String())
		txInContent.WriteString(strconv.FormatUint(in.PrevIndex, 10))
	}

	var txOutContent strings.Builder
	for _, out := range t.TxOuts {
		txOutContent.WriteString(string(out.Address))
		txOutContent.WriteString(strconv.FormatUint(out.Amount, 10))
	}

	return crypto.Hash([]byte(txInContent.String() + txOutContent.String()))
}

// SetID recomputes and stores this transaction's id.
func (t *Transaction) SetID() {
	t.ID = t.ComputeID()
}

// IDHex returns the hex string of the transaction id — the exact bytes
// that TxIn signatures are computed and verified over (see
// SPEC_FULL.md §12, SignMessage, and Builder.Sign in pkg/tx/builder.go).
func (t *Transaction) IDHex() string {
	return t.ID.String()
}

// SignMessage returns the ASCII bytes signed/verified for this
// transaction's inputs: the hex string of its id, not the raw 32-byte
// digest. Kept as a named helper since it is easy to accidentally sign
// t.ID[:] instead.
func (t *Transaction) SignMessage() []byte {
	return []byte(t.IDHex())
}

// TotalOutputValue sums all output amounts.
func (t *Transaction) TotalOutputValue() uint64 {
	var total uint64
	for _, out := range t.TxOuts {
		total += out.Amount
	}
	return total
}
