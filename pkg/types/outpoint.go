package types

import "fmt"

// Outpoint references a specific output of a specific transaction:
// (prev_tx_id, prev_index) in spec terms. It is the UTXO set's key.
type Outpoint struct {
	TxID  Hash   `json:"tx_out_id"`
	Index uint64 `json:"tx_out_index"`
}

// IsZero reports whether this is the coinbase sentinel shape: an empty
// prev_tx_id. prev_index on a coinbase input carries the block height, not
// zero, so only TxID is checked here — callers distinguish coinbase inputs
// by TxID.IsZero(), matching spec.md §3's coinbase definition.
func (o Outpoint) IsZero() bool {
	return o.TxID.IsZero()
}

// String returns "txid:index" in hex.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID.String(), o.Index)
}
