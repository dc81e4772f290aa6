// Package block defines the block type, its hash, and chain-linkage
// validation (SPEC_FULL.md §4.6).
package block

import (
	"encoding/binary"

	"github.com/nodecoin/nodecoin/pkg/crypto"
	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// Block is a flat struct mirroring the field set and JSON names in
// spec.md §6 exactly (index, previous_hash, timestamp, data, hash, nonce,
// difficulty) — there is no separate header or Merkle root, following
// _examples/original_source/src/block.rs's single-struct shape rather
// than the teacher's Header/Block split, since this project has no
// Merkle tree (SPEC_FULL.md §11 Non-goals).
type Block struct {
	Index        uint64            `json:"index"`
	PreviousHash types.Hash        `json:"previous_hash"`
	Timestamp    uint64            `json:"timestamp"`
	Data         []*tx.Transaction `json:"data"`
	Hash         types.Hash        `json:"hash"`
	Nonce        uint32            `json:"nonce"`
	Difficulty   uint32            `json:"difficulty"`
}

// GenesisTimestamp is the fixed timestamp every node's hardcoded genesis
// block carries (SPEC_FULL.md §4.6 Genesis).
const GenesisTimestamp = 1465154705

// Genesis returns the canonical genesis block: index 0, previous_hash
// "0", empty data, difficulty startDifficulty, nonce 0, hash recomputed
// from those fields.
func Genesis(startDifficulty uint32) *Block {
	b := &Block{
		Index:        0,
		PreviousHash: types.Hash{},
		Timestamp:    GenesisTimestamp,
		Data:         []*tx.Transaction{},
		Nonce:        0,
		Difficulty:   startDifficulty,
	}
	b.Hash = b.ComputeHash()
	return b
}

// ComputeHash recomputes this block's hash: SHA-256 of index, previous_hash,
// timestamp, each transaction id in order, difficulty, then nonce —
// integers big-endian, strings as raw bytes (spec.md §3).
func (b *Block) ComputeHash() types.Hash {
	buf := make([]byte, 0, 64+32*len(b.Data))
	buf = binary.BigEndian.AppendUint64(buf, b.Index)
	buf = append(buf, []byte(b.PreviousHash.WireString())...)
	buf = binary.BigEndian.AppendUint64(buf, b.Timestamp)
	for _, t := range b.Data {
		buf = append(buf, []byte(t.IDHex())...)
	}
	buf = binary.BigEndian.AppendUint32(buf, b.Difficulty)
	buf = binary.BigEndian.AppendUint32(buf, b.Nonce)
	return crypto.Hash(buf)
}

// SetHash recomputes and stores this block's hash.
func (b *Block) SetHash() {
	b.Hash = b.ComputeHash()
}

// Coinbase returns this block's coinbase transaction (data[0]), or nil if
// the block carries no transactions at all (only possible for genesis).
func (b *Block) Coinbase() *tx.Transaction {
	if len(b.Data) == 0 {
		return nil
	}
	return b.Data[0]
}
