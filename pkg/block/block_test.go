package block

import (
	"testing"

	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

func TestGenesis(t *testing.T) {
	g := Genesis(1)

	if g.Index != 0 {
		t.Errorf("genesis index = %d, want 0", g.Index)
	}
	if !g.PreviousHash.IsZero() {
		t.Error("genesis previous_hash should be zero")
	}
	if g.Timestamp != GenesisTimestamp {
		t.Errorf("genesis timestamp = %d, want %d", g.Timestamp, GenesisTimestamp)
	}
	if len(g.Data) != 0 {
		t.Error("genesis should carry no transactions")
	}
	if g.Hash != g.ComputeHash() {
		t.Error("genesis hash should match its recomputed hash")
	}
}

func TestGenesis_Deterministic(t *testing.T) {
	a := Genesis(1)
	b := Genesis(1)
	if a.Hash != b.Hash {
		t.Error("genesis should be a deterministic constant")
	}
}

func TestComputeHash_ChangesWithNonce(t *testing.T) {
	b := Genesis(1)
	b.Nonce = 1
	if b.Hash == b.ComputeHash() {
		t.Error("changing nonce should change the recomputed hash")
	}
}

func TestComputeHash_IncludesTransactionIDs(t *testing.T) {
	b1 := &Block{Index: 1, PreviousHash: types.Hash{0x01}, Timestamp: 100, Difficulty: 1}
	b2 := &Block{Index: 1, PreviousHash: types.Hash{0x01}, Timestamp: 100, Difficulty: 1}

	coinbase := tx.NewCoinbase(1, "addr", 50)
	b2.Data = []*tx.Transaction{coinbase}

	if b1.ComputeHash() == b2.ComputeHash() {
		t.Error("block hash should depend on the transactions it carries")
	}
}

func TestBlock_Coinbase(t *testing.T) {
	coinbase := tx.NewCoinbase(1, "addr", 50)
	b := &Block{Data: []*tx.Transaction{coinbase}}

	if b.Coinbase() != coinbase {
		t.Error("Coinbase() should return data[0]")
	}

	empty := &Block{}
	if empty.Coinbase() != nil {
		t.Error("Coinbase() on a block with no data should return nil")
	}
}
