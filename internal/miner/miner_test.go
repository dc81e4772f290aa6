package miner

import (
	"context"
	"testing"
	"time"

	"github.com/nodecoin/nodecoin/internal/chain"
	"github.com/nodecoin/nodecoin/internal/consensus"
	"github.com/nodecoin/nodecoin/internal/mempool"
	"github.com/nodecoin/nodecoin/internal/wallet"
	"github.com/nodecoin/nodecoin/pkg/crypto"
)

func TestRun_MinesUntilCancelled(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	w := wallet.New(key)
	pool := mempool.New()
	engine := consensus.NewPoW()
	ch := chain.New(engine, pool)
	m := New(ch, pool, engine, w, nil)

	ctx, cancel := context.WithCancel(t.Context())
	go m.Run(ctx, 0)

	deadline := time.After(2 * time.Second)
	for ch.Height() < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("miner did not reach height 2 in time")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()

	if balance := w.Balance(ch.UTXOSet()); balance == 0 {
		t.Error("miner's own wallet should have accumulated coinbase rewards")
	}
}

func TestRun_RespectsStartDelay(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	w := wallet.New(key)
	pool := mempool.New()
	engine := consensus.NewPoW()
	ch := chain.New(engine, pool)
	m := New(ch, pool, engine, w, nil)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	m.Run(ctx, time.Second)

	if ch.Height() != 0 {
		t.Errorf("height = %d, want 0 (mining should not have started yet)", ch.Height())
	}
}
