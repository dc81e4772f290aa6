// Command testnet boots a 2-node local testnet from scratch.
//
// Usage: go run ./cmd/testnet/
//
// It generates two fresh wallets, boots two in-process nodes (one miner,
// one follower) over the TCP gossip layer, mines a handful of blocks on
// the miner node, and verifies both chains converge to the same tip —
// adapted from the teacher's cmd/testnet/main.go, trading libp2p/GossipSub
// and a PoA genesis config for this project's plain TCP gossip and
// proof-of-work (SPEC_FULL.md §11 Non-goals: no sub-chains, no staking).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nodecoin/nodecoin/internal/chain"
	"github.com/nodecoin/nodecoin/internal/consensus"
	klog "github.com/nodecoin/nodecoin/internal/log"
	"github.com/nodecoin/nodecoin/internal/mempool"
	"github.com/nodecoin/nodecoin/internal/miner"
	"github.com/nodecoin/nodecoin/internal/p2p"
	"github.com/nodecoin/nodecoin/internal/wallet"
	"github.com/nodecoin/nodecoin/pkg/crypto"
)

const numBlocks = 5

// nodeBundle groups all components for one logical node.
type nodeBundle struct {
	name   string
	chain  *chain.Chain
	pool   *mempool.Pool
	p2p    *p2p.Node
	wallet *wallet.Wallet
	miner  *miner.Miner // nil for the follower
}

func main() {
	klog.Init("info", false, "")
	logger := klog.WithComponent("testnet")

	logger.Info().Msg("=== nodecoin 2-node local testnet ===")

	producer, err := buildNode("node-1", true)
	if err != nil {
		logger.Fatal().Err(err).Msg("build node-1")
	}
	follower, err := buildNode("node-2", false)
	if err != nil {
		logger.Fatal().Err(err).Msg("build node-2")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := producer.p2p.Listen(ctx, 0); err != nil {
		logger.Fatal().Err(err).Msg("listen node-1")
	}
	if err := follower.p2p.Listen(ctx, 0); err != nil {
		logger.Fatal().Err(err).Msg("listen node-2")
	}

	if err := follower.p2p.Connect(producer.p2p.Addr()); err != nil {
		logger.Fatal().Err(err).Msg("connect node-2 to node-1")
	}
	time.Sleep(200 * time.Millisecond) // handshake settle

	logger.Info().
		Int("node1_peers", producer.p2p.PeerCount()).
		Int("node2_peers", follower.p2p.PeerCount()).
		Msg("nodes connected")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	logger.Info().Int("blocks", numBlocks).Msg("starting block production")
	go producer.miner.Run(ctx, 0)

	for i := 0; i < numBlocks; i++ {
		select {
		case <-ctx.Done():
			goto verify
		case <-time.After(time.Second):
		}
		logger.Info().Uint64("height", producer.chain.Height()).Msg("producer tip advanced")
	}

verify:
	time.Sleep(2 * time.Second) // let the last block propagate
	cancel()

	h1, h2 := producer.chain.Height(), follower.chain.Height()
	t1, t2 := producer.chain.Latest().Hash, follower.chain.Latest().Hash

	logger.Info().
		Uint64("node1_height", h1).
		Uint64("node2_height", h2).
		Msg("final chain state")

	if h1 > 0 && h1 == h2 && t1 == t2 {
		logger.Info().Msg("SUCCESS: both nodes converged")
		fmt.Printf("\n  blocks mined: %d\n  chain tip:    %s\n\n", h1, t1)
		return
	}
	logger.Error().Msg("FAILURE: chain mismatch between nodes")
	os.Exit(1)
}

// buildNode creates a fully wired, in-process node with its own chain,
// mempool, p2p listener and wallet. mine controls whether the returned
// bundle carries a Miner.
func buildNode(name string, mine bool) (*nodeBundle, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	w := wallet.New(key)
	engine := consensus.NewPoW()
	pool := mempool.New()
	ch := chain.New(engine, pool)
	node := p2p.New(ch, pool)

	var m *miner.Miner
	if mine {
		m = miner.New(ch, pool, engine, w, node)
	}

	return &nodeBundle{
		name:   name,
		chain:  ch,
		pool:   pool,
		p2p:    node,
		wallet: w,
		miner:  m,
	}, nil
}
