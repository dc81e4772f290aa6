// nodecoind is the node daemon: ledger core, UTXO engine, proof-of-work
// validator, peer gossip and a REST control surface (spec.md).
//
// Usage:
//
//	nodecoind [--mine]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nodecoin/nodecoin/config"
	"github.com/nodecoin/nodecoin/internal/chain"
	"github.com/nodecoin/nodecoin/internal/consensus"
	"github.com/nodecoin/nodecoin/internal/log"
	"github.com/nodecoin/nodecoin/internal/mempool"
	"github.com/nodecoin/nodecoin/internal/miner"
	"github.com/nodecoin/nodecoin/internal/p2p"
	"github.com/nodecoin/nodecoin/internal/rpc"
	"github.com/nodecoin/nodecoin/internal/wallet"
	"github.com/nodecoin/nodecoin/pkg/crypto"
)

func main() {
	mine := flag.Bool("mine", false, "run a continuous background miner after the startup grace period")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.WithComponent("node")

	key, err := crypto.LoadOrCreateKey(cfg.KeyPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.KeyPath).Msg("failed to load wallet key")
	}
	w := wallet.New(key)
	logger.Info().Str("addr", string(w.Address())[:16]+"...").Msg("wallet ready")

	engine := consensus.NewPoW()
	pool := mempool.New()
	ch := chain.New(engine, pool)
	logger.Info().Uint64("height", ch.Height()).Msg("chain initialized from genesis")

	node := p2p.New(ch, pool)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := node.Listen(ctx, cfg.P2PPort); err != nil {
		logger.Fatal().Err(err).Int("port", cfg.P2PPort).Msg("failed to start p2p listener")
	}
	logger.Info().Str("addr", node.Addr()).Msg("p2p listening")

	for _, peer := range cfg.InitialPeers {
		if err := node.Connect(peer); err != nil {
			logger.Warn().Err(err).Str("peer", peer).Msg("failed to connect to initial peer")
			continue
		}
		logger.Info().Str("peer", peer).Msg("connected to initial peer")
	}

	rpcAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := rpc.New(rpcAddr, ch, pool, node, engine, w)
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Str("addr", rpcAddr).Msg("failed to start rpc server")
	}
	defer server.Stop()
	logger.Info().Str("addr", server.Addr()).Msg("rpc server started")

	if *mine {
		m := miner.New(ch, pool, engine, w, node)
		go m.Run(ctx, cfg.MinerStartDelay)
		logger.Info().Dur("start_delay", cfg.MinerStartDelay).Msg("background miner enabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	cancel()
}
