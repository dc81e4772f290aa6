// Package rpc implements the plain REST HTTP surface a node exposes to
// external collaborators (spec.md §6): block/peer/pool queries and
// mining/transaction/peer-connect commands.
package rpc

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/nodecoin/nodecoin/internal/chain"
	"github.com/nodecoin/nodecoin/internal/consensus"
	"github.com/nodecoin/nodecoin/internal/log"
	"github.com/nodecoin/nodecoin/internal/mempool"
	"github.com/nodecoin/nodecoin/internal/p2p"
	"github.com/nodecoin/nodecoin/internal/wallet"
)

// maxBodySize bounds request bodies read into memory (1 MB).
const maxBodySize = 1 << 20

// Server is the node's HTTP surface.
type Server struct {
	addr   string
	chain  *chain.Chain
	pool   *mempool.Pool
	node   *p2p.Node
	engine consensus.Engine
	wallet *wallet.Wallet

	server *http.Server
	ln     net.Listener
	logger zerolog.Logger
}

// New wires a Server to the node's chain, mempool, gossip node, consensus
// engine and wallet.
func New(addr string, ch *chain.Chain, pool *mempool.Pool, node *p2p.Node, engine consensus.Engine, w *wallet.Wallet) *Server {
	s := &Server{
		addr:   addr,
		chain:  ch,
		pool:   pool,
		node:   node,
		engine: engine,
		wallet: w,
		logger: log.WithComponent("rpc"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/blocks", s.getBlocks).Methods(http.MethodGet)
	r.HandleFunc("/peers", s.getPeers).Methods(http.MethodGet)
	r.HandleFunc("/addr", s.getAddr).Methods(http.MethodGet)
	r.HandleFunc("/balance", s.getBalance).Methods(http.MethodGet)
	r.HandleFunc("/pool", s.getPool).Methods(http.MethodGet)
	r.HandleFunc("/mineBlock", s.postMineBlock).Methods(http.MethodPost)
	r.HandleFunc("/mineRawBlock", s.postMineRawBlock).Methods(http.MethodPost)
	r.HandleFunc("/mineTransaction", s.postMineTransaction).Methods(http.MethodPost)
	r.HandleFunc("/sendTransaction", s.postSendTransaction).Methods(http.MethodPost)
	r.HandleFunc("/addPeer", s.postAddPeer).Methods(http.MethodPost)

	s.server = &http.Server{
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start begins listening and serving in a background goroutine, returning
// once the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("rpc server error")
		}
	}()
	return nil
}

// Addr returns the listener's bound address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
