package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nodecoin/nodecoin/config"
	"github.com/nodecoin/nodecoin/pkg/block"
	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Warn().Err(err).Msg("request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

// GET /blocks → current chain as JSON array.
func (s *Server) getBlocks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.chain.Blocks())
}

// GET /peers → connected peer addresses, newline-separated.
func (s *Server) getPeers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, strings.Join(s.node.PeerAddrs(), "\n"))
}

// GET /addr → local public key hex.
func (s *Server) getAddr(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, string(s.wallet.Address()))
}

// GET /balance → integer balance as decimal text.
func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	balance := s.wallet.Balance(s.chain.UTXOSet())
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, strconv.FormatUint(balance, 10))
}

// GET /pool → current mempool as JSON array.
func (s *Server) getPool(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.pool.Transactions())
}

// mineBlock mines data on top of the current tip and commits it via the
// normal Add path. Mining itself holds no chain lock (spec.md §5): the
// tip and difficulty are snapshotted, mined against, then Add
// re-validates against whatever the tip is at commit time.
func (s *Server) mineBlock(ctx context.Context, data []*tx.Transaction) (*block.Block, error) {
	tip := s.chain.Latest()
	difficulty := s.chain.RequiredDifficulty()

	next, err := s.engine.FindBlock(ctx, tip, data, difficulty)
	if err != nil {
		return nil, fmt.Errorf("find block: %w", err)
	}
	if !s.chain.Add(next) {
		return nil, fmt.Errorf("mined block was rejected (chain tip advanced concurrently)")
	}
	return next, nil
}

func (s *Server) broadcastNewTip() {
	if s.node != nil {
		s.node.BroadcastLatest()
	}
}

func (s *Server) broadcastPool() {
	if s.node != nil {
		s.node.BroadcastPool()
	}
}

// POST /mineBlock → mines one block including coinbase + current
// mempool; broadcasts the new tip.
func (s *Server) postMineBlock(w http.ResponseWriter, r *http.Request) {
	coinbase := tx.NewCoinbase(s.chain.Height()+1, s.wallet.Address(), config.CoinbaseAmount)
	data := append([]*tx.Transaction{coinbase}, s.pool.Transactions()...)

	next, err := s.mineBlock(r.Context(), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastNewTip()
	s.writeJSON(w, next)
}

// POST /mineRawBlock (JSON array of transactions) → mines a block with
// exactly those transactions, no implicit coinbase prepended.
func (s *Server) postMineRawBlock(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var data []*tx.Transaction
	if err := json.Unmarshal(body, &data); err != nil {
		s.writeError(w, fmt.Errorf("decode transactions: %w", err))
		return
	}

	next, err := s.mineBlock(r.Context(), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastNewTip()
	s.writeJSON(w, next)
}

type transferRequest struct {
	Address types.Address `json:"address"`
	Amount  uint64        `json:"amount"`
}

// POST /mineTransaction {address, amount} → builds a transaction, mines
// a block containing it, broadcasts.
func (s *Server) postMineTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req transferRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, fmt.Errorf("decode request: %w", err))
		return
	}

	transfer, err := s.wallet.CreateTransaction(req.Address, req.Amount, s.chain.UTXOSet(), s.pool)
	if err != nil {
		s.writeError(w, err)
		return
	}

	coinbase := tx.NewCoinbase(s.chain.Height()+1, s.wallet.Address(), config.CoinbaseAmount)
	next, err := s.mineBlock(r.Context(), []*tx.Transaction{coinbase, transfer})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastNewTip()
	s.writeJSON(w, next)
}

// POST /sendTransaction {address, amount} → builds and admits a
// transaction to the local mempool; broadcasts the pool.
func (s *Server) postSendTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req transferRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, fmt.Errorf("decode request: %w", err))
		return
	}

	u := s.chain.UTXOSet()
	transfer, err := s.wallet.CreateTransaction(req.Address, req.Amount, u, s.pool)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.pool.Add(transfer, u) {
		s.writeError(w, fmt.Errorf("mempool rejected the built transaction"))
		return
	}
	s.broadcastPool()
	s.writeJSON(w, transfer)
}

// POST /addPeer (host:port string) → dial peer and send the gossip
// handshake.
func (s *Server) postAddPeer(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	addr := strings.TrimSpace(string(body))
	if addr == "" {
		s.writeError(w, fmt.Errorf("addPeer: empty host:port"))
		return
	}
	if err := s.node.Connect(addr); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
