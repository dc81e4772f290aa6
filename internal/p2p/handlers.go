package p2p

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nodecoin/nodecoin/internal/log"
	"github.com/nodecoin/nodecoin/pkg/block"
	"github.com/nodecoin/nodecoin/pkg/tx"
)

func decodeMessage(frame string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(frame), &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	return msg, nil
}

// handle dispatches msg per the message taxonomy of spec.md §4.8.
func (n *Node) handle(from *Peer, msg Message) {
	switch msg.MType {
	case QueryLatest:
		n.replyBlockchain(from, []*block.Block{n.chain.Latest()})
	case QueryAll:
		n.replyBlockchain(from, n.chain.Blocks())
	case QueryTransactionPool:
		n.replyPool(from)
	case ResponseBlockchain:
		n.handleBlockchainResponse(from, msg.Content)
	case ResponseTransactionPool:
		n.handlePoolResponse(msg.Content)
	default:
		log.P2P.Warn().Str("m_type", string(msg.MType)).Msg("unknown message type")
	}
}

func (n *Node) replyBlockchain(to *Peer, blocks []*block.Block) {
	msg, err := newMessage(ResponseBlockchain, blocks)
	if err != nil {
		log.P2P.Warn().Err(err).Msg("encode ResponseBlockchain")
		return
	}
	if err := to.Send(msg); err != nil {
		log.P2P.Warn().Err(err).Str("peer", to.Addr).Msg("send ResponseBlockchain")
	}
}

func (n *Node) replyPool(to *Peer) {
	msg, err := newMessage(ResponseTransactionPool, n.pool.Transactions())
	if err != nil {
		log.P2P.Warn().Err(err).Msg("encode ResponseTransactionPool")
		return
	}
	if err := to.Send(msg); err != nil {
		log.P2P.Warn().Err(err).Str("peer", to.Addr).Msg("send ResponseTransactionPool")
	}
}

// BroadcastLatest announces the current tip to every peer, used after a
// locally mined block is accepted.
func (n *Node) BroadcastLatest() {
	msg, err := newMessage(ResponseBlockchain, []*block.Block{n.chain.Latest()})
	if err != nil {
		log.P2P.Warn().Err(err).Msg("encode latest-tip broadcast")
		return
	}
	n.Broadcast(msg)
}

// BroadcastPool announces the full local mempool to every peer, used
// after a transaction is admitted via /sendTransaction.
func (n *Node) BroadcastPool() {
	msg, err := newMessage(ResponseTransactionPool, n.pool.Transactions())
	if err != nil {
		log.P2P.Warn().Err(err).Msg("encode pool broadcast")
		return
	}
	n.Broadcast(msg)
}

// handleBlockchainResponse implements spec.md §4.8's blockchain-response
// algorithm. received need not be sorted or non-empty on the wire; an
// empty or unparseable payload is a no-op with a warning.
func (n *Node) handleBlockchainResponse(from *Peer, content string) {
	var received []*block.Block
	if err := json.Unmarshal([]byte(content), &received); err != nil {
		log.P2P.Warn().Err(err).Str("peer", from.Addr).Msg("malformed ResponseBlockchain payload")
		return
	}
	if len(received) == 0 {
		log.P2P.Warn().Str("peer", from.Addr).Msg("empty ResponseBlockchain payload")
		return
	}

	sort.Slice(received, func(i, j int) bool { return received[i].Index < received[j].Index })
	r := received[len(received)-1]
	h := n.chain.Latest()

	switch {
	case r.Index <= h.Index:
		// Local chain is at least as long; nothing to do.
		return
	case r.PreviousHash == h.Hash:
		if n.chain.Add(r) {
			n.BroadcastLatest()
		}
	case len(received) == 1:
		if err := from.Send(Message{MType: QueryAll}); err != nil {
			log.P2P.Warn().Err(err).Str("peer", from.Addr).Msg("send QueryAll")
		}
	default:
		if n.chain.Replace(received) {
			n.BroadcastLatest()
		}
	}
}

// handlePoolResponse implements spec.md §4.8's transaction-pool-response
// algorithm: admit each received transaction against the current UTXO
// set, broadcasting the updated pool if any admit succeeded.
func (n *Node) handlePoolResponse(content string) {
	var received []*tx.Transaction
	if err := json.Unmarshal([]byte(content), &received); err != nil {
		log.P2P.Warn().Err(err).Msg("malformed ResponseTransactionPool payload")
		return
	}
	if len(received) == 0 {
		log.P2P.Warn().Msg("empty ResponseTransactionPool payload")
		return
	}

	u := n.chain.UTXOSet()
	admitted := false
	for _, t := range received {
		if n.pool.Add(t, u) {
			admitted = true
		}
	}
	if admitted {
		n.BroadcastPool()
	}
}
