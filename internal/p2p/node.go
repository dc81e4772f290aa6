// Package p2p implements the gossip peer I/O layer: a TCP listener plus
// zero-or-more outbound connections exchanging NUL-terminated JSON
// messages (spec.md §4.7, §4.8).
package p2p

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/nodecoin/nodecoin/internal/log"
)

// Node owns the peer registry and dispatches incoming messages against a
// ChainView and PoolView. Peers are keyed by a monotonically assigned
// token, mirroring spec.md §4.7's "opaque token assigned monotonically"
// — here just a uint64 counter guarded by mu, since Go's garbage
// collector (not an explicit teardown-is-the-only-release-point
// registry) reclaims the socket once the peer entry and its goroutine
// both drop their reference.
type Node struct {
	chain ChainView
	pool  PoolView

	mu     sync.RWMutex
	peers  map[uint64]*Peer
	nextID uint64

	listener net.Listener
}

// New creates a gossip node bound to chain and pool.
func New(chain ChainView, pool PoolView) *Node {
	return &Node{
		chain: chain,
		pool:  pool,
		peers: make(map[uint64]*Peer),
	}
}

// Listen starts accepting inbound connections on port. It returns once
// the listener is bound; Accept runs in a background goroutine until ctx
// is cancelled.
func (n *Node) Listen(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return fmt.Errorf("p2p listen on %d: %w", port, err)
	}
	n.listener = ln

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				log.P2P.Info().Err(err).Msg("listener closed")
				return
			}
			go n.handleConn(conn)
		}
	}()

	log.P2P.Info().Int("port", port).Msg("listening for peers")
	return nil
}

// Connect dials addr and hands the connection to handleConn in a
// background goroutine, which registers it as a peer; registration may
// complete after Connect returns. The initial handshake (QueryLatest then
// QueryTransactionPool) is sent from handleConn once the connection is
// registered, for both inbound and outbound peers.
func (n *Node) Connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrPeerIO, addr, err)
	}
	go n.handleConn(conn)
	return nil
}

// Addr returns the listener's bound address. Only valid after Listen.
func (n *Node) Addr() string {
	return n.listener.Addr().String()
}

// PeerCount reports how many peers are currently connected.
func (n *Node) PeerCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.peers)
}

// PeerAddrs returns the remote address of every connected peer.
func (n *Node) PeerAddrs() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	addrs := make([]string, 0, len(n.peers))
	for _, p := range n.peers {
		addrs = append(addrs, p.Addr)
	}
	return addrs
}

// Broadcast sends msg to every connected peer. A write failure on one
// peer is logged and the peer dropped; it never stops delivery to the
// rest (spec.md §4.7 "Broadcast").
func (n *Node) Broadcast(msg Message) {
	n.mu.RLock()
	peers := make(map[uint64]*Peer, len(n.peers))
	for id, p := range n.peers {
		peers[id] = p
	}
	n.mu.RUnlock()

	for id, p := range peers {
		if err := p.Send(msg); err != nil {
			log.P2P.Warn().Err(err).Str("peer", p.Addr).Msg("broadcast write failed")
			n.drop(id)
		}
	}
}

func (n *Node) register(addr string, conn net.Conn) (uint64, *Peer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	p := newPeer(addr, conn)
	n.peers[id] = p
	return id, p
}

func (n *Node) drop(id uint64) {
	n.mu.Lock()
	p, ok := n.peers[id]
	delete(n.peers, id)
	n.mu.Unlock()
	if ok {
		p.Close()
	}
}

// handleConn owns one connection for its lifetime: it sends the initial
// handshake, then reads frames until the connection closes or a fatal
// I/O error occurs. Framing is NUL-delimited JSON (spec.md §4.7); a
// bufio.Reader's internally growable buffer plays the role of the
// manual 4096-byte-plus-1024-increment buffer described there, and
// ReadString already preserves a partial frame across reads the same way.
func (n *Node) handleConn(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	id, peer := n.register(addr, conn)
	log.P2P.Info().Str("peer", addr).Msg("peer connected")
	defer func() {
		n.drop(id)
		log.P2P.Info().Str("peer", addr).Msg("peer disconnected")
	}()

	if err := n.handshake(peer); err != nil {
		log.P2P.Warn().Err(err).Str("peer", addr).Msg("handshake failed")
		return
	}

	reader := bufio.NewReader(conn)
	for {
		frame, err := reader.ReadString(frameTerminator)
		if err != nil {
			return // EOF or connection error: deregister and drop.
		}
		frame = strings.TrimSuffix(frame, string(rune(frameTerminator)))
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}

		msg, err := decodeMessage(frame)
		if err != nil {
			log.P2P.Warn().Err(err).Str("peer", addr).Msg("dropping malformed frame")
			continue
		}
		n.handle(peer, msg)
	}
}

// handshake sends QueryLatest then QueryTransactionPool, the initial
// exchange every newly established connection performs (spec.md §4.7).
func (n *Node) handshake(p *Peer) error {
	if err := p.Send(Message{MType: QueryLatest}); err != nil {
		return err
	}
	return p.Send(Message{MType: QueryTransactionPool})
}
