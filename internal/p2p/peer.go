package p2p

import (
	"encoding/json"
	"net"
	"sync"
)

// Peer wraps one gossip connection. Outbound writes are serialized by mu
// since broadcast and per-message replies can both target the same peer
// concurrently. This is the Go-idiomatic reading of spec.md §4.7's
// per-connection write path: a readiness poller with a manual write
// queue maps onto one blocking-write goroutine-safe connection, since
// Go's net.Conn.Write already writes a frame in full or returns an error
// (no short-write / WriteZero case to special-case here).
type Peer struct {
	Addr string
	conn net.Conn
	mu   sync.Mutex
}

func newPeer(addr string, conn net.Conn) *Peer {
	return &Peer{Addr: addr, conn: conn}
}

// Send marshals msg and writes it NUL-terminated (spec.md §4.7 framing).
func (p *Peer) Send(msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	b = append(b, frameTerminator)

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.conn.Write(b)
	return err
}

// Close closes the underlying connection.
func (p *Peer) Close() error {
	return p.conn.Close()
}
