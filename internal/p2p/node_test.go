package p2p

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/nodecoin/nodecoin/internal/utxo"
	"github.com/nodecoin/nodecoin/pkg/block"
	"github.com/nodecoin/nodecoin/pkg/tx"
)

type fakeChain struct {
	latest    *block.Block
	blocks    []*block.Block
	addFn     func(*block.Block) bool
	replaceFn func([]*block.Block) bool
	utxos     *utxo.Set
}

func (f *fakeChain) Latest() *block.Block       { return f.latest }
func (f *fakeChain) Blocks() []*block.Block     { return f.blocks }
func (f *fakeChain) UTXOSet() *utxo.Set         { return f.utxos }
func (f *fakeChain) Add(b *block.Block) bool {
	if f.addFn != nil {
		return f.addFn(b)
	}
	return false
}
func (f *fakeChain) Replace(c []*block.Block) bool {
	if f.replaceFn != nil {
		return f.replaceFn(c)
	}
	return false
}

type fakePool struct {
	txs   []*tx.Transaction
	addFn func(*tx.Transaction, tx.UTXOProvider) bool
}

func (f *fakePool) Transactions() []*tx.Transaction { return f.txs }
func (f *fakePool) Add(t *tx.Transaction, u tx.UTXOProvider) bool {
	if f.addFn != nil {
		return f.addFn(t, u)
	}
	return false
}

func readFrame(t *testing.T, conn net.Conn) Message {
	t.Helper()
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		n, err := conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			if buf[len(buf)-1] == frameTerminator {
				break
			}
		}
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
	}
	var msg Message
	if err := json.Unmarshal(buf[:len(buf)-1], &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return msg
}

func TestListenAndConnect_Handshake(t *testing.T) {
	chain := &fakeChain{latest: block.Genesis(1), utxos: utxo.New()}
	pool := &fakePool{}
	server := New(chain, pool)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := server.Listen(ctx, 0); err != nil {
		t.Fatalf("Listen() error: %v", err)
	}

	client, err := net.Dial("tcp", server.Addr())
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer client.Close()

	first := readFrame(t, client)
	second := readFrame(t, client)
	if first.MType != QueryLatest || second.MType != QueryTransactionPool {
		t.Fatalf("handshake = %s, %s; want QueryLatest, QueryTransactionPool", first.MType, second.MType)
	}
}

func TestHandleBlockchainResponse_DropsShorterOrEqual(t *testing.T) {
	tip := block.Genesis(1)
	called := false
	chain := &fakeChain{latest: tip, addFn: func(*block.Block) bool { called = true; return true }}
	n := New(chain, &fakePool{})

	content, _ := json.Marshal([]*block.Block{tip})
	n.handleBlockchainResponse(&Peer{Addr: "x"}, string(content))

	if called {
		t.Error("Add should not be called when the received chain is no longer than local")
	}
}

func TestHandleBlockchainResponse_SingleBlockExtension(t *testing.T) {
	genesis := block.Genesis(1)
	next := &block.Block{Index: 1, PreviousHash: genesis.Hash, Timestamp: genesis.Timestamp + 10, Difficulty: 1}
	next.SetHash()

	added := false
	chain := &fakeChain{latest: genesis, addFn: func(b *block.Block) bool { added = true; return true }}
	n := New(chain, &fakePool{})

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	id, peer := n.register("test", server)
	defer n.drop(id)

	done := make(chan Message, 1)
	go func() { done <- readFrame(t, client) }()

	content, _ := json.Marshal([]*block.Block{next})
	n.handleBlockchainResponse(peer, string(content))

	if !added {
		t.Error("a single-block extension should call chain.Add")
	}
	select {
	case msg := <-done:
		if msg.MType != ResponseBlockchain {
			t.Errorf("broadcast MType = %s, want ResponseBlockchain", msg.MType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast of new tip")
	}
}

func TestHandleBlockchainResponse_FurtherBehind_QueriesAll(t *testing.T) {
	genesis := block.Genesis(1)
	distant := &block.Block{Index: 5, PreviousHash: block.Genesis(9).Hash, Timestamp: genesis.Timestamp + 100, Difficulty: 1}
	distant.SetHash()

	chain := &fakeChain{latest: genesis}
	n := New(chain, &fakePool{})

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	peer := newPeer("test", server)

	done := make(chan Message, 1)
	go func() { done <- readFrame(t, client) }()

	content, _ := json.Marshal([]*block.Block{distant})
	n.handleBlockchainResponse(peer, string(content))

	select {
	case msg := <-done:
		if msg.MType != QueryAll {
			t.Errorf("MType = %s, want QueryAll", msg.MType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for QueryAll")
	}
}

func TestHandleBlockchainResponse_FullCandidateChain_CallsReplace(t *testing.T) {
	genesis := block.Genesis(1)
	b1 := &block.Block{Index: 1, PreviousHash: genesis.Hash, Timestamp: genesis.Timestamp + 10, Difficulty: 1}
	b1.SetHash()
	b2 := &block.Block{Index: 2, PreviousHash: block.Genesis(9).Hash, Timestamp: b1.Timestamp + 10, Difficulty: 1}
	b2.SetHash()

	replaced := false
	chain := &fakeChain{latest: genesis, replaceFn: func([]*block.Block) bool { replaced = true; return true }}
	n := New(chain, &fakePool{})

	content, _ := json.Marshal([]*block.Block{b1, b2})
	n.handleBlockchainResponse(&Peer{Addr: "x"}, string(content))

	if !replaced {
		t.Error("a multi-block, non-extending candidate should call chain.Replace")
	}
}

func TestHandlePoolResponse_AdmitsAndBroadcasts(t *testing.T) {
	admittedTx := &tx.Transaction{}
	chain := &fakeChain{latest: block.Genesis(1), utxos: utxo.New()}
	pool := &fakePool{addFn: func(*tx.Transaction, tx.UTXOProvider) bool { return true }}
	n := New(chain, pool)

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	id, _ := n.register("peer", server)
	defer n.drop(id)

	done := make(chan Message, 1)
	go func() { done <- readFrame(t, client) }()

	content, _ := json.Marshal([]*tx.Transaction{admittedTx})
	n.handlePoolResponse(string(content))

	select {
	case msg := <-done:
		if msg.MType != ResponseTransactionPool {
			t.Errorf("MType = %s, want ResponseTransactionPool", msg.MType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pool broadcast")
	}
}

func TestHandlePoolResponse_EmptyPayloadIsNoop(t *testing.T) {
	chain := &fakeChain{latest: block.Genesis(1), utxos: utxo.New()}
	admitCalled := false
	pool := &fakePool{addFn: func(*tx.Transaction, tx.UTXOProvider) bool { admitCalled = true; return true }}
	n := New(chain, pool)

	n.handlePoolResponse("[]")

	if admitCalled {
		t.Error("an empty payload should never call pool.Add")
	}
}
