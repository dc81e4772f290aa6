// Package wallet implements the node's wallet facade: balance lookup and
// transaction construction against a single keypair (spec.md §4.9).
package wallet

import (
	"errors"
	"fmt"

	"github.com/nodecoin/nodecoin/internal/utxo"
	"github.com/nodecoin/nodecoin/pkg/crypto"
	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// ErrInsufficientFunds is returned when the owned, unspent-in-mempool
// UTXOs cannot cover the requested amount (spec.md §7 "Insufficient").
var ErrInsufficientFunds = errors.New("wallet: insufficient funds")

// Wallet holds a single keypair and derives its address from the public
// key, matching spec.md §4.9's single-key model — no HD derivation, no
// mnemonic, no encrypted keystore (SPEC_FULL.md §11 Non-goals); key
// persistence is pkg/crypto's PEM keyfile, loaded once at startup.
type Wallet struct {
	key     *crypto.PrivateKey
	address types.Address
}

// New wraps key into a Wallet, deriving its address as the hex-encoded
// public key.
func New(key *crypto.PrivateKey) *Wallet {
	return &Wallet{key: key, address: types.Address(crypto.PublicKeyHex(key))}
}

// Address returns this wallet's address.
func (w *Wallet) Address() types.Address {
	return w.address
}

// Balance sums every UTXO in u owned by this wallet's address (spec.md
// §4.9: balance(address, U) = Σ{u.amount : u ∈ U, u.address == address}).
func (w *Wallet) Balance(u *utxo.Set) uint64 {
	return u.Balance(w.address)
}

// mempoolOwner is the subset of mempool state create_transaction needs:
// whether an outpoint is already referenced by a pending transaction
// (spec.md §4.9 step 2).
type mempoolOwner interface {
	Transactions() []*tx.Transaction
}

// CreateTransaction builds and signs a transaction paying amount to
// receiver, following spec.md §4.9's create_transaction exactly:
//  1. filter u to outputs this wallet owns;
//  2. drop any already referenced by a pending mempool transaction;
//  3. greedily accumulate in iteration order until the running total
//     covers amount;
//  4. build inputs from the included UTXOs and outputs (receiver, change);
//  5. compute the id and sign every input.
func (w *Wallet) CreateTransaction(receiver types.Address, amount uint64, u *utxo.Set, pool mempoolOwner) (*tx.Transaction, error) {
	owned := u.ByAddress(w.address)
	spent := spentOutpoints(pool)

	b := tx.NewBuilder()
	var total uint64
	for _, out := range owned {
		op := out.Outpoint()
		if _, inPool := spent[op]; inPool {
			continue
		}
		b.AddInput(out.TxID, out.Index)
		total += out.Amount
		if total >= amount {
			break
		}
	}
	if total < amount {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, amount)
	}

	b.AddOutput(receiver, amount)
	if change := total - amount; change > 0 {
		b.AddOutput(w.address, change)
	}

	if err := b.Sign(w.key); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return b.Build(), nil
}

func spentOutpoints(pool mempoolOwner) map[types.Outpoint]struct{} {
	spent := make(map[types.Outpoint]struct{})
	if pool == nil {
		return spent
	}
	for _, t := range pool.Transactions() {
		for _, in := range t.TxIns {
			spent[types.Outpoint{TxID: in.PrevTxID, Index: in.PrevIndex}] = struct{}{}
		}
	}
	return spent
}
