package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodecoin/nodecoin/internal/utxo"
	"github.com/nodecoin/nodecoin/pkg/crypto"
	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

type fakePool struct{ txs []*tx.Transaction }

func (f fakePool) Transactions() []*tx.Transaction { return f.txs }

func newWallet(t *testing.T) *Wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return New(key)
}

func fundedSet(t *testing.T, w *Wallet, amounts ...uint64) *utxo.Set {
	t.Helper()
	u := utxo.New()
	for i, amt := range amounts {
		u.Put(tx.UnspentTxOut{TxID: types.Hash{byte(i + 1)}, Index: 0, Address: w.Address(), Amount: amt})
	}
	return u
}

func TestBalance_SumsOwnedOutputs(t *testing.T) {
	w := newWallet(t)
	u := fundedSet(t, w, 10, 20, 30)

	assert.EqualValues(t, 60, w.Balance(u))
}

func TestCreateTransaction_ExactAmount_NoChange(t *testing.T) {
	w := newWallet(t)
	u := fundedSet(t, w, 50)
	receiver := types.Address("receiver")

	txn, err := w.CreateTransaction(receiver, 50, u, fakePool{})
	require.NoError(t, err)
	require.Len(t, txn.TxOuts, 1, "no change expected")
	assert.Equal(t, receiver, txn.TxOuts[0].Address)
	assert.EqualValues(t, 50, txn.TxOuts[0].Amount)
}

func TestCreateTransaction_WithChange(t *testing.T) {
	w := newWallet(t)
	u := fundedSet(t, w, 100)
	receiver := types.Address("receiver")

	txn, err := w.CreateTransaction(receiver, 40, u, fakePool{})
	require.NoError(t, err)
	require.Len(t, txn.TxOuts, 2, "receiver + change expected")
	assert.Equal(t, w.Address(), txn.TxOuts[1].Address)
	assert.EqualValues(t, 60, txn.TxOuts[1].Amount)
}

func TestCreateTransaction_InsufficientFunds(t *testing.T) {
	w := newWallet(t)
	u := fundedSet(t, w, 10)

	_, err := w.CreateTransaction(types.Address("receiver"), 50, u, fakePool{})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCreateTransaction_SkipsUTXOsReferencedByPendingTx(t *testing.T) {
	w := newWallet(t)
	u := fundedSet(t, w, 10, 50)

	var locked types.Hash
	for _, o := range u.ByAddress(w.Address()) {
		if o.Amount == 10 {
			locked = o.TxID
		}
	}
	pending := &tx.Transaction{TxIns: []tx.TxIn{{PrevTxID: locked, PrevIndex: 0}}}

	txn, err := w.CreateTransaction(types.Address("receiver"), 50, u, fakePool{txs: []*tx.Transaction{pending}})
	require.NoError(t, err)
	for _, in := range txn.TxIns {
		assert.NotEqual(t, locked, in.PrevTxID, "should not spend a UTXO already referenced by a pending transaction")
	}
}

func TestCreateTransaction_ProducesValidSignature(t *testing.T) {
	w := newWallet(t)
	u := fundedSet(t, w, 50)

	txn, err := w.CreateTransaction(types.Address("receiver"), 50, u, fakePool{})
	require.NoError(t, err)
	assert.NoError(t, txn.Validate(u))
}
