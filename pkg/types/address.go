package types

// Address is a wallet's public identity: the hex encoding of an
// uncompressed NIST P-256 public key point. Unlike a hashed pubkey-hash
// address, a nodecoin address is the raw public key itself — there is no
// script layer between an output and its owning key (see SPEC_FULL.md
// §11, Non-goals: no script-based UTXO predicates).
type Address string

// IsZero reports whether the address is empty. Coinbase inputs carry a
// zero (empty) previous outpoint but always have a non-zero payout address.
func (a Address) IsZero() bool {
	return a == ""
}

// String satisfies fmt.Stringer.
func (a Address) String() string {
	return string(a)
}
