// Package types defines core primitive types shared across the node:
// hashes, outpoints and addresses. These are pure data types with no
// dependency on chain, UTXO or network state.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashSize is the length of a SHA-256 hash in bytes.
const HashSize = 32

// Hash is a 256-bit SHA-256 digest, used for both block hashes and
// transaction ids.
type Hash [HashSize]byte

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the lowercase hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// WireString returns the string this hash is hashed/marshaled as on the
// wire: "0" for the zero hash (matching genesis's previous_hash sentinel,
// per _examples/original_source/src/chain.rs), the hex encoding otherwise.
func (h Hash) WireString() string {
	if h.IsZero() {
		return "0"
	}
	return h.String()
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalJSON encodes the hash as a hex string, or "0" for the zero hash.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.WireString())
}

// UnmarshalJSON decodes a hex string into a hash. An empty string decodes
// to the zero hash, matching the genesis block's "0" previous_hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" || s == "0" {
		*h = Hash{}
		return nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(decoded) != HashSize {
		return fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(decoded))
	}
	copy(h[:], decoded)
	return nil
}

// HexToHash converts a hex string to a Hash.
// Returns an error if the string is not exactly 64 hex characters.
func HexToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
