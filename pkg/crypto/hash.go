// Package crypto provides the cryptographic primitives the rest of the
// node builds on: SHA-256 hashing and ECDSA signing over NIST P-256.
package crypto

import (
	"crypto/sha256"

	"github.com/nodecoin/nodecoin/pkg/types"
)

// Hash computes the SHA-256 digest of data.
func Hash(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// HashHex computes the SHA-256 digest of data and returns it hex-encoded,
// matching sha256_hex in SPEC_FULL.md §4.1.
func HashHex(data []byte) string {
	h := Hash(data)
	return h.String()
}
