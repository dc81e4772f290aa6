package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// Curve is the fixed curve for the whole node: NIST P-256 (secp256r1),
// per SPEC_FULL.md §4.1. This intentionally does not use the teacher's
// secp256k1/Schnorr stack — see DESIGN.md for why that substitution is
// the one place this project departs from "always prefer a pack
// dependency": no third-party library in the retrieved corpus offers a
// P-256 ECDSA implementation, and the spec's curve choice is explicit.
var Curve = elliptic.P256()

// ErrBadSignature is returned when a DER signature cannot be parsed.
var ErrBadSignature = errors.New("crypto: malformed signature")

// ErrBadKey is returned when a public key hex string doesn't decode to a
// point on Curve.
var ErrBadKey = errors.New("crypto: malformed public key")

// PrivateKey wraps an ECDSA P-256 private key.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GenerateKey creates a new random P-256 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(Curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// ECDSA exposes the underlying *ecdsa.PrivateKey, for PEM marshaling.
func (pk *PrivateKey) ECDSA() *ecdsa.PrivateKey {
	return pk.key
}

// FromECDSA wraps an existing *ecdsa.PrivateKey.
func FromECDSA(key *ecdsa.PrivateKey) *PrivateKey {
	return &PrivateKey{key: key}
}

// derSignature mirrors the ASN.1 structure of an ECDSA signature so it
// round-trips through encoding/asn1 exactly the way every other ECDSA
// implementation (OpenSSL, k256, decred's secp256k1) produces it.
type derSignature struct {
	R, S *big.Int
}

// Sign produces a DER-encoded, hex-wrapped ECDSA signature over msg.
// Per SPEC_FULL.md §4.1, msg is signed as-is — callers pass the exact
// bytes that must be verified later (for transactions, the ASCII bytes of
// the transaction id's hex string, not the raw digest).
func Sign(msg []byte, pk *PrivateKey) (string, error) {
	digest := Hash(msg)
	r, s, err := ecdsa.Sign(rand.Reader, pk.key, digest[:])
	if err != nil {
		return "", fmt.Errorf("ecdsa sign: %w", err)
	}
	der, err := asn1.Marshal(derSignature{R: r, S: s})
	if err != nil {
		return "", fmt.Errorf("der encode signature: %w", err)
	}
	return hex.EncodeToString(der), nil
}

// Verify checks a hex-wrapped DER signature over msg against a hex-encoded
// uncompressed public key point.
func Verify(msg []byte, signatureHex, publicKeyHex string) bool {
	pub, err := PublicKeyFromHex(publicKeyHex)
	if err != nil {
		return false
	}
	der, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	var sig derSignature
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return false
	}
	if sig.R == nil || sig.S == nil {
		return false
	}
	digest := Hash(msg)
	return ecdsa.Verify(pub, digest[:], sig.R, sig.S)
}

// PublicKeyHex returns the hex-encoded uncompressed public key point for pk.
func PublicKeyHex(pk *PrivateKey) string {
	return PublicKeyToHex(&pk.key.PublicKey)
}

// PublicKeyToHex uncompressed-point-encodes and hex-wraps a public key.
func PublicKeyToHex(pub *ecdsa.PublicKey) string {
	return hex.EncodeToString(elliptic.Marshal(Curve, pub.X, pub.Y))
}

// PublicKeyFromHex parses a hex-encoded uncompressed point into a public
// key on Curve. Returns ErrBadKey if the bytes don't decode to a point on
// the curve (this is the "address" field of a TxOut/UnspentTxOut).
func PublicKeyFromHex(s string) (*ecdsa.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	x, y := elliptic.Unmarshal(Curve, b)
	if x == nil {
		return nil, ErrBadKey
	}
	return &ecdsa.PublicKey{Curve: Curve, X: x, Y: y}, nil
}
