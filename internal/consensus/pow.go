package consensus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nodecoin/nodecoin/pkg/block"
	"github.com/nodecoin/nodecoin/pkg/tx"
	"github.com/nodecoin/nodecoin/pkg/types"
)

// PoW errors.
var (
	ErrInsufficientWork    = errors.New("pow: hash does not satisfy the difficulty predicate")
	ErrDifficultyTooLow    = errors.New("pow: block difficulty below the chain's required difficulty")
	ErrNonceSpaceExhausted = errors.New("pow: nonce space exhausted without finding a valid hash")
)

// PoW implements the proof-of-work Engine (SPEC_FULL.md §4.5). It holds
// no mutable state: difficulty is always read off the chain/block, never
// cached on the engine, so the same Engine value can validate blocks from
// any height.
type PoW struct{}

// NewPoW creates a proof-of-work engine.
func NewPoW() *PoW {
	return &PoW{}
}

// IsValid implements Engine. Structural linkage (index, previous_hash,
// hash integrity, timestamp sanity) is pkg/block.ValidateLinkage; this
// layers PoW's own two checks on top: the block's stated difficulty must
// meet-or-exceed what the chain requires, and its hash must actually
// satisfy that difficulty's leading-zero-bits predicate.
func (p *PoW) IsValid(prev, next *block.Block, requiredDifficulty uint32) error {
	if err := block.ValidateLinkage(prev, next, time.Now()); err != nil {
		return err
	}
	if next.Difficulty < requiredDifficulty {
		return fmt.Errorf("%w: got %d, need %d", ErrDifficultyTooLow, next.Difficulty, requiredDifficulty)
	}
	if !HasValidHash(next.Hash, next.Difficulty) {
		return ErrInsufficientWork
	}
	return nil
}

// HasValidHash reports whether hash satisfies difficulty's leading-zero-
// bits predicate, implemented nibble-wise exactly as
// _examples/original_source/src/validator/pow.rs's has_valid_hash: the
// first ⌊difficulty/4⌋ hex digits must be "0", and the next digit's top
// difficulty%4 bits must be zero.
func HasValidHash(hash types.Hash, difficulty uint32) bool {
	h := hash.String()
	end := difficulty/4 + 1
	for i := uint32(0); i < end && int(i) < len(h); i++ {
		nibble := hexNibble(h[i])
		if i == end-1 {
			if nibble>>(4-difficulty%4) != 0 {
				return false
			}
		} else if nibble != 0 {
			return false
		}
	}
	return true
}

// hexNibble returns the 4-bit value of a hex digit character.
func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		panic(fmt.Sprintf("sha256 hash contains invalid character: %c", c))
	}
}

// FindBlock implements Engine: a single-threaded busy loop over nonce
// values, matching spec.md §4.5/§9 — cancellation is cooperative via ctx
// rather than process teardown, per the redesign note on mining under a
// lock.
func (p *PoW) FindBlock(ctx context.Context, prev *block.Block, data []*tx.Transaction, difficulty uint32) (*block.Block, error) {
	next := &block.Block{
		Index:        prev.Index + 1,
		PreviousHash: prev.Hash,
		Timestamp:    uint64(time.Now().Unix()),
		Data:         data,
		Difficulty:   difficulty,
	}

	for nonce := uint32(0); ; nonce++ {
		if nonce&0xFFFF == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		next.Nonce = nonce
		next.Hash = next.ComputeHash()
		if HasValidHash(next.Hash, difficulty) {
			return next, nil
		}
		if nonce == ^uint32(0) {
			return nil, ErrNonceSpaceExhausted
		}
	}
}
