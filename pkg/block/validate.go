package block

import (
	"errors"
	"fmt"
	"time"
)

// Structural block-linkage errors shared by every validator strategy
// (SPEC_FULL.md §4.5's "shared defaults"). A strategy-specific difficulty
// predicate (PoW's leading-zero-bits check, a future PoS stake check) is
// layered on top of these by internal/consensus — pkg/block only knows
// about chain shape, not how difficulty is satisfied.
var (
	ErrBadIndex        = errors.New("block: index is not predecessor index + 1")
	ErrBadPreviousHash = errors.New("block: previous_hash does not match predecessor hash")
	ErrBadHash         = errors.New("block: hash does not match recomputed hash")
	ErrBadTimestamp    = errors.New("block: timestamp outside tolerated skew")
)

// timestampSkew is how much clock drift is tolerated in either direction
// (spec.md §3: next.timestamp > prev.timestamp-60 AND next.timestamp < now+60).
const timestampSkew = 60 * time.Second

// IsValidTimestamp reports whether next's timestamp is sane relative to
// prev's and the current time.
func IsValidTimestamp(prev, next *Block, now time.Time) bool {
	skew := uint64(timestampSkew.Seconds())
	lowerOK := next.Timestamp+skew > prev.Timestamp || prev.Timestamp < skew
	upperOK := next.Timestamp < uint64(now.Unix())+skew
	return lowerOK && upperOK
}

// ValidateLinkage checks the structural rules any next block must satisfy
// relative to prev, independent of the active consensus strategy: index
// continuity, previous_hash equality, and hash integrity. Callers layer
// their own difficulty predicate and required-difficulty check on top.
func ValidateLinkage(prev, next *Block, now time.Time) error {
	if prev.Index+1 != next.Index {
		return fmt.Errorf("%w: prev=%d next=%d", ErrBadIndex, prev.Index, next.Index)
	}
	if next.PreviousHash != prev.Hash {
		return fmt.Errorf("%w: next.previous_hash=%s prev.hash=%s", ErrBadPreviousHash, next.PreviousHash, prev.Hash)
	}
	if next.Hash != next.ComputeHash() {
		return fmt.Errorf("%w: stored=%s computed=%s", ErrBadHash, next.Hash, next.ComputeHash())
	}
	if !IsValidTimestamp(prev, next, now) {
		return fmt.Errorf("%w: prev=%d next=%d", ErrBadTimestamp, prev.Timestamp, next.Timestamp)
	}
	return nil
}

// Equal reports whether two blocks are byte-equal in every field that
// participates in their hash, used to check a received chain's first
// block against the canonical genesis (spec.md §4.6).
func (b *Block) Equal(other *Block) bool {
	if b.Index != other.Index || b.PreviousHash != other.PreviousHash ||
		b.Timestamp != other.Timestamp || b.Hash != other.Hash ||
		b.Nonce != other.Nonce || b.Difficulty != other.Difficulty {
		return false
	}
	return len(b.Data) == len(other.Data)
}
