package block

import (
	"errors"
	"testing"
	"time"
)

func nextBlock(prev *Block) *Block {
	b := &Block{
		Index:        prev.Index + 1,
		PreviousHash: prev.Hash,
		Timestamp:    prev.Timestamp + 10,
		Data:         nil,
		Difficulty:   prev.Difficulty,
	}
	b.SetHash()
	return b
}

func TestValidateLinkage_Valid(t *testing.T) {
	prev := Genesis(1)
	next := nextBlock(prev)

	if err := ValidateLinkage(prev, next, time.Now()); err != nil {
		t.Errorf("valid link should pass: %v", err)
	}
}

func TestValidateLinkage_BadIndex(t *testing.T) {
	prev := Genesis(1)
	next := nextBlock(prev)
	next.Index = 5
	next.SetHash()

	err := ValidateLinkage(prev, next, time.Now())
	if !errors.Is(err, ErrBadIndex) {
		t.Errorf("expected ErrBadIndex, got: %v", err)
	}
}

func TestValidateLinkage_BadPreviousHash(t *testing.T) {
	prev := Genesis(1)
	next := nextBlock(prev)
	next.PreviousHash[0] ^= 0xFF
	next.SetHash()

	err := ValidateLinkage(prev, next, time.Now())
	if !errors.Is(err, ErrBadPreviousHash) {
		t.Errorf("expected ErrBadPreviousHash, got: %v", err)
	}
}

func TestValidateLinkage_BadHash(t *testing.T) {
	prev := Genesis(1)
	next := nextBlock(prev)
	next.Hash[0] ^= 0xFF

	err := ValidateLinkage(prev, next, time.Now())
	if !errors.Is(err, ErrBadHash) {
		t.Errorf("expected ErrBadHash, got: %v", err)
	}
}

func TestValidateLinkage_FutureTimestamp(t *testing.T) {
	prev := Genesis(1)
	next := nextBlock(prev)
	next.Timestamp = uint64(time.Now().Unix()) + 10000
	next.SetHash()

	err := ValidateLinkage(prev, next, time.Now())
	if !errors.Is(err, ErrBadTimestamp) {
		t.Errorf("expected ErrBadTimestamp for far-future block, got: %v", err)
	}
}

func TestValidateLinkage_PastTimestamp(t *testing.T) {
	prev := &Block{Index: 0, Timestamp: 100000}
	prev.SetHash()
	next := &Block{Index: 1, PreviousHash: prev.Hash, Timestamp: 1}
	next.SetHash()

	err := ValidateLinkage(prev, next, time.Now())
	if !errors.Is(err, ErrBadTimestamp) {
		t.Errorf("expected ErrBadTimestamp for block older than prev-60s, got: %v", err)
	}
}

func TestIsValidTimestamp_AllowsSmallSkew(t *testing.T) {
	prev := &Block{Timestamp: 1000}
	next := &Block{Timestamp: 970} // 30s before prev, within 60s tolerance
	if !IsValidTimestamp(prev, next, time.Unix(1000, 0)) {
		t.Error("30s of skew should be tolerated")
	}
}

func TestEqual(t *testing.T) {
	a := Genesis(1)
	b := Genesis(1)
	if !a.Equal(b) {
		t.Error("two genesis blocks should be equal")
	}

	c := Genesis(2)
	if a.Equal(c) {
		t.Error("genesis blocks with different difficulty should not be equal")
	}
}
