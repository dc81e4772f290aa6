package p2p

import "errors"

// Sentinel error kinds (spec.md §7).
var (
	ErrPeerIO   = errors.New("p2p: peer connection failed")
	ErrBadFrame = errors.New("p2p: malformed wire frame")
)
