// Package config loads node runtime settings from the environment
// (SPEC_FULL.md §10.3, spec.md §6). There is no config file or flag
// layer here — five env vars don't justify the teacher's
// file+flags+genesis-allocation machinery (see DESIGN.md).
package config

import (
	"os"
	"strconv"
	"time"
)

// Protocol constants (spec.md §6). These are consensus rules, identical
// across every node, and are never configurable at runtime.
const (
	BlockGenerationInterval      = 10 // seconds
	DifficultyAdjustmentInterval = 10 // blocks
	CoinbaseAmount               = 50
	StartDifficulty              = 1
)

// Config holds this node's runtime settings.
type Config struct {
	HTTPPort        int           // HTTP_PORT
	P2PPort         int           // P2P_PORT
	InitialPeers    []string      // INITIAL, comma-separated host:port
	KeyPath         string        // KEY_LOC
	MinerStartDelay time.Duration // MINER_START_DELAY
}

// Defaults, matching spec.md §6's stated defaults exactly.
const (
	DefaultHTTPPort        = 8000
	DefaultP2PPort         = 5000
	DefaultKeyPath         = "./node/wallet/private_key.pem"
	DefaultMinerStartDelay = 2 * time.Second
)

// FromEnv loads Config from the process environment, falling back to
// spec.md §6's defaults for anything unset.
func FromEnv() Config {
	return Config{
		HTTPPort:        envInt("HTTP_PORT", DefaultHTTPPort),
		P2PPort:         envInt("P2P_PORT", DefaultP2PPort),
		InitialPeers:    envPeers("INITIAL"),
		KeyPath:         envString("KEY_LOC", DefaultKeyPath),
		MinerStartDelay: envDuration("MINER_START_DELAY", DefaultMinerStartDelay),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(secs) * time.Second
}

func envPeers(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var peers []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			if i > start {
				peers = append(peers, v[start:i])
			}
			start = i + 1
		}
	}
	return peers
}
