// Package random provides seed generation and seed arbitration for
// deterministic combat resolution.
//
// Seeds come from crypto/rand so live battles are unpredictable, while
// replays re-supply recorded seeds to reproduce every roll bit-exact.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"

	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// RollMode selects between fresh entropy and recorded-seed resolution.
type RollMode string

const (
	// RollModeLive draws a fresh server seed for the resolution.
	RollModeLive RollMode = "LIVE"
	// RollModeReplay re-runs a resolution from a previously recorded seed.
	RollModeReplay RollMode = "REPLAY"
)

// Valid reports whether the mode is one of the defined roll modes.
func (m RollMode) Valid() bool {
	return m == RollModeLive || m == RollModeReplay
}

// SeedSource records which side supplied the seed for a resolution.
type SeedSource string

const (
	// SeedSourceServer marks seeds generated by this service.
	SeedSourceServer SeedSource = "server"
	// SeedSourceClient marks seeds supplied by the caller.
	SeedSourceClient SeedSource = "client"
)

// Request carries an optional caller-supplied seed and roll mode.
type Request struct {
	Seed *uint64
	Mode RollMode
}

const maxSeedInt64 = uint64(1<<63 - 1)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ErrSeedOutOfRange returns the domain error for seeds beyond int64 range.
func ErrSeedOutOfRange() error {
	return apperrors.New(apperrors.CodeSeedOutOfRange, "seed exceeds int64 range")
}

// ResolveSeed arbitrates between a caller-supplied seed and a fresh server
// seed.
//
// A caller seed is honored only when the request names a roll mode for which
// allowClient returns true; otherwise the server generates the seed. A nil
// request resolves to a live server seed. newSeed defaults to NewSeed.
func ResolveSeed(req *Request, newSeed func() (int64, error), allowClient func(RollMode) bool) (int64, SeedSource, RollMode, error) {
	if newSeed == nil {
		newSeed = NewSeed
	}

	mode := RollModeLive
	if req != nil && req.Mode != "" {
		mode = req.Mode
	}
	if !mode.Valid() {
		return 0, "", "", apperrors.WithMetadata(apperrors.CodeRollModeInvalid, "unknown roll mode",
			map[string]string{"Mode": string(mode)})
	}

	if req != nil && req.Seed != nil && allowClient != nil && allowClient(mode) {
		if *req.Seed > maxSeedInt64 {
			return 0, "", "", ErrSeedOutOfRange()
		}
		return int64(*req.Seed), SeedSourceClient, mode, nil
	}

	seed, err := newSeed()
	if err != nil {
		return 0, "", "", fmt.Errorf("generate seed: %w", err)
	}
	return seed, SeedSourceServer, mode, nil
}
