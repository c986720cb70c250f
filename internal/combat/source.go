// Package combat implements the damage and luck resolution engine.
//
// A combat event is resolved from two value objects, an Attacker and a
// Defender, snapshotted from battlefield state by the caller. The engine is
// CO-agnostic: commanding-officer abilities, terrain lookups, and comtower
// ownership arrive pre-resolved as plain numbers. Randomness enters through
// a single injected Source and is consumed exactly once per strike, which
// keeps recorded draw streams aligned for replays.
package combat

import (
	"math"
	"math/rand"
	"strconv"

	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// Source yields uniform draws in [0, 1) for luck resolution.
//
// Implementations must be safe to use from a single resolution at a time;
// callers resolving combats concurrently supply one Source per resolution.
type Source interface {
	Uniform() (float64, error)
}

// ErrMissingSource indicates a strike was resolved without a luck source.
var ErrMissingSource = apperrors.New(apperrors.CodeLuckSourceMissing, "luck source is required")

// ErrSourceExhausted indicates a recorded draw log ran out mid-resolution.
var ErrSourceExhausted = apperrors.New(apperrors.CodeLuckSourceExhausted, "recorded luck draws are exhausted")

type randSource struct {
	rng *rand.Rand
}

func (s randSource) Uniform() (float64, error) {
	if s.rng == nil {
		return 0, ErrMissingSource
	}
	return s.rng.Float64(), nil
}

// RandSource adapts a math/rand generator into a Source.
func RandSource(rng *rand.Rand) Source {
	return randSource{rng: rng}
}

// SeededSource returns a deterministic Source for the given seed. The same
// seed always yields the same draw sequence.
func SeededSource(seed int64) Source {
	return randSource{rng: rand.New(rand.NewSource(seed))}
}

type fixedSource struct {
	value float64
}

func (s fixedSource) Uniform() (float64, error) {
	return s.value, nil
}

// FixedSource returns a Source whose every draw is the given value, clamped
// into [0, 1). Useful for pinning luck in tests and explanations.
func FixedSource(value float64) Source {
	if value < 0 {
		value = 0
	}
	if value >= 1 {
		value = math.Nextafter(1, 0)
	}
	return fixedSource{value: value}
}

// Recorded replays a fixed sequence of draws and fails once it is exhausted.
type Recorded struct {
	draws []float64
	next  int
}

// RecordedSource returns a Source that replays draws in order. Draws outside
// [0, 1) are rejected at draw time.
func RecordedSource(draws []float64) *Recorded {
	return &Recorded{draws: draws}
}

// Uniform returns the next recorded draw.
func (r *Recorded) Uniform() (float64, error) {
	if r.next >= len(r.draws) {
		return 0, ErrSourceExhausted
	}
	value := r.draws[r.next]
	r.next++
	if value < 0 || value >= 1 {
		return 0, apperrors.WithMetadata(apperrors.CodeLuckSourceFailed, "recorded draw outside [0,1)",
			map[string]string{"Draw": formatDraw(value)})
	}
	return value, nil
}

// Remaining reports how many recorded draws are left.
func (r *Recorded) Remaining() int {
	return len(r.draws) - r.next
}

func formatDraw(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
