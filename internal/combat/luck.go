package combat

import "fmt"

// LuckRoll draws the luck delta for one strike.
//
// The delta is a single uniform draw over the combined signed range
// [-badLuck, +goodLuck]. The two endpoints are independent magnitudes, not a
// symmetric band, and the range is never realized as two separate rolls.
//
// Exactly one value is consumed from src per call, including when both
// endpoints are zero. Recorded draw streams depend on that count.
func LuckRoll(src Source, goodLuck, badLuck float64) (float64, error) {
	if src == nil {
		return 0, ErrMissingSource
	}
	u, err := src.Uniform()
	if err != nil {
		return 0, fmt.Errorf("draw luck: %w", err)
	}
	return -badLuck + u*(goodLuck+badLuck), nil
}
