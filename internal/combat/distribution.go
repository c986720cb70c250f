package combat

import (
	"fmt"
	"math"
)

// maxDistributionOutcomes bounds the enumeration for degenerate inputs.
const maxDistributionOutcomes = 4096

// OutcomeProbability ties one damage value to its exact probability.
type OutcomeProbability struct {
	Damage      int
	Probability float64
}

// Distribution describes the exact damage distribution over the luck range.
type Distribution struct {
	// Outcomes lists reachable damage values in ascending order with their
	// probabilities. Probabilities sum to 1.
	Outcomes []OutcomeProbability
	// Min and Max are the smallest and largest reachable damage values.
	Min int
	Max int
	// Mean is the expected damage.
	Mean float64
}

// DamageDistribution computes the exact distribution of final damage over
// the attacker's luck range, with no entropy consumed.
//
// Final damage is an affine function of the luck draw pushed through
// truncation and the zero clamp, so each damage value corresponds to a luck
// sub-interval whose width gives its exact probability under the uniform
// draw.
func DamageDistribution(attacker Attacker, defender Defender) (Distribution, error) {
	if err := attacker.Validate(); err != nil {
		return Distribution{}, err
	}
	if err := defender.Validate(); err != nil {
		return Distribution{}, err
	}

	fraction, _ := attacker.attackFraction()
	hp := math.Ceil(attacker.HP)
	defense := defender.Defense()

	// raw(luck) = slope*luck + intercept
	slope := hp * defense
	intercept := hp * fraction * defense
	width := attacker.GoodLuck + attacker.BadLuck

	if width == 0 || slope == 0 {
		return pointMass(clampTrunc(intercept)), nil
	}

	rawLow := slope*(-attacker.BadLuck) + intercept
	rawHigh := slope*attacker.GoodLuck + intercept
	rawMin := math.Min(rawLow, rawHigh)
	rawMax := math.Max(rawLow, rawHigh)

	maxDamage := int(math.Trunc(rawMax))
	if maxDamage < 0 {
		maxDamage = 0
	}
	if maxDamage > maxDistributionOutcomes {
		return Distribution{}, fmt.Errorf("damage range spans %d outcomes, refusing to enumerate", maxDamage)
	}

	scale := math.Abs(slope) * width
	var outcomes []OutcomeProbability
	mean := 0.0
	for n := 0; n <= maxDamage; n++ {
		// Damage 0 covers every raw value below 1, clamp region included.
		bandLow := float64(n)
		bandHigh := float64(n + 1)
		if n == 0 {
			bandLow = math.Inf(-1)
		}

		lo := math.Max(bandLow, rawMin)
		hi := math.Min(bandHigh, rawMax)
		if hi <= lo {
			continue
		}

		p := (hi - lo) / scale
		outcomes = append(outcomes, OutcomeProbability{Damage: n, Probability: p})
		mean += float64(n) * p
	}

	if len(outcomes) == 0 {
		return pointMass(0), nil
	}
	return Distribution{
		Outcomes: outcomes,
		Min:      outcomes[0].Damage,
		Max:      outcomes[len(outcomes)-1].Damage,
		Mean:     mean,
	}, nil
}

func pointMass(damage int) Distribution {
	return Distribution{
		Outcomes: []OutcomeProbability{{Damage: damage, Probability: 1}},
		Min:      damage,
		Max:      damage,
		Mean:     float64(damage),
	}
}

func clampTrunc(raw float64) int {
	if raw < 0 {
		return 0
	}
	return int(math.Trunc(raw))
}
