package combat

import (
	"math"

	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// Defender is the defending side of one combat event, snapshotted from
// battlefield state. Fields are fractions where 1.0 means 100%.
type Defender struct {
	// HP is the unit's current hit points, ceiling-rounded wherever it
	// scales another quantity.
	HP float64
	// COBonus and COPenalty are additive defense modifiers from officer
	// abilities, both supplied as non-negative magnitudes.
	COBonus   float64
	COPenalty float64
	// Comtowers counts owned comtowers. Only one officer's ability reads
	// this defensively; callers supply 0 for everyone else.
	Comtowers int
	// TerrainStars is the tile's defense-star rating. The one power that
	// doubles terrain defense doubles this value before it reaches the
	// snapshot.
	TerrainStars int
}

// NewDefender validates the snapshot and returns it ready for resolution.
func NewDefender(d Defender) (Defender, error) {
	if err := d.Validate(); err != nil {
		return Defender{}, err
	}
	return d, nil
}

// Validate checks the snapshot's field ranges.
func (d Defender) Validate() error {
	if !validHP(d.HP) {
		return apperrors.New(apperrors.CodeCombatInvalidHP, "defender hp must be finite and non-negative")
	}
	if d.COBonus < 0 || d.COPenalty < 0 {
		return apperrors.New(apperrors.CodeCombatNegativeModifier, "co modifiers are magnitudes and must be non-negative")
	}
	if d.Comtowers < 0 {
		return apperrors.New(apperrors.CodeCombatNegativeComtowers, "comtower count must be non-negative")
	}
	if d.TerrainStars < 0 {
		return apperrors.New(apperrors.CodeCombatNegativeTerrainStars, "terrain stars must be non-negative")
	}
	return nil
}

// Defense computes the defense value for one strike. Pure: no randomness,
// no state, identical results on repeated calls.
//
// The terrain contribution scales with ceiling(HP); CO and comtower
// contributions are flat.
func (d Defender) Defense() float64 {
	terrain := math.Ceil(d.HP) * (float64(d.TerrainStars) * terrainStarStep)
	bonus := d.COBonus - d.COPenalty + float64(d.Comtowers)*comtowerStep
	return bonus + terrain
}
