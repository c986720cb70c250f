package combat

import (
	"math"

	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

const (
	// powerStrikeBonus is the flat attack bonus granted while a CO power is active.
	powerStrikeBonus = 0.10
	// comtowerStep is the attack (or defense) added per owned comtower.
	comtowerStep = 0.10
	// terrainStarStep is the defense added per terrain star, scaled by HP.
	terrainStarStep = 0.10
	// attackFractionCap bounds the product of base damage and bonus damage.
	// The bound is applied with min and is therefore an upper limit on the
	// product, not a floor (tracked in DESIGN.md).
	attackFractionCap = 0.01
)

// Default luck range endpoints for units without officer-specific luck.
const (
	DefaultGoodLuck = 0.09
	DefaultBadLuck  = 0.0
)

// Attacker is the attacking side of one combat event, snapshotted from
// battlefield state. Fields are fractions where 1.0 means 100%. A snapshot
// is built once per event, validated, consumed, and discarded.
type Attacker struct {
	// HP is the unit's current hit points. Fractional HP still counts as a
	// whole unit for damage dealing, so HP is ceiling-rounded wherever it
	// scales another quantity.
	HP float64
	// BaseDamage is the unit-versus-unit base damage fraction from the
	// matchup table.
	BaseDamage float64
	// COBonus and COPenalty are additive attack modifiers from officer
	// abilities, both supplied as non-negative magnitudes.
	COBonus   float64
	COPenalty float64
	// COPower is true while the officer's power or super power is active.
	COPower bool
	// Comtowers counts owned comtowers, each worth a flat attack bonus.
	Comtowers int
	// GoodLuck and BadLuck are the luck range endpoints in [0, 1].
	GoodLuck float64
	BadLuck  float64
}

// NewAttacker validates the snapshot and returns it ready for resolution.
func NewAttacker(a Attacker) (Attacker, error) {
	if err := a.Validate(); err != nil {
		return Attacker{}, err
	}
	return a, nil
}

// Validate checks the snapshot's field ranges.
func (a Attacker) Validate() error {
	if !validHP(a.HP) {
		return apperrors.New(apperrors.CodeCombatInvalidHP, "attacker hp must be finite and non-negative")
	}
	if a.BaseDamage < 0 {
		return apperrors.New(apperrors.CodeCombatNegativeBaseDamage, "base damage must be non-negative")
	}
	if a.COBonus < 0 || a.COPenalty < 0 {
		return apperrors.New(apperrors.CodeCombatNegativeModifier, "co modifiers are magnitudes and must be non-negative")
	}
	if a.Comtowers < 0 {
		return apperrors.New(apperrors.CodeCombatNegativeComtowers, "comtower count must be non-negative")
	}
	if err := validateLuckRange("good_luck", a.GoodLuck); err != nil {
		return err
	}
	return validateLuckRange("bad_luck", a.BadLuck)
}

// COModifier returns the net CO attack modifier: bonus minus penalty, plus
// the flat power surge while a CO power is active.
func (a Attacker) COModifier() float64 {
	modifier := a.COBonus - a.COPenalty
	if a.COPower {
		modifier += powerStrikeBonus
	}
	return modifier
}

// Damage computes the attack output for one strike.
//
// The luck-free attack fraction is the product of base damage and bonus
// damage (CO modifier plus comtower bonus), bounded by attackFractionCap.
// One luck draw over [-BadLuck, +GoodLuck] is then added and the sum is
// scaled by ceiling(HP). Exactly one draw is consumed from src per call.
func (a Attacker) Damage(src Source) (float64, error) {
	_, _, value, err := a.strike(src)
	return value, err
}

// attackFraction returns the luck-free portion of the damage fraction and
// whether the cap replaced the raw product.
func (a Attacker) attackFraction() (float64, bool) {
	bonus := a.COModifier() + float64(a.Comtowers)*comtowerStep
	product := a.BaseDamage * bonus
	if product > attackFractionCap {
		return attackFractionCap, true
	}
	return product, false
}

// strike computes the per-strike terms, consuming one draw from src.
func (a Attacker) strike(src Source) (fraction, luck, value float64, err error) {
	fraction, _ = a.attackFraction()
	luck, err = LuckRoll(src, a.GoodLuck, a.BadLuck)
	if err != nil {
		return 0, 0, 0, err
	}
	value = math.Ceil(a.HP) * (fraction + luck)
	return fraction, luck, value, nil
}

func validHP(hp float64) bool {
	return !math.IsNaN(hp) && !math.IsInf(hp, 0) && hp >= 0
}

func validateLuckRange(field string, value float64) error {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return apperrors.WithMetadata(apperrors.CodeCombatLuckOutOfRange, "luck endpoints must be within [0,1]",
			map[string]string{"Field": field})
	}
	return nil
}
