package combat

import "math"

// Report captures every intermediate term of one damage resolution.
type Report struct {
	// AttackFraction is the luck-free damage fraction after the cap.
	AttackFraction float64
	// CapApplied is true when the cap replaced the raw base-times-bonus
	// product.
	CapApplied bool
	// Luck is the signed luck delta drawn for this strike.
	Luck float64
	// AttackValue is ceiling(attacker HP) times the damage fraction.
	AttackValue float64
	// Defense is the defender's computed defense value.
	Defense float64
	// Raw is attack value times defense, before truncation.
	Raw float64
	// Damage is the final HP loss: Raw truncated toward zero, never
	// negative.
	Damage int
	// Clamped is true when a negative raw product was clamped to zero.
	// Expected under some input combinations, but worth surfacing.
	Clamped bool
}

// Resolve computes the full damage breakdown for one combat event.
//
// Both snapshots are validated before any entropy is consumed, so an invalid
// pair never advances a draw stream. Exactly one draw is consumed on
// success.
func Resolve(src Source, attacker Attacker, defender Defender) (Report, error) {
	if err := attacker.Validate(); err != nil {
		return Report{}, err
	}
	if err := defender.Validate(); err != nil {
		return Report{}, err
	}

	fraction, capped := attacker.attackFraction()
	luck, err := LuckRoll(src, attacker.GoodLuck, attacker.BadLuck)
	if err != nil {
		return Report{}, err
	}

	attackValue := math.Ceil(attacker.HP) * (fraction + luck)
	defense := defender.Defense()
	raw := attackValue * defense

	damage := int(math.Trunc(raw))
	clamped := false
	if raw < 0 {
		damage = 0
		clamped = true
	}

	return Report{
		AttackFraction: fraction,
		CapApplied:     capped,
		Luck:           luck,
		AttackValue:    attackValue,
		Defense:        defense,
		Raw:            raw,
		Damage:         damage,
		Clamped:        clamped,
	}, nil
}

// ResolveDamage returns only the final HP loss for one combat event.
func ResolveDamage(src Source, attacker Attacker, defender Defender) (int, error) {
	report, err := Resolve(src, attacker, defender)
	if err != nil {
		return 0, err
	}
	return report.Damage, nil
}
