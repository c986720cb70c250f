package combat

import (
	"fmt"
	"math"
)

// Explanation pairs a resolution report with human-readable steps describing
// how each term was produced.
type Explanation struct {
	Report Report
	Steps  []string
}

// Explain resolves one combat event and narrates the arithmetic. It consumes
// entropy exactly like Resolve: one draw from src.
func Explain(src Source, attacker Attacker, defender Defender) (Explanation, error) {
	report, err := Resolve(src, attacker, defender)
	if err != nil {
		return Explanation{}, err
	}

	steps := make([]string, 0, 8)

	modifier := attacker.COModifier()
	if attacker.COPower {
		steps = append(steps, fmt.Sprintf("co modifier %+.2f (bonus %.2f - penalty %.2f + power surge %.2f)",
			modifier, attacker.COBonus, attacker.COPenalty, powerStrikeBonus))
	} else {
		steps = append(steps, fmt.Sprintf("co modifier %+.2f (bonus %.2f - penalty %.2f)",
			modifier, attacker.COBonus, attacker.COPenalty))
	}

	bonus := modifier + float64(attacker.Comtowers)*comtowerStep
	steps = append(steps, fmt.Sprintf("bonus damage %+.2f (co modifier %+.2f + %d comtower(s) x %.2f)",
		bonus, modifier, attacker.Comtowers, comtowerStep))

	if report.CapApplied {
		steps = append(steps, fmt.Sprintf("attack fraction %.4f (base %.2f x bonus %+.2f = %.4f, capped at %.2f)",
			report.AttackFraction, attacker.BaseDamage, bonus, attacker.BaseDamage*bonus, attackFractionCap))
	} else {
		steps = append(steps, fmt.Sprintf("attack fraction %.4f (base %.2f x bonus %+.2f)",
			report.AttackFraction, attacker.BaseDamage, bonus))
	}

	steps = append(steps, fmt.Sprintf("luck %+.4f (single draw over [%+.2f, %+.2f])",
		report.Luck, -attacker.BadLuck, attacker.GoodLuck))

	steps = append(steps, fmt.Sprintf("attack value %.4f (ceil(hp %.1f) = %.0f x fraction %+.4f)",
		report.AttackValue, attacker.HP, ceilHP(attacker.HP), report.AttackFraction+report.Luck))

	steps = append(steps, fmt.Sprintf("defense %.4f (ceil(hp %.1f) = %.0f x %d star(s) x %.2f + co %+.2f + %d comtower(s) x %.2f)",
		report.Defense, defender.HP, ceilHP(defender.HP), defender.TerrainStars, terrainStarStep,
		defender.COBonus-defender.COPenalty, defender.Comtowers, comtowerStep))

	if report.Clamped {
		steps = append(steps, fmt.Sprintf("damage %d (attack %.4f x defense %.4f = %.4f, truncated and clamped to zero)",
			report.Damage, report.AttackValue, report.Defense, report.Raw))
	} else {
		steps = append(steps, fmt.Sprintf("damage %d (attack %.4f x defense %.4f = %.4f, truncated)",
			report.Damage, report.AttackValue, report.Defense, report.Raw))
	}

	return Explanation{Report: report, Steps: steps}, nil
}

func ceilHP(hp float64) float64 {
	return math.Ceil(hp)
}
