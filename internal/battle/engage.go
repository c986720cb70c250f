package battle

import (
	"github.com/ashveldt/wartide/internal/co"
	"github.com/ashveldt/wartide/internal/combat"
	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
	"github.com/ashveldt/wartide/internal/terrain"
	"github.com/ashveldt/wartide/internal/units"
)

// Engage resolves one engagement from a seed: the attacker's strike, then
// the surviving defender's counterattack when the reverse matchup exists.
// Both strikes draw from a single stream seeded here, so an engagement is a
// pure function of (seed, attacker, defender).
func Engage(seed int64, attacker, defender Combatant) (Outcome, error) {
	return engage(combat.SeededSource(seed), attacker, defender)
}

// matchup is a validated engagement ready to resolve.
type matchup struct {
	attacker     Combatant
	defender     Combatant
	attackerMods co.Modifiers
	defenderMods co.Modifiers
	base         float64
}

// prepare normalizes and validates both sides and looks up the opening
// matchup. No entropy is consumed here, so invalid inputs never advance a
// seed's draw stream.
func prepare(attacker, defender Combatant) (matchup, error) {
	attacker = attacker.normalized()
	defender = defender.normalized()

	if err := attacker.Validate(); err != nil {
		return matchup{}, err
	}
	if err := defender.Validate(); err != nil {
		return matchup{}, err
	}
	if attacker.HP <= 0 || defender.HP <= 0 {
		return matchup{}, apperrors.New(apperrors.CodeBattleUnitDestroyed,
			"destroyed units cannot fight")
	}

	base, ok := units.BaseDamage(attacker.UnitClass, defender.UnitClass)
	if !ok {
		return matchup{}, apperrors.WithMetadata(apperrors.CodeBattleCannotAttack,
			"attacker cannot target defender", map[string]string{
				"Attacker": string(attacker.UnitClass),
				"Defender": string(defender.UnitClass),
			})
	}

	attackerMods, err := attacker.modifiers()
	if err != nil {
		return matchup{}, err
	}
	defenderMods, err := defender.modifiers()
	if err != nil {
		return matchup{}, err
	}

	return matchup{
		attacker:     attacker,
		defender:     defender,
		attackerMods: attackerMods,
		defenderMods: defenderMods,
		base:         base,
	}, nil
}

// StrikeSnapshots builds the engine snapshots for the attacker's opening
// strike. Analysis paths (explanations, damage distributions) work off the
// same snapshots engagement resolution uses.
func StrikeSnapshots(attacker, defender Combatant) (combat.Attacker, combat.Defender, error) {
	m, err := prepare(attacker, defender)
	if err != nil {
		return combat.Attacker{}, combat.Defender{}, err
	}
	return strikeSnapshots(m.attacker, m.attackerMods, m.attacker.HP, m.base, m.defender, m.defenderMods, m.defender.HP)
}

// engage is the source-injected core of Engage; tests pin luck through it.
func engage(src combat.Source, attacker, defender Combatant) (Outcome, error) {
	m, err := prepare(attacker, defender)
	if err != nil {
		return Outcome{}, err
	}
	attacker = m.attacker
	defender = m.defender

	first, err := resolveStrike(src, attacker, m.attackerMods, attacker.HP, m.base, defender, m.defenderMods, defender.HP)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		First:           first,
		AttackerHPAfter: attacker.HP,
		DefenderHPAfter: applyDamage(defender.HP, first.Report.Damage),
	}
	if outcome.DefenderHPAfter == 0 {
		outcome.DefenderDestroyed = true
		outcome.DefenderExplosion = explosionFor(defender.UnitClass)
	}

	counterBase, canCounter := units.BaseDamage(defender.UnitClass, attacker.UnitClass)
	if !outcome.DefenderDestroyed && canCounter {
		counter, err := resolveStrike(src, defender, m.defenderMods, outcome.DefenderHPAfter, counterBase, attacker, m.attackerMods, attacker.HP)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Counter = &counter
		outcome.AttackerHPAfter = applyDamage(attacker.HP, counter.Report.Damage)
		if outcome.AttackerHPAfter == 0 {
			outcome.AttackerDestroyed = true
			outcome.AttackerExplosion = explosionFor(attacker.UnitClass)
		}
	}

	return outcome, nil
}

// strikeSnapshots builds the engine value objects for one blow. The striker
// attacks at strikerHP (reduced HP for counterattacks), the target defends
// at targetHP with its terrain under its own officer's rules.
func strikeSnapshots(striker Combatant, strikerMods co.Modifiers, strikerHP, base float64,
	target Combatant, targetMods co.Modifiers, targetHP float64) (combat.Attacker, combat.Defender, error) {

	stars, err := terrain.Stars(target.Terrain)
	if err != nil {
		return combat.Attacker{}, combat.Defender{}, err
	}

	attackSnapshot := combat.Attacker{
		HP:         strikerHP,
		BaseDamage: base,
		COBonus:    strikerMods.AttackBonus,
		COPenalty:  strikerMods.AttackPenalty,
		COPower:    strikerMods.PowerActive,
		Comtowers:  strikerMods.AttackComtowers,
		GoodLuck:   strikerMods.GoodLuck,
		BadLuck:    strikerMods.BadLuck,
	}
	defenseSnapshot := combat.Defender{
		HP:           targetHP,
		COBonus:      targetMods.DefenseBonus,
		COPenalty:    targetMods.DefensePenalty,
		Comtowers:    targetMods.DefenseComtowers,
		TerrainStars: stars * targetMods.TerrainScale,
	}
	return attackSnapshot, defenseSnapshot, nil
}

// resolveStrike snapshots one blow for the engine and resolves it.
func resolveStrike(src combat.Source, striker Combatant, strikerMods co.Modifiers, strikerHP, base float64,
	target Combatant, targetMods co.Modifiers, targetHP float64) (Strike, error) {

	attackSnapshot, defenseSnapshot, err := strikeSnapshots(striker, strikerMods, strikerHP, base, target, targetMods, targetHP)
	if err != nil {
		return Strike{}, err
	}

	report, err := combat.Resolve(src, attackSnapshot, defenseSnapshot)
	if err != nil {
		return Strike{}, err
	}
	return Strike{
		Attacker:   striker.UnitClass,
		Defender:   target.UnitClass,
		BaseDamage: base,
		Report:     report,
	}, nil
}

// applyDamage subtracts whole-point damage from HP, clamping at zero.
func applyDamage(hp float64, damage int) float64 {
	remaining := hp - float64(damage)
	if remaining <= 0 {
		return 0
	}
	return remaining
}

func explosionFor(class units.Class) units.ExplosionKind {
	unit, err := units.Get(class)
	if err != nil {
		return ""
	}
	return unit.Explosion
}
