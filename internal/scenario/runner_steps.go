package scenario

import (
	"strings"

	"github.com/ashveldt/wartide/internal/battle"
	"github.com/ashveldt/wartide/internal/co"
	"github.com/ashveldt/wartide/internal/terrain"
	"github.com/ashveldt/wartide/internal/units"
)

// defaultStrikeSeed keeps unscripted strikes reproducible.
const defaultStrikeSeed = 42

func (r *Runner) runStep(state *scenarioState, step Step) error {
	switch step.Kind {
	case "combatant":
		return r.runCombatantStep(state, step)
	case "strike":
		return r.runStrikeStep(state, step)
	case "expect_hp":
		return r.runExpectHPStep(state, step)
	case "expect_alive":
		return r.runExpectAliveStep(state, step)
	case "expect_destroyed":
		return r.runExpectDestroyedStep(state, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runCombatantStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "name")
	if name == "" {
		return r.failf("combatant name is required")
	}
	if _, ok := state.combatants[name]; ok {
		return r.failf("combatant %q already declared", name)
	}

	combatant := battle.Combatant{
		UnitClass:  units.Class(strings.ToLower(optionalString(step.Args, "unit", ""))),
		HP:         optionalFloat(step.Args, "hp", 10),
		OfficerID:  strings.ToLower(optionalString(step.Args, "officer", "")),
		PowerState: co.PowerState(strings.ToLower(optionalString(step.Args, "power_state", ""))),
		Terrain:    terrain.Kind(strings.ToLower(optionalString(step.Args, "terrain", "plains"))),
		Comtowers:  optionalInt(step.Args, "comtowers", 0),
	}
	if err := combatant.Validate(); err != nil {
		return r.failf("combatant %q: %v", name, err)
	}

	state.combatants[name] = &combatant
	r.logf("combatant %s: %s at %.1f hp on %s", name, combatant.UnitClass, combatant.HP, combatant.Terrain)
	return nil
}

func (r *Runner) runStrikeStep(state *scenarioState, step Step) error {
	attackerName := requiredString(step.Args, "attacker")
	if attackerName == "" {
		return r.failf("strike requires an attacker")
	}
	defenderName := requiredString(step.Args, "defender")
	if defenderName == "" {
		return r.failf("strike requires a defender")
	}

	attackerName, attacker, err := resolveCombatant(state, attackerName)
	if err != nil {
		return err
	}
	defenderName, defender, err := resolveCombatant(state, defenderName)
	if err != nil {
		return err
	}
	if state.destroyed[attackerName] {
		return r.failf("combatant %q is already destroyed", attackerName)
	}
	if state.destroyed[defenderName] {
		return r.failf("combatant %q is already destroyed", defenderName)
	}

	seed := int64(optionalInt(step.Args, "seed", defaultStrikeSeed))
	outcome, err := battle.Engage(seed, *attacker, *defender)
	if err != nil {
		return r.failf("strike %s vs %s: %v", attackerName, defenderName, err)
	}

	attacker.HP = outcome.AttackerHPAfter
	defender.HP = outcome.DefenderHPAfter
	if outcome.AttackerDestroyed {
		state.destroyed[attackerName] = true
	}
	if outcome.DefenderDestroyed {
		state.destroyed[defenderName] = true
	}
	r.logf("strike %s -> %s (seed %d): damage %d, counter %v",
		attackerName, defenderName, seed, outcome.First.Report.Damage, outcome.Counter != nil)

	return r.assertStrikeExpectations(step.Args, attackerName, defenderName, outcome)
}

func (r *Runner) assertStrikeExpectations(args map[string]any, attackerName, defenderName string, outcome battle.Outcome) error {
	damage := outcome.First.Report.Damage
	if want, ok := readInt(args, "expect_damage"); ok && damage != want {
		if err := r.assertf("%s -> %s damage = %d, want %d", attackerName, defenderName, damage, want); err != nil {
			return err
		}
	}
	if want, ok := readInt(args, "expect_min_damage"); ok && damage < want {
		if err := r.assertf("%s -> %s damage = %d, want at least %d", attackerName, defenderName, damage, want); err != nil {
			return err
		}
	}
	if want, ok := readInt(args, "expect_max_damage"); ok && damage > want {
		if err := r.assertf("%s -> %s damage = %d, want at most %d", attackerName, defenderName, damage, want); err != nil {
			return err
		}
	}
	if want, ok := readBool(args, "expect_counter"); ok {
		got := outcome.Counter != nil
		if got != want {
			if err := r.assertf("%s -> %s counter = %v, want %v", attackerName, defenderName, got, want); err != nil {
				return err
			}
		}
	}
	if want, ok := readBool(args, "expect_kill"); ok && outcome.DefenderDestroyed != want {
		if err := r.assertf("%s -> %s kill = %v, want %v", attackerName, defenderName, outcome.DefenderDestroyed, want); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runExpectHPStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "target")
	if name == "" {
		return r.failf("expect_hp requires a target")
	}
	name, combatant, err := resolveCombatant(state, name)
	if err != nil {
		return err
	}

	if want, ok := readFloat(step.Args, "exactly"); ok && !floatsClose(combatant.HP, want) {
		if err := r.assertf("%s hp = %v, want %v", name, combatant.HP, want); err != nil {
			return err
		}
	}
	if want, ok := readFloat(step.Args, "at_least"); ok && combatant.HP < want {
		if err := r.assertf("%s hp = %v, want at least %v", name, combatant.HP, want); err != nil {
			return err
		}
	}
	if want, ok := readFloat(step.Args, "at_most"); ok && combatant.HP > want {
		if err := r.assertf("%s hp = %v, want at most %v", name, combatant.HP, want); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runExpectAliveStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "target")
	if name == "" {
		return r.failf("expect_alive requires a target")
	}
	name, _, err := resolveCombatant(state, name)
	if err != nil {
		return err
	}
	if state.destroyed[name] {
		return r.assertf("combatant %q was destroyed", name)
	}
	return nil
}

func (r *Runner) runExpectDestroyedStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "target")
	if name == "" {
		return r.failf("expect_destroyed requires a target")
	}
	name, _, err := resolveCombatant(state, name)
	if err != nil {
		return err
	}
	if !state.destroyed[name] {
		return r.assertf("combatant %q survived", name)
	}
	return nil
}
