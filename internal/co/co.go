// Package co holds the commanding-officer catalog and resolves officer
// abilities into the plain numeric modifiers the combat engine consumes.
//
// The combat engine is officer-agnostic on purpose: it takes bonuses,
// penalties, luck endpoints, and tower counts as numbers. This package owns
// the mapping from an officer and a power state to that bundle, including
// the two special abilities that bend the usual rules (comtowers counting
// defensively, and terrain stars doubling under one super power).
package co

import (
	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// Nation identifies an officer's army.
type Nation string

const (
	NationOrangeStar  Nation = "orange_star"
	NationBlueMoon    Nation = "blue_moon"
	NationGreenEarth  Nation = "green_earth"
	NationYellowComet Nation = "yellow_comet"
	NationBlackHole   Nation = "black_hole"
)

// PowerState is an officer's current ability tier.
type PowerState string

const (
	StateDay   PowerState = "day"
	StatePower PowerState = "power"
	StateSuper PowerState = "super"
)

// Valid reports whether the state is a known tier.
func (s PowerState) Valid() bool {
	switch s {
	case StateDay, StatePower, StateSuper:
		return true
	}
	return false
}

// Active reports whether a power (or super power) is running, which grants
// the engine's flat power-strike bonus.
func (s PowerState) Active() bool {
	return s == StatePower || s == StateSuper
}

// StateModifiers are one officer's numbers for one power state. All values
// are fractions where 1.0 means 100%, supplied as non-negative magnitudes.
type StateModifiers struct {
	AttackBonus    float64
	AttackPenalty  float64
	DefenseBonus   float64
	DefensePenalty float64
	GoodLuck       float64
	BadLuck        float64
}

// Officer is one catalog entry. The catalog is closed: officers are defined
// here, not loaded from storage.
type Officer struct {
	ID     string
	Name   string
	Nation Nation
	// TowerDefense marks the one officer whose owned comtowers also count
	// on defense. Everyone else defends with zero towers.
	TowerDefense bool
	// TerrainBoost marks the one officer whose super power doubles terrain
	// stars before they reach the engine.
	TerrainBoost bool

	Day   StateModifiers
	Power StateModifiers
	Super StateModifiers
}

// stateModifiers returns the officer's numbers for the given tier.
func (o Officer) stateModifiers(state PowerState) (StateModifiers, error) {
	switch state {
	case StateDay:
		return o.Day, nil
	case StatePower:
		return o.Power, nil
	case StateSuper:
		return o.Super, nil
	default:
		return StateModifiers{}, apperrors.WithMetadata(apperrors.CodeOfficerInvalidState,
			"unknown power state", map[string]string{"State": string(state)})
	}
}

// Modifiers is the resolved bundle handed to the battle layer: officer
// numbers for the requested state with the tower and terrain rules already
// applied.
type Modifiers struct {
	AttackBonus    float64
	AttackPenalty  float64
	DefenseBonus   float64
	DefensePenalty float64
	GoodLuck       float64
	BadLuck        float64
	// PowerActive feeds the engine's flat power-strike bonus.
	PowerActive bool
	// AttackComtowers is the tower count applied on attack (every owned
	// tower).
	AttackComtowers int
	// DefenseComtowers is the tower count applied on defense, zero unless
	// the officer has TowerDefense.
	DefenseComtowers int
	// TerrainScale multiplies terrain stars before the engine sees them.
	// 2 only while a TerrainBoost officer's super power runs, otherwise 1.
	TerrainScale int
}
