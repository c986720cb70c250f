package co

import (
	"sort"

	"github.com/ashveldt/wartide/internal/combat"
	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// defaultLuck is the luck range for officers without a luck ability.
var defaultLuck = StateModifiers{GoodLuck: combat.DefaultGoodLuck, BadLuck: combat.DefaultBadLuck}

func withLuck(m StateModifiers, goodLuck, badLuck float64) StateModifiers {
	m.GoodLuck = goodLuck
	m.BadLuck = badLuck
	return m
}

func plain(attackBonus, attackPenalty, defenseBonus, defensePenalty float64) StateModifiers {
	return StateModifiers{
		AttackBonus:    attackBonus,
		AttackPenalty:  attackPenalty,
		DefenseBonus:   defenseBonus,
		DefensePenalty: defensePenalty,
		GoodLuck:       combat.DefaultGoodLuck,
		BadLuck:        combat.DefaultBadLuck,
	}
}

// officers is the closed roster. Numbers are additive fractions; the flat
// bonus granted while any power runs comes from the engine, not from these
// tables.
var officers = []Officer{
	{
		ID:     "andy",
		Name:   "Andy",
		Nation: NationOrangeStar,
		Day:    defaultLuck,
		Power:  plain(0, 0, 0.10, 0),
		Super:  plain(0.10, 0, 0.10, 0),
	},
	{
		ID:     "max",
		Name:   "Max",
		Nation: NationOrangeStar,
		Day:    plain(0.15, 0, 0, 0),
		Power:  plain(0.25, 0, 0, 0),
		Super:  plain(0.35, 0, 0, 0),
	},
	{
		ID:     "nell",
		Name:   "Nell",
		Nation: NationOrangeStar,
		Day:    withLuck(StateModifiers{}, 0.19, 0),
		Power:  withLuck(StateModifiers{}, 0.49, 0),
		Super:  withLuck(StateModifiers{}, 0.89, 0),
	},
	{
		ID:     "colin",
		Name:   "Colin",
		Nation: NationBlueMoon,
		Day:    plain(0, 0.10, 0, 0),
		Power:  plain(0, 0.10, 0, 0),
		Super:  plain(0.20, 0.10, 0, 0),
	},
	{
		ID:     "kanbei",
		Name:   "Kanbei",
		Nation: NationYellowComet,
		Day:    plain(0.30, 0, 0.30, 0),
		Power:  plain(0.40, 0, 0.30, 0),
		Super:  plain(0.40, 0, 0.40, 0),
	},
	{
		ID:     "sonja",
		Name:   "Sonja",
		Nation: NationYellowComet,
		Day:    withLuck(StateModifiers{}, combat.DefaultGoodLuck, 0.05),
		Power:  withLuck(plain(0, 0, 0.10, 0), combat.DefaultGoodLuck, 0.05),
		Super:  withLuck(plain(0, 0, 0.20, 0), combat.DefaultGoodLuck, 0.05),
	},
	{
		ID:           "lash",
		Name:         "Lash",
		Nation:       NationBlackHole,
		TerrainBoost: true,
		Day:          defaultLuck,
		Power:        plain(0, 0, 0.10, 0),
		Super:        plain(0, 0, 0.10, 0),
	},
	{
		ID:           "javier",
		Name:         "Javier",
		Nation:       NationGreenEarth,
		TowerDefense: true,
		Day:          plain(0, 0, 0.10, 0),
		Power:        plain(0.10, 0, 0.20, 0),
		Super:        plain(0.20, 0, 0.30, 0),
	},
}

var catalog = func() map[string]Officer {
	byID := make(map[string]Officer, len(officers))
	for _, officer := range officers {
		byID[officer.ID] = officer
	}
	return byID
}()

// Get returns the officer with the given id.
func Get(id string) (Officer, error) {
	officer, ok := catalog[id]
	if !ok {
		return Officer{}, apperrors.WithMetadata(apperrors.CodeOfficerUnknown,
			"unknown officer", map[string]string{"Officer": id})
	}
	return officer, nil
}

// All returns the roster ordered by id.
func All() []Officer {
	all := make([]Officer, 0, len(catalog))
	for _, officer := range catalog {
		all = append(all, officer)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Resolve turns an officer, a power state, and an owned comtower count into
// the numeric bundle the battle layer feeds the combat engine.
func Resolve(officerID string, state PowerState, comtowers int) (Modifiers, error) {
	if comtowers < 0 {
		return Modifiers{}, apperrors.New(apperrors.CodeCombatNegativeComtowers,
			"comtower count must be non-negative")
	}
	officer, err := Get(officerID)
	if err != nil {
		return Modifiers{}, err
	}
	stats, err := officer.stateModifiers(state)
	if err != nil {
		return Modifiers{}, err
	}

	defenseTowers := 0
	if officer.TowerDefense {
		defenseTowers = comtowers
	}
	terrainScale := 1
	if officer.TerrainBoost && state == StateSuper {
		terrainScale = 2
	}

	return Modifiers{
		AttackBonus:      stats.AttackBonus,
		AttackPenalty:    stats.AttackPenalty,
		DefenseBonus:     stats.DefenseBonus,
		DefensePenalty:   stats.DefensePenalty,
		GoodLuck:         stats.GoodLuck,
		BadLuck:          stats.BadLuck,
		PowerActive:      state.Active(),
		AttackComtowers:  comtowers,
		DefenseComtowers: defenseTowers,
		TerrainScale:     terrainScale,
	}, nil
}

// Neutral returns the bundle for a unit with no officer: default luck, no
// modifiers, towers counting on attack only.
func Neutral(comtowers int) (Modifiers, error) {
	if comtowers < 0 {
		return Modifiers{}, apperrors.New(apperrors.CodeCombatNegativeComtowers,
			"comtower count must be non-negative")
	}
	return Modifiers{
		GoodLuck:        combat.DefaultGoodLuck,
		BadLuck:         combat.DefaultBadLuck,
		AttackComtowers: comtowers,
		TerrainScale:    1,
	}, nil
}
