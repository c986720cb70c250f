// Package units holds the unit-class roster and the base-damage matchup
// table that seeds every combat resolution.
package units

import (
	"sort"

	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// Class identifies a unit class.
type Class string

const (
	ClassInfantry     Class = "infantry"
	ClassMech         Class = "mech"
	ClassRecon        Class = "recon"
	ClassTank         Class = "tank"
	ClassMediumTank   Class = "medium_tank"
	ClassNeoTank      Class = "neo_tank"
	ClassMegaTank     Class = "mega_tank"
	ClassArtillery    Class = "artillery"
	ClassRockets      Class = "rockets"
	ClassAntiAir      Class = "anti_air"
	ClassFighter      Class = "fighter"
	ClassBomber       Class = "bomber"
	ClassBattleCopter Class = "battle_copter"
	ClassBattleship   Class = "battleship"
	ClassCruiser      Class = "cruiser"
	ClassSubmarine    Class = "submarine"
)

// MoveDomain is the movement medium a class travels through.
type MoveDomain string

const (
	DomainLand MoveDomain = "land"
	DomainAir  MoveDomain = "air"
	DomainSea  MoveDomain = "sea"
)

// ExplosionKind selects the destruction animation a rendering client plays
// when a unit dies.
type ExplosionKind string

const (
	ExplosionLand ExplosionKind = "land"
	ExplosionAir  ExplosionKind = "air"
	ExplosionSea  ExplosionKind = "sea"
	ExplosionMega ExplosionKind = "mega"
)

// Unit is one roster entry.
type Unit struct {
	Class     Class
	Name      string
	Domain    MoveDomain
	Explosion ExplosionKind
}

// roster is the closed unit set. The mega tank is the only class with the
// oversized destruction animation.
var roster = []Unit{
	{ClassInfantry, "Infantry", DomainLand, ExplosionLand},
	{ClassMech, "Mech", DomainLand, ExplosionLand},
	{ClassRecon, "Recon", DomainLand, ExplosionLand},
	{ClassTank, "Tank", DomainLand, ExplosionLand},
	{ClassMediumTank, "Medium Tank", DomainLand, ExplosionLand},
	{ClassNeoTank, "Neo Tank", DomainLand, ExplosionLand},
	{ClassMegaTank, "Mega Tank", DomainLand, ExplosionMega},
	{ClassArtillery, "Artillery", DomainLand, ExplosionLand},
	{ClassRockets, "Rockets", DomainLand, ExplosionLand},
	{ClassAntiAir, "Anti-Air", DomainLand, ExplosionLand},
	{ClassFighter, "Fighter", DomainAir, ExplosionAir},
	{ClassBomber, "Bomber", DomainAir, ExplosionAir},
	{ClassBattleCopter, "Battle Copter", DomainAir, ExplosionAir},
	{ClassBattleship, "Battleship", DomainSea, ExplosionSea},
	{ClassCruiser, "Cruiser", DomainSea, ExplosionSea},
	{ClassSubmarine, "Submarine", DomainSea, ExplosionSea},
}

var byClass = func() map[Class]Unit {
	units := make(map[Class]Unit, len(roster))
	for _, unit := range roster {
		units[unit.Class] = unit
	}
	return units
}()

// Get returns the roster entry for a class.
func Get(class Class) (Unit, error) {
	unit, ok := byClass[class]
	if !ok {
		return Unit{}, apperrors.WithMetadata(apperrors.CodeUnitUnknown,
			"unknown unit class", map[string]string{"Class": string(class)})
	}
	return unit, nil
}

// All returns the roster ordered by class id.
func All() []Unit {
	all := make([]Unit, 0, len(byClass))
	for _, unit := range byClass {
		all = append(all, unit)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Class < all[j].Class })
	return all
}
