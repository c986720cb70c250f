package units

import "sort"

// baseDamagePercent is the attacker-versus-defender base damage chart in
// whole percent. A missing pair means the attacker cannot target that class
// at all. Values above 100 are real: heavy armor overkills soft targets.
var baseDamagePercent = map[Class]map[Class]int{
	ClassInfantry: {
		ClassInfantry: 55, ClassMech: 45, ClassRecon: 12, ClassTank: 5,
		ClassMediumTank: 1, ClassNeoTank: 1, ClassMegaTank: 1,
		ClassArtillery: 15, ClassRockets: 25, ClassAntiAir: 5,
		ClassBattleCopter: 7,
	},
	ClassMech: {
		ClassInfantry: 65, ClassMech: 55, ClassRecon: 85, ClassTank: 55,
		ClassMediumTank: 15, ClassNeoTank: 15, ClassMegaTank: 5,
		ClassArtillery: 70, ClassRockets: 85, ClassAntiAir: 65,
		ClassBattleCopter: 9,
	},
	ClassRecon: {
		ClassInfantry: 70, ClassMech: 65, ClassRecon: 35, ClassTank: 6,
		ClassMediumTank: 1, ClassNeoTank: 1, ClassMegaTank: 1,
		ClassArtillery: 45, ClassRockets: 55, ClassAntiAir: 4,
		ClassBattleCopter: 10,
	},
	ClassTank: {
		ClassInfantry: 75, ClassMech: 70, ClassRecon: 85, ClassTank: 55,
		ClassMediumTank: 15, ClassNeoTank: 15, ClassMegaTank: 10,
		ClassArtillery: 70, ClassRockets: 85, ClassAntiAir: 65,
		ClassBattleCopter: 10, ClassBattleship: 1, ClassCruiser: 5,
		ClassSubmarine: 1,
	},
	ClassMediumTank: {
		ClassInfantry: 105, ClassMech: 95, ClassRecon: 105, ClassTank: 85,
		ClassMediumTank: 55, ClassNeoTank: 45, ClassMegaTank: 25,
		ClassArtillery: 105, ClassRockets: 105, ClassAntiAir: 105,
		ClassBattleCopter: 12, ClassBattleship: 10, ClassCruiser: 45,
		ClassSubmarine: 10,
	},
	ClassNeoTank: {
		ClassInfantry: 125, ClassMech: 115, ClassRecon: 125, ClassTank: 105,
		ClassMediumTank: 75, ClassNeoTank: 55, ClassMegaTank: 35,
		ClassArtillery: 115, ClassRockets: 125, ClassAntiAir: 115,
		ClassBattleCopter: 22, ClassBattleship: 15, ClassCruiser: 50,
		ClassSubmarine: 15,
	},
	ClassMegaTank: {
		ClassInfantry: 135, ClassMech: 125, ClassRecon: 195, ClassTank: 180,
		ClassMediumTank: 125, ClassNeoTank: 115, ClassMegaTank: 65,
		ClassArtillery: 195, ClassRockets: 195, ClassAntiAir: 195,
		ClassBattleCopter: 22, ClassBattleship: 45, ClassCruiser: 65,
		ClassSubmarine: 45,
	},
	ClassArtillery: {
		ClassInfantry: 90, ClassMech: 85, ClassRecon: 80, ClassTank: 70,
		ClassMediumTank: 45, ClassNeoTank: 40, ClassMegaTank: 15,
		ClassArtillery: 75, ClassRockets: 80, ClassAntiAir: 75,
		ClassBattleship: 40, ClassCruiser: 65, ClassSubmarine: 60,
	},
	ClassRockets: {
		ClassInfantry: 95, ClassMech: 90, ClassRecon: 90, ClassTank: 80,
		ClassMediumTank: 55, ClassNeoTank: 50, ClassMegaTank: 25,
		ClassArtillery: 80, ClassRockets: 85, ClassAntiAir: 85,
		ClassBattleship: 55, ClassCruiser: 85, ClassSubmarine: 85,
	},
	ClassAntiAir: {
		ClassInfantry: 105, ClassMech: 105, ClassRecon: 60, ClassTank: 25,
		ClassMediumTank: 10, ClassNeoTank: 5, ClassMegaTank: 1,
		ClassArtillery: 50, ClassRockets: 55, ClassAntiAir: 45,
		ClassFighter: 65, ClassBomber: 75, ClassBattleCopter: 120,
	},
	ClassFighter: {
		ClassFighter: 55, ClassBomber: 100, ClassBattleCopter: 100,
	},
	ClassBomber: {
		ClassInfantry: 110, ClassMech: 110, ClassRecon: 105, ClassTank: 105,
		ClassMediumTank: 95, ClassNeoTank: 90, ClassMegaTank: 35,
		ClassArtillery: 105, ClassRockets: 105, ClassAntiAir: 95,
		ClassBattleship: 75, ClassCruiser: 85, ClassSubmarine: 95,
	},
	ClassBattleCopter: {
		ClassInfantry: 75, ClassMech: 75, ClassRecon: 55, ClassTank: 55,
		ClassMediumTank: 25, ClassNeoTank: 20, ClassMegaTank: 10,
		ClassArtillery: 65, ClassRockets: 65, ClassAntiAir: 25,
		ClassBattleCopter: 65, ClassBattleship: 25, ClassCruiser: 55,
		ClassSubmarine: 25,
	},
	ClassBattleship: {
		ClassInfantry: 95, ClassMech: 90, ClassRecon: 90, ClassTank: 80,
		ClassMediumTank: 55, ClassNeoTank: 50, ClassMegaTank: 25,
		ClassArtillery: 80, ClassRockets: 85, ClassAntiAir: 85,
		ClassBattleship: 50, ClassCruiser: 95, ClassSubmarine: 95,
	},
	ClassCruiser: {
		ClassFighter: 55, ClassBomber: 65, ClassBattleCopter: 115,
		ClassSubmarine: 90,
	},
	ClassSubmarine: {
		ClassBattleship: 55, ClassCruiser: 25, ClassSubmarine: 55,
	},
}

// BaseDamage returns the base damage fraction for an attacker-defender pair,
// where 1.0 means 100%. The second return is false when the attacker cannot
// target the defender.
func BaseDamage(attacker, defender Class) (float64, bool) {
	row, ok := baseDamagePercent[attacker]
	if !ok {
		return 0, false
	}
	percent, ok := row[defender]
	if !ok {
		return 0, false
	}
	return float64(percent) / 100, true
}

// CanAttack reports whether the matchup table has an entry for the pair.
func CanAttack(attacker, defender Class) bool {
	_, ok := BaseDamage(attacker, defender)
	return ok
}

// Matchup is one row of an attacker's reachable targets.
type Matchup struct {
	Defender   Class
	BaseDamage float64
}

// Matchups lists every class the attacker can target, ordered by defender
// class id.
func Matchups(attacker Class) ([]Matchup, error) {
	if _, err := Get(attacker); err != nil {
		return nil, err
	}
	row := baseDamagePercent[attacker]
	matchups := make([]Matchup, 0, len(row))
	for defender, percent := range row {
		matchups = append(matchups, Matchup{Defender: defender, BaseDamage: float64(percent) / 100})
	}
	sort.Slice(matchups, func(i, j int) bool { return matchups[i].Defender < matchups[j].Defender })
	return matchups, nil
}
