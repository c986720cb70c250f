// Package battle turns battlefield state into resolved engagements.
//
// An engagement is one attack and, when the matchup allows it, the
// counterattack the survivor answers with. The package snapshots both sides
// into the combat engine's value objects, resolves the strikes off a single
// seeded draw stream, and emits records carrying enough entropy provenance
// (seed, seed source, roll mode) to replay any engagement bit-exact later.
package battle

import (
	"math"
	"strings"
	"time"

	"github.com/ashveldt/wartide/internal/co"
	"github.com/ashveldt/wartide/internal/combat"
	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
	"github.com/ashveldt/wartide/internal/random"
	"github.com/ashveldt/wartide/internal/terrain"
	"github.com/ashveldt/wartide/internal/units"
)

// Battle is a named journal of engagements.
type Battle struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBattle validates and builds a battle aggregate.
func NewBattle(id, name string, now time.Time) (Battle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Battle{}, apperrors.New(apperrors.CodeBattleNameEmpty, "battle name is required")
	}
	return Battle{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// Combatant is one side's battlefield state going into an engagement.
type Combatant struct {
	UnitClass units.Class
	// HP is the unit's hit points on the 0-10 scale. Damage lands in whole
	// points; fractional HP appears after joins and repairs.
	HP float64
	// OfficerID is empty for unled units.
	OfficerID string
	// PowerState defaults to day when empty.
	PowerState co.PowerState
	Terrain    terrain.Kind
	// Comtowers is the number of comtowers this side owns.
	Comtowers int
}

// normalized fills defaulted fields.
func (c Combatant) normalized() Combatant {
	if c.PowerState == "" {
		c.PowerState = co.StateDay
	}
	return c
}

// Validate checks the combatant against the catalogs and engine ranges.
func (c Combatant) Validate() error {
	if _, err := units.Get(c.UnitClass); err != nil {
		return err
	}
	if _, err := terrain.Get(c.Terrain); err != nil {
		return err
	}
	if math.IsNaN(c.HP) || math.IsInf(c.HP, 0) || c.HP < 0 {
		return apperrors.New(apperrors.CodeCombatInvalidHP, "combatant hp must be finite and non-negative")
	}
	if c.Comtowers < 0 {
		return apperrors.New(apperrors.CodeCombatNegativeComtowers, "comtower count must be non-negative")
	}
	if _, err := c.modifiers(); err != nil {
		return err
	}
	return nil
}

// modifiers resolves the combatant's officer bundle, or the neutral bundle
// for unled units.
func (c Combatant) modifiers() (co.Modifiers, error) {
	if c.OfficerID == "" {
		return co.Neutral(c.Comtowers)
	}
	return co.Resolve(c.OfficerID, c.normalized().PowerState, c.Comtowers)
}

// Strike captures one resolved blow inside an engagement.
type Strike struct {
	Attacker   units.Class
	Defender   units.Class
	BaseDamage float64
	Report     combat.Report
}

// Outcome carries the deterministic results of resolving one engagement.
type Outcome struct {
	First Strike
	// Counter is nil when the defender died or cannot target the attacker.
	Counter *Strike

	AttackerHPAfter   float64
	DefenderHPAfter   float64
	AttackerDestroyed bool
	DefenderDestroyed bool
	// Explosions name the destruction animation for any side that died,
	// empty otherwise.
	AttackerExplosion units.ExplosionKind
	DefenderExplosion units.ExplosionKind
}

// Engagement is a stored, replayable engagement: the inputs, the entropy
// provenance, and the resolved outcome.
type Engagement struct {
	ID         string
	BattleID   string
	Seed       int64
	SeedSource random.SeedSource
	RollMode   random.RollMode
	Attacker   Combatant
	Defender   Combatant
	Outcome    Outcome
	CreatedAt  time.Time
}
