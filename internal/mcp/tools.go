package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ashveldt/wartide/internal/battle"
	"github.com/ashveldt/wartide/internal/battle/service"
	"github.com/ashveldt/wartide/internal/co"
	"github.com/ashveldt/wartide/internal/random"
	"github.com/ashveldt/wartide/internal/terrain"
	"github.com/ashveldt/wartide/internal/units"
)

// RngRequest represents optional RNG configuration for deterministic rolls.
type RngRequest struct {
	Seed     *uint64 `json:"seed,omitempty" jsonschema:"optional seed for deterministic resolution"`
	RollMode string  `json:"roll_mode,omitempty" jsonschema:"roll mode (LIVE or REPLAY)"`
}

func (r *RngRequest) seed() *uint64 {
	if r == nil {
		return nil
	}
	return r.Seed
}

func (r *RngRequest) mode() random.RollMode {
	if r == nil {
		return ""
	}
	return random.RollMode(strings.ToUpper(strings.TrimSpace(r.RollMode)))
}

// RngResult represents RNG details used for a resolution.
type RngResult struct {
	Seed       int64  `json:"seed" jsonschema:"seed value used by the engine"`
	SeedSource string `json:"seed_source" jsonschema:"seed source (client or server)"`
	RollMode   string `json:"roll_mode" jsonschema:"roll mode applied"`
}

// CombatantInput represents one side of a matchup.
type CombatantInput struct {
	Unit       string  `json:"unit" jsonschema:"unit class, e.g. infantry or tank"`
	HP         float64 `json:"hp" jsonschema:"hit points on the 0-10 scale"`
	Officer    string  `json:"officer,omitempty" jsonschema:"officer id, empty for unled units"`
	PowerState string  `json:"power_state,omitempty" jsonschema:"officer power state (day, power, or super)"`
	Terrain    string  `json:"terrain" jsonschema:"terrain kind the unit stands on"`
	Comtowers  int     `json:"comtowers,omitempty" jsonschema:"comtowers owned by this side"`
}

func (c CombatantInput) toDomain() battle.Combatant {
	return battle.Combatant{
		UnitClass:  units.Class(strings.TrimSpace(c.Unit)),
		HP:         c.HP,
		OfficerID:  strings.TrimSpace(c.Officer),
		PowerState: co.PowerState(strings.TrimSpace(c.PowerState)),
		Terrain:    terrain.Kind(strings.TrimSpace(c.Terrain)),
		Comtowers:  c.Comtowers,
	}
}

// StrikeResult represents one resolved blow.
type StrikeResult struct {
	Attacker    string  `json:"attacker" jsonschema:"striking unit class"`
	Defender    string  `json:"defender" jsonschema:"target unit class"`
	BaseDamage  float64 `json:"base_damage" jsonschema:"matchup base damage fraction"`
	Damage      int     `json:"damage" jsonschema:"final HP loss"`
	Luck        float64 `json:"luck" jsonschema:"signed luck delta drawn for this strike"`
	AttackValue float64 `json:"attack_value" jsonschema:"attack value before defense"`
	Defense     float64 `json:"defense" jsonschema:"defender's computed defense value"`
}

func strikeResult(s battle.Strike) StrikeResult {
	return StrikeResult{
		Attacker:    string(s.Attacker),
		Defender:    string(s.Defender),
		BaseDamage:  s.BaseDamage,
		Damage:      s.Report.Damage,
		Luck:        s.Report.Luck,
		AttackValue: s.Report.AttackValue,
		Defense:     s.Report.Defense,
	}
}

// BattleResolveInput represents the MCP tool input for engagement resolution.
type BattleResolveInput struct {
	Attacker CombatantInput `json:"attacker" jsonschema:"attacking side"`
	Defender CombatantInput `json:"defender" jsonschema:"defending side"`
	Rng      *RngRequest    `json:"rng,omitempty" jsonschema:"optional rng configuration"`
}

// BattleResolveResult represents the MCP tool output for engagement resolution.
type BattleResolveResult struct {
	First             StrikeResult  `json:"first" jsonschema:"the opening strike"`
	Counter           *StrikeResult `json:"counter,omitempty" jsonschema:"the counterattack, absent when none happened"`
	AttackerHPAfter   float64       `json:"attacker_hp_after" jsonschema:"attacker HP after the engagement"`
	DefenderHPAfter   float64       `json:"defender_hp_after" jsonschema:"defender HP after the engagement"`
	AttackerDestroyed bool          `json:"attacker_destroyed" jsonschema:"whether the attacker was destroyed"`
	DefenderDestroyed bool          `json:"defender_destroyed" jsonschema:"whether the defender was destroyed"`
	Rng               RngResult     `json:"rng" jsonschema:"rng details"`
}

// DamageExplainInput represents the MCP tool input for strike explanations.
type DamageExplainInput struct {
	Attacker CombatantInput `json:"attacker" jsonschema:"attacking side"`
	Defender CombatantInput `json:"defender" jsonschema:"defending side"`
	Rng      *RngRequest    `json:"rng,omitempty" jsonschema:"optional rng configuration"`
}

// DamageExplainResult represents the MCP tool output for strike explanations.
type DamageExplainResult struct {
	Damage       int       `json:"damage" jsonschema:"final HP loss"`
	Luck         float64   `json:"luck" jsonschema:"signed luck delta drawn"`
	AttackValue  float64   `json:"attack_value" jsonschema:"attack value before defense"`
	Defense      float64   `json:"defense" jsonschema:"defender's computed defense value"`
	CapApplied   bool      `json:"cap_applied" jsonschema:"whether the damage cap replaced the raw product"`
	RulesVersion string    `json:"rules_version" jsonschema:"damage rules revision"`
	Steps        []string  `json:"steps" jsonschema:"ordered arithmetic narration"`
	Rng          RngResult `json:"rng" jsonschema:"rng details"`
}

// DamageDistributionInput represents the MCP tool input for damage distributions.
type DamageDistributionInput struct {
	Attacker CombatantInput `json:"attacker" jsonschema:"attacking side"`
	Defender CombatantInput `json:"defender" jsonschema:"defending side"`
}

// DamageOutcome represents one reachable damage value and its probability.
type DamageOutcome struct {
	Damage      int     `json:"damage" jsonschema:"damage value"`
	Probability float64 `json:"probability" jsonschema:"probability of this damage value"`
}

// DamageDistributionResult represents the MCP tool output for damage distributions.
type DamageDistributionResult struct {
	Outcomes []DamageOutcome `json:"outcomes" jsonschema:"reachable damage values in ascending order"`
	Min      int             `json:"min" jsonschema:"smallest reachable damage"`
	Max      int             `json:"max" jsonschema:"largest reachable damage"`
	Mean     float64         `json:"mean" jsonschema:"expected damage"`
}

// UnitMatchupInput represents the MCP tool input for matchup lookups.
type UnitMatchupInput struct {
	Attacker string `json:"attacker" jsonschema:"attacking unit class"`
	Defender string `json:"defender" jsonschema:"defending unit class"`
}

// UnitMatchupResult represents the MCP tool output for matchup lookups.
type UnitMatchupResult struct {
	CanAttack       bool    `json:"can_attack" jsonschema:"whether the attacker can target the defender"`
	BaseDamage      float64 `json:"base_damage" jsonschema:"base damage fraction before modifiers, 0 when the attack is impossible"`
	CounterPossible bool    `json:"counter_possible" jsonschema:"whether the defender could strike back"`
}

// CombatRulesInput represents the MCP tool input for ruleset metadata.
type CombatRulesInput struct{}

// CombatRulesResult represents the MCP tool output for ruleset metadata.
type CombatRulesResult struct {
	Version          string  `json:"version" jsonschema:"damage rules revision"`
	LuckModel        string  `json:"luck_model" jsonschema:"luck model identifier"`
	AttackCap        float64 `json:"attack_cap" jsonschema:"damage fraction cap"`
	AttackCapMode    string  `json:"attack_cap_mode" jsonschema:"how the cap is applied"`
	PowerStrikeBonus float64 `json:"power_strike_bonus" jsonschema:"flat attack bonus while a power is active"`
	ComtowerStep     float64 `json:"comtower_step" jsonschema:"attack bonus per owned comtower"`
	TerrainStarStep  float64 `json:"terrain_star_step" jsonschema:"defense bonus per terrain star"`
	DefaultGoodLuck  float64 `json:"default_good_luck" jsonschema:"default upper luck bound"`
	DefaultBadLuck   float64 `json:"default_bad_luck" jsonschema:"default lower luck bound"`
}

// BattleResolveTool defines the MCP tool schema for engagement resolution.
func BattleResolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "battle_resolve",
		Description: "Resolves a full engagement (strike and counter) between two combatants",
	}
}

// DamageExplainTool defines the MCP tool schema for strike explanations.
func DamageExplainTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "damage_explain",
		Description: "Explains each arithmetic term of an opening strike",
	}
}

// DamageDistributionTool defines the MCP tool schema for damage distributions.
func DamageDistributionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "damage_distribution",
		Description: "Computes the exact damage distribution over the luck range",
	}
}

// UnitMatchupTool defines the MCP tool schema for matchup lookups.
func UnitMatchupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "unit_matchup",
		Description: "Looks up the base damage table for a unit pair",
	}
}

// CombatRulesTool defines the MCP tool schema for ruleset metadata.
func CombatRulesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_rules",
		Description: "Describes the damage ruleset semantics",
	}
}

// BattleResolveHandler executes an engagement resolution.
func BattleResolveHandler(svc *service.Service) mcp.ToolHandlerFor[BattleResolveInput, BattleResolveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BattleResolveInput) (*mcp.CallToolResult, BattleResolveResult, error) {
		sim, err := svc.SimulateEngagement(ctx, service.SimulationInput{
			Attacker: input.Attacker.toDomain(),
			Defender: input.Defender.toDomain(),
			Seed:     input.Rng.seed(),
			Mode:     input.Rng.mode(),
		})
		if err != nil {
			return nil, BattleResolveResult{}, fmt.Errorf("resolve engagement: %w", err)
		}

		result := BattleResolveResult{
			First:             strikeResult(sim.Outcome.First),
			AttackerHPAfter:   sim.Outcome.AttackerHPAfter,
			DefenderHPAfter:   sim.Outcome.DefenderHPAfter,
			AttackerDestroyed: sim.Outcome.AttackerDestroyed,
			DefenderDestroyed: sim.Outcome.DefenderDestroyed,
			Rng: RngResult{
				Seed:       sim.Seed,
				SeedSource: string(sim.SeedSource),
				RollMode:   string(sim.RollMode),
			},
		}
		if sim.Outcome.Counter != nil {
			counter := strikeResult(*sim.Outcome.Counter)
			result.Counter = &counter
		}
		return nil, result, nil
	}
}

// DamageExplainHandler executes a strike explanation.
func DamageExplainHandler(svc *service.Service) mcp.ToolHandlerFor[DamageExplainInput, DamageExplainResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DamageExplainInput) (*mcp.CallToolResult, DamageExplainResult, error) {
		explanation, err := svc.ExplainStrike(ctx, service.SimulationInput{
			Attacker: input.Attacker.toDomain(),
			Defender: input.Defender.toDomain(),
			Seed:     input.Rng.seed(),
			Mode:     input.Rng.mode(),
		})
		if err != nil {
			return nil, DamageExplainResult{}, fmt.Errorf("explain strike: %w", err)
		}

		report := explanation.Explanation.Report
		return nil, DamageExplainResult{
			Damage:       report.Damage,
			Luck:         report.Luck,
			AttackValue:  report.AttackValue,
			Defense:      report.Defense,
			CapApplied:   report.CapApplied,
			RulesVersion: svc.Rules().Version,
			Steps:        explanation.Explanation.Steps,
			Rng: RngResult{
				Seed:       explanation.Seed,
				SeedSource: string(explanation.SeedSource),
				RollMode:   string(explanation.RollMode),
			},
		}, nil
	}
}

// DamageDistributionHandler executes a damage distribution computation.
func DamageDistributionHandler(svc *service.Service) mcp.ToolHandlerFor[DamageDistributionInput, DamageDistributionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DamageDistributionInput) (*mcp.CallToolResult, DamageDistributionResult, error) {
		dist, err := svc.DamageDistribution(ctx, input.Attacker.toDomain(), input.Defender.toDomain())
		if err != nil {
			return nil, DamageDistributionResult{}, fmt.Errorf("compute distribution: %w", err)
		}

		outcomes := make([]DamageOutcome, 0, len(dist.Outcomes))
		for _, o := range dist.Outcomes {
			outcomes = append(outcomes, DamageOutcome{Damage: o.Damage, Probability: o.Probability})
		}
		return nil, DamageDistributionResult{
			Outcomes: outcomes,
			Min:      dist.Min,
			Max:      dist.Max,
			Mean:     dist.Mean,
		}, nil
	}
}

// UnitMatchupHandler executes a matchup table lookup.
func UnitMatchupHandler() mcp.ToolHandlerFor[UnitMatchupInput, UnitMatchupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UnitMatchupInput) (*mcp.CallToolResult, UnitMatchupResult, error) {
		attacker := units.Class(strings.TrimSpace(input.Attacker))
		defender := units.Class(strings.TrimSpace(input.Defender))
		if _, err := units.Get(attacker); err != nil {
			return nil, UnitMatchupResult{}, fmt.Errorf("attacker: %w", err)
		}
		if _, err := units.Get(defender); err != nil {
			return nil, UnitMatchupResult{}, fmt.Errorf("defender: %w", err)
		}

		base, ok := units.BaseDamage(attacker, defender)
		return nil, UnitMatchupResult{
			CanAttack:       ok,
			BaseDamage:      base,
			CounterPossible: units.CanAttack(defender, attacker),
		}, nil
	}
}

// CombatRulesHandler reports the engine's active ruleset.
func CombatRulesHandler(svc *service.Service) mcp.ToolHandlerFor[CombatRulesInput, CombatRulesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CombatRulesInput) (*mcp.CallToolResult, CombatRulesResult, error) {
		rules := svc.Rules()
		return nil, CombatRulesResult{
			Version:          rules.Version,
			LuckModel:        rules.LuckModel,
			AttackCap:        rules.AttackCap,
			AttackCapMode:    rules.AttackCapMode,
			PowerStrikeBonus: rules.PowerStrikeBonus,
			ComtowerStep:     rules.ComtowerStep,
			TerrainStarStep:  rules.TerrainStarStep,
			DefaultGoodLuck:  rules.DefaultGoodLuck,
			DefaultBadLuck:   rules.DefaultBadLuck,
		}, nil
	}
}
