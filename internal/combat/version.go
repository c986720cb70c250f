package combat

// RulesVersion identifies the damage-rules revision this engine implements.
// Bump on any change to the resolution formulas or their constants, since
// stored engagement journals are replay-verified against the running engine.
const RulesVersion = "wartide-rules/1"

// Rules describes the resolution constants and model choices in effect.
type Rules struct {
	Version          string  `json:"version"`
	LuckModel        string  `json:"luck_model"`
	AttackCap        float64 `json:"attack_cap"`
	AttackCapMode    string  `json:"attack_cap_mode"`
	PowerStrikeBonus float64 `json:"power_strike_bonus"`
	ComtowerStep     float64 `json:"comtower_step"`
	TerrainStarStep  float64 `json:"terrain_star_step"`
	DefaultGoodLuck  float64 `json:"default_good_luck"`
	DefaultBadLuck   float64 `json:"default_bad_luck"`
}

// CurrentRules reports the engine's active rule set.
func CurrentRules() Rules {
	return Rules{
		Version:          RulesVersion,
		LuckModel:        "single-roll",
		AttackCap:        attackFractionCap,
		AttackCapMode:    "upper-bound",
		PowerStrikeBonus: powerStrikeBonus,
		ComtowerStep:     comtowerStep,
		TerrainStarStep:  terrainStarStep,
		DefaultGoodLuck:  DefaultGoodLuck,
		DefaultBadLuck:   DefaultBadLuck,
	}
}
