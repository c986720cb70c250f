package service

import (
	"context"

	"github.com/ashveldt/wartide/internal/battle"
	"github.com/ashveldt/wartide/internal/combat"
	"github.com/ashveldt/wartide/internal/random"
	"go.opentelemetry.io/otel/attribute"
)

// StrikeExplanation narrates one opening strike with its seed provenance.
type StrikeExplanation struct {
	Seed        int64
	SeedSource  random.SeedSource
	RollMode    random.RollMode
	Explanation combat.Explanation
}

// ExplainStrike resolves the opening strike of a matchup and narrates each
// arithmetic term. Seed arbitration follows simulation rules: caller seeds
// are honored in any roll mode.
func (s *Service) ExplainStrike(ctx context.Context, in SimulationInput) (StrikeExplanation, error) {
	_, span := s.tracer.Start(ctx, "battle.explain_strike")
	defer span.End()

	seed, seedSource, rollMode, err := random.ResolveSeed(
		&random.Request{Seed: in.Seed, Mode: in.Mode},
		s.newSeed,
		func(random.RollMode) bool { return true },
	)
	if err != nil {
		span.RecordError(err)
		return StrikeExplanation{}, err
	}

	attack, defense, err := battle.StrikeSnapshots(in.Attacker, in.Defender)
	if err != nil {
		span.RecordError(err)
		return StrikeExplanation{}, err
	}

	explanation, err := combat.Explain(combat.SeededSource(seed), attack, defense)
	if err != nil {
		span.RecordError(err)
		return StrikeExplanation{}, err
	}

	span.SetAttributes(attribute.Int("engagement.first_damage", explanation.Report.Damage))
	return StrikeExplanation{
		Seed:        seed,
		SeedSource:  seedSource,
		RollMode:    rollMode,
		Explanation: explanation,
	}, nil
}

// DamageDistribution computes the exact damage distribution for the opening
// strike of a matchup. No entropy is consumed.
func (s *Service) DamageDistribution(ctx context.Context, attacker, defender battle.Combatant) (combat.Distribution, error) {
	_, span := s.tracer.Start(ctx, "battle.damage_distribution")
	defer span.End()

	attack, defense, err := battle.StrikeSnapshots(attacker, defender)
	if err != nil {
		span.RecordError(err)
		return combat.Distribution{}, err
	}

	distribution, err := combat.DamageDistribution(attack, defense)
	if err != nil {
		span.RecordError(err)
		return combat.Distribution{}, err
	}
	return distribution, nil
}

// Rules reports the engine's active rule set.
func (s *Service) Rules() combat.Rules {
	return combat.CurrentRules()
}
