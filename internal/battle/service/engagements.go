package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ashveldt/wartide/internal/battle"
	battlestorage "github.com/ashveldt/wartide/internal/battle/storage"
	"github.com/ashveldt/wartide/internal/random"
	"github.com/ashveldt/wartide/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// EngagementInput describes one engagement to resolve against a battle.
type EngagementInput struct {
	BattleID string
	Attacker battle.Combatant
	Defender battle.Combatant
	// Seed is honored only in replay mode; live resolutions always draw a
	// server seed.
	Seed *uint64
	Mode random.RollMode
}

// ResolveEngagement resolves an engagement and appends it to the battle's
// journal.
func (s *Service) ResolveEngagement(ctx context.Context, in EngagementInput) (battlestorage.StoredEngagement, error) {
	ctx, span := s.tracer.Start(ctx, "battle.resolve_engagement")
	defer span.End()
	span.SetAttributes(attribute.String("battle.id", in.BattleID))

	if s.store == nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("battle store is not configured")
	}

	// Existence first: a missing battle must not consume a seed.
	if _, err := s.store.GetBattle(ctx, in.BattleID); err != nil {
		span.RecordError(err)
		return battlestorage.StoredEngagement{}, err
	}

	seed, seedSource, rollMode, err := random.ResolveSeed(
		&random.Request{Seed: in.Seed, Mode: in.Mode},
		s.newSeed,
		func(mode random.RollMode) bool { return mode == random.RollModeReplay },
	)
	if err != nil {
		span.RecordError(err)
		return battlestorage.StoredEngagement{}, err
	}

	outcome, err := battle.Engage(seed, in.Attacker, in.Defender)
	if err != nil {
		span.RecordError(err)
		return battlestorage.StoredEngagement{}, err
	}

	engagementID, err := s.newID()
	if err != nil {
		span.RecordError(err)
		return battlestorage.StoredEngagement{}, fmt.Errorf("generate engagement id: %w", err)
	}

	engagement := battle.Engagement{
		ID:         engagementID,
		BattleID:   in.BattleID,
		Seed:       seed,
		SeedSource: seedSource,
		RollMode:   rollMode,
		Attacker:   in.Attacker,
		Defender:   in.Defender,
		Outcome:    outcome,
		CreatedAt:  s.now(),
	}

	stored, err := s.store.AppendEngagement(ctx, engagement)
	if err != nil {
		span.RecordError(err)
		return battlestorage.StoredEngagement{}, fmt.Errorf("append engagement: %w", err)
	}

	span.SetAttributes(
		attribute.String("engagement.id", stored.Engagement.ID),
		attribute.Int64("engagement.seq", stored.Seq),
		attribute.Int("engagement.first_damage", stored.Outcome.First.Report.Damage),
	)
	s.emit(ctx, in.BattleID, telemetry.KindEngagementResolved, map[string]string{
		"engagement_id": stored.Engagement.ID,
		"seed":          strconv.FormatInt(seed, 10),
		"roll_mode":     string(rollMode),
		"first_damage":  strconv.Itoa(stored.Outcome.First.Report.Damage),
	})
	s.notifyWatchers(stored)

	return stored, nil
}

// Simulation is a resolved engagement that was never journaled.
type Simulation struct {
	Seed       int64
	SeedSource random.SeedSource
	RollMode   random.RollMode
	Outcome    battle.Outcome
}

// SimulationInput describes a what-if engagement.
type SimulationInput struct {
	Attacker battle.Combatant
	Defender battle.Combatant
	// Seed is honored in any roll mode; simulations have no journal to
	// protect.
	Seed *uint64
	Mode random.RollMode
}

// SimulateEngagement resolves an engagement without touching any battle.
func (s *Service) SimulateEngagement(ctx context.Context, in SimulationInput) (Simulation, error) {
	_, span := s.tracer.Start(ctx, "battle.simulate_engagement")
	defer span.End()

	seed, seedSource, rollMode, err := random.ResolveSeed(
		&random.Request{Seed: in.Seed, Mode: in.Mode},
		s.newSeed,
		func(random.RollMode) bool { return true },
	)
	if err != nil {
		span.RecordError(err)
		return Simulation{}, err
	}

	outcome, err := battle.Engage(seed, in.Attacker, in.Defender)
	if err != nil {
		span.RecordError(err)
		return Simulation{}, err
	}

	span.SetAttributes(attribute.Int("engagement.first_damage", outcome.First.Report.Damage))
	return Simulation{
		Seed:       seed,
		SeedSource: seedSource,
		RollMode:   rollMode,
		Outcome:    outcome,
	}, nil
}

// ListEngagements pages a battle's journal in append order.
func (s *Service) ListEngagements(ctx context.Context, battleID string, afterSeq int64, limit int) ([]battlestorage.StoredEngagement, error) {
	ctx, span := s.tracer.Start(ctx, "battle.list_engagements")
	defer span.End()
	span.SetAttributes(attribute.String("battle.id", battleID))

	if s.store == nil {
		return nil, fmt.Errorf("battle store is not configured")
	}

	// Surface a 404 rather than an empty page for unknown battles.
	if _, err := s.store.GetBattle(ctx, battleID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	engagements, err := s.store.ListEngagements(ctx, battleID, afterSeq, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return engagements, nil
}
