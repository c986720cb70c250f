package service

import (
	"context"
	"fmt"

	"github.com/ashveldt/wartide/internal/battle"
	"github.com/ashveldt/wartide/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// CreateBattle opens a new battle journal.
func (s *Service) CreateBattle(ctx context.Context, name string) (battle.Battle, error) {
	ctx, span := s.tracer.Start(ctx, "battle.create")
	defer span.End()

	if s.store == nil {
		return battle.Battle{}, fmt.Errorf("battle store is not configured")
	}

	battleID, err := s.newID()
	if err != nil {
		span.RecordError(err)
		return battle.Battle{}, fmt.Errorf("generate battle id: %w", err)
	}

	b, err := battle.NewBattle(battleID, name, s.now())
	if err != nil {
		span.RecordError(err)
		return battle.Battle{}, err
	}

	if err := s.store.CreateBattle(ctx, b); err != nil {
		span.RecordError(err)
		return battle.Battle{}, fmt.Errorf("create battle: %w", err)
	}

	span.SetAttributes(attribute.String("battle.id", b.ID))
	s.emit(ctx, b.ID, telemetry.KindBattleCreated, map[string]string{"name": b.Name})
	return b, nil
}

// GetBattle loads one battle by id.
func (s *Service) GetBattle(ctx context.Context, battleID string) (battle.Battle, error) {
	ctx, span := s.tracer.Start(ctx, "battle.get")
	defer span.End()

	if s.store == nil {
		return battle.Battle{}, fmt.Errorf("battle store is not configured")
	}

	b, err := s.store.GetBattle(ctx, battleID)
	if err != nil {
		span.RecordError(err)
		return battle.Battle{}, err
	}
	return b, nil
}

// ListBattles returns the most recently active battles.
func (s *Service) ListBattles(ctx context.Context, limit int) ([]battle.Battle, error) {
	ctx, span := s.tracer.Start(ctx, "battle.list")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("battle store is not configured")
	}

	battles, err := s.store.ListBattles(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("battle.count", len(battles)))
	return battles, nil
}
