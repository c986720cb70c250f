package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ashveldt/wartide/internal/battle"
	"github.com/ashveldt/wartide/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// verifyPageSize is how many journal records replay verification loads per
// storage round trip.
const verifyPageSize = 100

// ReplayFailure is an engagement that could not be replayed at all, for
// example because its inputs no longer validate against the catalogs.
type ReplayFailure struct {
	EngagementID string
	Reason       string
}

// VerificationReport summarizes replaying a battle's entire journal.
type VerificationReport struct {
	BattleID string
	// Checked counts journal records walked, including failed ones.
	Checked int
	Drifts  []battle.Drift
	Failed  []ReplayFailure
}

// Clean reports whether every record replayed bit-exact.
func (r VerificationReport) Clean() bool {
	return len(r.Drifts) == 0 && len(r.Failed) == 0
}

// VerifyBattle replays every journaled engagement of a battle from its
// recorded seed and reports drift. The walk pages through the journal until
// a short page.
func (s *Service) VerifyBattle(ctx context.Context, battleID string) (VerificationReport, error) {
	ctx, span := s.tracer.Start(ctx, "battle.verify_replay")
	defer span.End()
	span.SetAttributes(attribute.String("battle.id", battleID))

	if s.store == nil {
		return VerificationReport{}, fmt.Errorf("battle store is not configured")
	}
	if _, err := s.store.GetBattle(ctx, battleID); err != nil {
		span.RecordError(err)
		return VerificationReport{}, err
	}

	report := VerificationReport{BattleID: battleID}
	var afterSeq int64
	for {
		page, err := s.store.ListEngagements(ctx, battleID, afterSeq, verifyPageSize)
		if err != nil {
			span.RecordError(err)
			return VerificationReport{}, fmt.Errorf("list engagements after seq %d: %w", afterSeq, err)
		}
		if len(page) == 0 {
			break
		}

		for _, stored := range page {
			report.Checked++
			drifts, err := battle.VerifyEngagement(stored.Engagement)
			if err != nil {
				report.Failed = append(report.Failed, ReplayFailure{
					EngagementID: stored.Engagement.ID,
					Reason:       err.Error(),
				})
				continue
			}
			report.Drifts = append(report.Drifts, drifts...)
		}

		afterSeq = page[len(page)-1].Seq
		if len(page) < verifyPageSize {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("replay.checked", report.Checked),
		attribute.Int("replay.drifts", len(report.Drifts)),
		attribute.Int("replay.failed", len(report.Failed)),
	)

	kind := telemetry.KindReplayVerified
	if !report.Clean() {
		kind = telemetry.KindReplayDrift
	}
	s.emit(ctx, battleID, kind, map[string]string{
		"checked": strconv.Itoa(report.Checked),
		"drifts":  strconv.Itoa(len(report.Drifts)),
		"failed":  strconv.Itoa(len(report.Failed)),
	})

	return report, nil
}
