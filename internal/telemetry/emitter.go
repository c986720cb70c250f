// Package telemetry records operational events alongside the battle journal.
package telemetry

import (
	"context"
	"fmt"
	"time"

	battlestorage "github.com/ashveldt/wartide/internal/battle/storage"
	"github.com/ashveldt/wartide/internal/platform/id"
)

// Well-known event kinds.
const (
	KindBattleCreated      = "battle_created"
	KindEngagementResolved = "engagement_resolved"
	KindReplayVerified     = "replay_verified"
	KindReplayDrift        = "replay_drift"
)

// Sink is the subset of the journal store telemetry writes to.
type Sink interface {
	AppendTelemetry(ctx context.Context, event battlestorage.TelemetryEvent) error
}

// Emitter records operational telemetry events.
type Emitter struct {
	sink  Sink
	clock func() time.Time
	newID func() (string, error)
}

// NewEmitter creates a telemetry emitter writing to sink.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now, newID: id.NewID}
}

// Emit records a telemetry event. It is a no-op when the sink is nil, so
// callers never guard telemetry behind configuration checks.
func (e *Emitter) Emit(ctx context.Context, battleID, kind string, detail map[string]string) error {
	if e == nil || e.sink == nil {
		return nil
	}

	newID := e.newID
	if newID == nil {
		newID = id.NewID
	}
	eventID, err := newID()
	if err != nil {
		return fmt.Errorf("telemetry event id: %w", err)
	}

	now := time.Now
	if e.clock != nil {
		now = e.clock
	}

	return e.sink.AppendTelemetry(ctx, battlestorage.TelemetryEvent{
		ID:        eventID,
		BattleID:  battleID,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: now().UTC(),
	})
}
