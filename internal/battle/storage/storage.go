// Package storage defines the persistence contract for the battle journal.
package storage

import (
	"context"
	"time"

	"github.com/ashveldt/wartide/internal/battle"
	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing. Callers use it to
// separate "no such battle" from transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// StoredEngagement is an engagement with its journal sequence. Sequences are
// assigned at append time and strictly increase within a battle, which is
// what replay verification pages over.
type StoredEngagement struct {
	Seq int64
	battle.Engagement
}

// TelemetryEvent is one operational event tied to a battle (or to none).
type TelemetryEvent struct {
	ID        string
	BattleID  string
	Kind      string
	Detail    map[string]string
	CreatedAt time.Time
}

// Store is the battle journal persistence contract.
type Store interface {
	Close() error

	CreateBattle(ctx context.Context, b battle.Battle) error
	GetBattle(ctx context.Context, id string) (battle.Battle, error)
	ListBattles(ctx context.Context, limit int) ([]battle.Battle, error)

	// AppendEngagement journals an engagement and touches the battle's
	// updated_at. The battle must exist.
	AppendEngagement(ctx context.Context, e battle.Engagement) (StoredEngagement, error)
	// ListEngagements returns engagements with seq > afterSeq in append
	// order, at most limit records. Paging runs until a short page.
	ListEngagements(ctx context.Context, battleID string, afterSeq int64, limit int) ([]StoredEngagement, error)
	CountEngagements(ctx context.Context, battleID string) (int64, error)

	AppendTelemetry(ctx context.Context, event TelemetryEvent) error
	ListTelemetry(ctx context.Context, battleID string, limit int) ([]TelemetryEvent, error)
}
