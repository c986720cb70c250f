// Package sqlite implements the battle journal on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashveldt/wartide/internal/battle"
	battlestorage "github.com/ashveldt/wartide/internal/battle/storage"
	"github.com/ashveldt/wartide/internal/battle/storage/sqlite/migrations"
	"github.com/ashveldt/wartide/internal/platform/storage/sqlitemigrate"
	"github.com/ashveldt/wartide/internal/random"
	_ "modernc.org/sqlite"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Store provides SQLite-backed persistence for the battle journal.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a battle journal store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateBattle inserts a new battle row.
func (s *Store) CreateBattle(ctx context.Context, b battle.Battle) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("battle id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO battles (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, timeToUnixMillis(b.CreatedAt), timeToUnixMillis(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create battle: %w", err)
	}
	return nil
}

// GetBattle loads one battle by id.
func (s *Store) GetBattle(ctx context.Context, id string) (battle.Battle, error) {
	if s == nil || s.sqlDB == nil {
		return battle.Battle{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, created_at, updated_at FROM battles WHERE id = ?`,
		id,
	)

	var b battle.Battle
	var createdAt, updatedAt int64
	if err := row.Scan(&b.ID, &b.Name, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return battle.Battle{}, battlestorage.ErrNotFound
		}
		return battle.Battle{}, fmt.Errorf("get battle: %w", err)
	}
	b.CreatedAt = unixMillisToTime(createdAt)
	b.UpdatedAt = unixMillisToTime(updatedAt)
	return b, nil
}

// ListBattles returns the most recently active battles.
func (s *Store) ListBattles(ctx context.Context, limit int) ([]battle.Battle, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, created_at, updated_at
		 FROM battles
		 ORDER BY updated_at DESC, id
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	var battles []battle.Battle
	for rows.Next() {
		var b battle.Battle
		var createdAt, updatedAt int64
		if err := rows.Scan(&b.ID, &b.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		b.CreatedAt = unixMillisToTime(createdAt)
		b.UpdatedAt = unixMillisToTime(updatedAt)
		battles = append(battles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read battles: %w", err)
	}
	return battles, nil
}

// AppendEngagement journals an engagement inside one transaction, bumping
// the battle's updated_at so recency ordering tracks activity.
func (s *Store) AppendEngagement(ctx context.Context, e battle.Engagement) (battlestorage.StoredEngagement, error) {
	if s == nil || s.sqlDB == nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("storage is not configured")
	}

	attackerJSON, err := marshalJSON(e.Attacker)
	if err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("encode attacker: %w", err)
	}
	defenderJSON, err := marshalJSON(e.Defender)
	if err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("encode defender: %w", err)
	}
	outcomeJSON, err := marshalJSON(e.Outcome)
	if err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("encode outcome: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var battleID string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM battles WHERE id = ?`, e.BattleID).Scan(&battleID); err != nil {
		if err == sql.ErrNoRows {
			return battlestorage.StoredEngagement{}, battlestorage.ErrNotFound
		}
		return battlestorage.StoredEngagement{}, fmt.Errorf("check battle: %w", err)
	}

	counterDamage := sql.NullInt64{}
	if e.Outcome.Counter != nil {
		counterDamage = sql.NullInt64{Int64: int64(e.Outcome.Counter.Report.Damage), Valid: true}
	}

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO engagements (
		    id, battle_id, seed, seed_source, roll_mode,
		    first_damage, counter_damage,
		    attacker_hp_after, defender_hp_after,
		    attacker_destroyed, defender_destroyed,
		    attacker_json, defender_json, outcome_json, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BattleID, e.Seed, string(e.SeedSource), string(e.RollMode),
		e.Outcome.First.Report.Damage, counterDamage,
		e.Outcome.AttackerHPAfter, e.Outcome.DefenderHPAfter,
		boolToInt(e.Outcome.AttackerDestroyed), boolToInt(e.Outcome.DefenderDestroyed),
		attackerJSON, defenderJSON, outcomeJSON, timeToUnixMillis(e.CreatedAt),
	)
	if err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("append engagement: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("engagement seq: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE battles SET updated_at = ? WHERE id = ?`,
		timeToUnixMillis(e.CreatedAt), e.BattleID,
	); err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("touch battle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("commit append: %w", err)
	}
	return battlestorage.StoredEngagement{Seq: seq, Engagement: e}, nil
}

// ListEngagements pages a battle's journal in append order.
func (s *Store) ListEngagements(ctx context.Context, battleID string, afterSeq int64, limit int) ([]battlestorage.StoredEngagement, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, id, battle_id, seed, seed_source, roll_mode,
		        attacker_json, defender_json, outcome_json, created_at
		 FROM engagements
		 WHERE battle_id = ? AND seq > ?
		 ORDER BY seq
		 LIMIT ?`,
		battleID, afterSeq, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}
	defer rows.Close()

	var engagements []battlestorage.StoredEngagement
	for rows.Next() {
		stored, err := scanEngagement(rows)
		if err != nil {
			return nil, err
		}
		engagements = append(engagements, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read engagements: %w", err)
	}
	return engagements, nil
}

// CountEngagements returns the journal length for one battle.
func (s *Store) CountEngagements(ctx context.Context, battleID string) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM engagements WHERE battle_id = ?`,
		battleID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count engagements: %w", err)
	}
	return count, nil
}

// AppendTelemetry stores one operational event.
func (s *Store) AppendTelemetry(ctx context.Context, event battlestorage.TelemetryEvent) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("telemetry event id is required")
	}
	if strings.TrimSpace(event.Kind) == "" {
		return fmt.Errorf("telemetry event kind is required")
	}

	detail := sql.NullString{}
	if len(event.Detail) > 0 {
		encoded, err := marshalJSON(event.Detail)
		if err != nil {
			return fmt.Errorf("encode telemetry detail: %w", err)
		}
		detail = sql.NullString{String: encoded, Valid: true}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (id, battle_id, kind, detail_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.ID, nullString(event.BattleID), event.Kind, detail, timeToUnixMillis(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append telemetry: %w", err)
	}
	return nil
}

// ListTelemetry returns a battle's most recent events.
func (s *Store) ListTelemetry(ctx context.Context, battleID string, limit int) ([]battlestorage.TelemetryEvent, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, battle_id, kind, detail_json, created_at
		 FROM telemetry_events
		 WHERE battle_id = ?
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		battleID, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list telemetry: %w", err)
	}
	defer rows.Close()

	var events []battlestorage.TelemetryEvent
	for rows.Next() {
		var event battlestorage.TelemetryEvent
		var eventBattleID sql.NullString
		var detail sql.NullString
		var createdAt int64
		if err := rows.Scan(&event.ID, &eventBattleID, &event.Kind, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan telemetry: %w", err)
		}
		event.BattleID = eventBattleID.String
		if detail.Valid && detail.String != "" {
			if err := json.Unmarshal([]byte(detail.String), &event.Detail); err != nil {
				return nil, fmt.Errorf("decode telemetry detail: %w", err)
			}
		}
		event.CreatedAt = unixMillisToTime(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read telemetry: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEngagement rebuilds a stored engagement from its journal row. The
// JSON blobs are the source of truth for replay; scalar columns exist for
// filtering and summaries.
func scanEngagement(row rowScanner) (battlestorage.StoredEngagement, error) {
	var stored battlestorage.StoredEngagement
	var seedSource, rollMode string
	var attackerJSON, defenderJSON, outcomeJSON string
	var createdAt int64

	if err := row.Scan(
		&stored.Seq, &stored.Engagement.ID, &stored.Engagement.BattleID,
		&stored.Engagement.Seed, &seedSource, &rollMode,
		&attackerJSON, &defenderJSON, &outcomeJSON, &createdAt,
	); err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("scan engagement: %w", err)
	}

	stored.Engagement.SeedSource = random.SeedSource(seedSource)
	stored.Engagement.RollMode = random.RollMode(rollMode)
	stored.Engagement.CreatedAt = unixMillisToTime(createdAt)

	if err := json.Unmarshal([]byte(attackerJSON), &stored.Engagement.Attacker); err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("decode attacker: %w", err)
	}
	if err := json.Unmarshal([]byte(defenderJSON), &stored.Engagement.Defender); err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("decode defender: %w", err)
	}
	if err := json.Unmarshal([]byte(outcomeJSON), &stored.Engagement.Outcome); err != nil {
		return battlestorage.StoredEngagement{}, fmt.Errorf("decode outcome: %w", err)
	}
	return stored, nil
}

func marshalJSON(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ battlestorage.Store = (*Store)(nil)
