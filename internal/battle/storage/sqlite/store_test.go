package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ashveldt/wartide/internal/battle"
	battlestorage "github.com/ashveldt/wartide/internal/battle/storage"
	"github.com/ashveldt/wartide/internal/random"
	"github.com/ashveldt/wartide/internal/terrain"
	"github.com/ashveldt/wartide/internal/units"
	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "battles.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func mustCreateBattle(t *testing.T, store *Store, id, name string, now time.Time) battle.Battle {
	t.Helper()

	b, err := battle.NewBattle(id, name, now)
	if err != nil {
		t.Fatalf("new battle: %v", err)
	}
	if err := store.CreateBattle(context.Background(), b); err != nil {
		t.Fatalf("create battle: %v", err)
	}
	return b
}

// resolveEngagement builds a journaled engagement by actually running the
// resolution, so stored records carry real outcomes that replay cleanly.
func resolveEngagement(t *testing.T, battleID, id string, seed int64, attacker, defender battle.Combatant, at time.Time) battle.Engagement {
	t.Helper()

	outcome, err := battle.Engage(seed, attacker, defender)
	if err != nil {
		t.Fatalf("engage: %v", err)
	}
	return battle.Engagement{
		ID:         id,
		BattleID:   battleID,
		Seed:       seed,
		SeedSource: random.SeedSourceServer,
		RollMode:   random.RollModeLive,
		Attacker:   attacker,
		Defender:   defender,
		Outcome:    outcome,
		CreatedAt:  at,
	}
}

func infantryOnPlains(hp float64) battle.Combatant {
	return battle.Combatant{UnitClass: units.ClassInfantry, HP: hp, Terrain: terrain.KindPlains}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Open("   "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battles.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() {
		_ = sqlDB.Close()
	}()

	assertTableExists(t, sqlDB, "battles")
	assertTableExists(t, sqlDB, "engagements")
	assertTableExists(t, sqlDB, "telemetry_events")
}

func TestBattleRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	created := mustCreateBattle(t, store, "battle-1", "Lighthouse Assault", now)

	loaded, err := store.GetBattle(ctx, "battle-1")
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if loaded.ID != created.ID || loaded.Name != created.Name {
		t.Fatalf("loaded battle = %+v, want %+v", loaded, created)
	}
	if !loaded.CreatedAt.Equal(now) || !loaded.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %s/%s, want %s", loaded.CreatedAt, loaded.UpdatedAt, now)
	}
}

func TestGetBattleMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetBattle(context.Background(), "nope")
	if !errors.Is(err, battlestorage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListBattlesOrdersByRecentActivity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	mustCreateBattle(t, store, "battle-old", "Old Front", base)
	mustCreateBattle(t, store, "battle-new", "New Front", base.Add(time.Minute))

	battles, err := store.ListBattles(ctx, 10)
	if err != nil {
		t.Fatalf("list battles: %v", err)
	}
	if len(battles) != 2 {
		t.Fatalf("len = %d, want 2", len(battles))
	}
	if battles[0].ID != "battle-new" || battles[1].ID != "battle-old" {
		t.Fatalf("order = [%s %s], want [battle-new battle-old]", battles[0].ID, battles[1].ID)
	}

	// Journaling against the older battle bumps it back to the top.
	e := resolveEngagement(t, "battle-old", "eng-bump", 7, infantryOnPlains(10), infantryOnPlains(10), base.Add(time.Hour))
	if _, err := store.AppendEngagement(ctx, e); err != nil {
		t.Fatalf("append engagement: %v", err)
	}

	battles, err = store.ListBattles(ctx, 10)
	if err != nil {
		t.Fatalf("list battles after append: %v", err)
	}
	if battles[0].ID != "battle-old" {
		t.Fatalf("first battle = %s, want battle-old", battles[0].ID)
	}
	if !battles[0].UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("updated_at = %s, want %s", battles[0].UpdatedAt, base.Add(time.Hour))
	}
}

func TestAppendEngagementRequiresBattle(t *testing.T) {
	store := openTestStore(t)

	e := resolveEngagement(t, "missing-battle", "eng-1", 11, infantryOnPlains(10), infantryOnPlains(10), time.Unix(1700000000, 0).UTC())
	_, err := store.AppendEngagement(context.Background(), e)
	if !errors.Is(err, battlestorage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEngagementJournalPagesInAppendOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	mustCreateBattle(t, store, "battle-1", "River Crossing", base)

	var seqs []int64
	for i := 0; i < 3; i++ {
		e := resolveEngagement(t, "battle-1",
			fmt.Sprintf("eng-%d", i+1), int64(100+i),
			infantryOnPlains(10),
			battle.Combatant{UnitClass: units.ClassMech, HP: 8, Terrain: terrain.KindWoods},
			base.Add(time.Duration(i)*time.Minute))
		stored, err := store.AppendEngagement(ctx, e)
		if err != nil {
			t.Fatalf("append engagement %d: %v", i, err)
		}
		if stored.Seq <= 0 {
			t.Fatalf("seq = %d, want positive", stored.Seq)
		}
		seqs = append(seqs, stored.Seq)
	}
	if !(seqs[0] < seqs[1] && seqs[1] < seqs[2]) {
		t.Fatalf("seqs not strictly increasing: %v", seqs)
	}

	page, err := store.ListEngagements(ctx, "battle-1", 0, 2)
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(page) != 2 || page[0].Engagement.ID != "eng-1" || page[1].Engagement.ID != "eng-2" {
		t.Fatalf("first page = %+v, want eng-1, eng-2", page)
	}

	page, err = store.ListEngagements(ctx, "battle-1", page[1].Seq, 2)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(page) != 1 || page[0].Engagement.ID != "eng-3" {
		t.Fatalf("second page = %+v, want eng-3", page)
	}

	count, err := store.CountEngagements(ctx, "battle-1")
	if err != nil {
		t.Fatalf("count engagements: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestStoredEngagementReplaysWithoutDrift(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	mustCreateBattle(t, store, "battle-1", "Canal Duel", now)

	attacker := battle.Combatant{
		UnitClass:  units.ClassTank,
		HP:         9.5,
		OfficerID:  "max",
		PowerState: "power",
		Terrain:    terrain.KindCity,
		Comtowers:  1,
	}
	defender := battle.Combatant{
		UnitClass: units.ClassTank,
		HP:        10,
		OfficerID: "kanbei",
		Terrain:   terrain.KindMountain,
	}
	appended := resolveEngagement(t, "battle-1", "eng-replay", 424242, attacker, defender, now)
	if _, err := store.AppendEngagement(ctx, appended); err != nil {
		t.Fatalf("append engagement: %v", err)
	}

	page, err := store.ListEngagements(ctx, "battle-1", 0, 10)
	if err != nil {
		t.Fatalf("list engagements: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("len = %d, want 1", len(page))
	}
	loaded := page[0].Engagement

	if loaded.Seed != appended.Seed || loaded.SeedSource != appended.SeedSource || loaded.RollMode != appended.RollMode {
		t.Fatalf("provenance = %d/%s/%s, want %d/%s/%s",
			loaded.Seed, loaded.SeedSource, loaded.RollMode,
			appended.Seed, appended.SeedSource, appended.RollMode)
	}
	if !reflect.DeepEqual(loaded.Attacker, appended.Attacker) {
		t.Fatalf("attacker = %+v, want %+v", loaded.Attacker, appended.Attacker)
	}
	if !reflect.DeepEqual(loaded.Defender, appended.Defender) {
		t.Fatalf("defender = %+v, want %+v", loaded.Defender, appended.Defender)
	}
	if !reflect.DeepEqual(loaded.Outcome, appended.Outcome) {
		t.Fatalf("outcome = %+v, want %+v", loaded.Outcome, appended.Outcome)
	}
	if !loaded.CreatedAt.Equal(appended.CreatedAt) {
		t.Fatalf("created_at = %s, want %s", loaded.CreatedAt, appended.CreatedAt)
	}

	// The loaded record must replay bit-exact from its own seed.
	drifts, err := battle.VerifyEngagement(loaded)
	if err != nil {
		t.Fatalf("verify engagement: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("drifts = %+v, want none", drifts)
	}
}

func TestEngagementJournalIsolatedPerBattle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	mustCreateBattle(t, store, "battle-a", "Front A", now)
	mustCreateBattle(t, store, "battle-b", "Front B", now)

	ea := resolveEngagement(t, "battle-a", "eng-a", 1, infantryOnPlains(10), infantryOnPlains(10), now)
	eb := resolveEngagement(t, "battle-b", "eng-b", 2, infantryOnPlains(10), infantryOnPlains(10), now)
	if _, err := store.AppendEngagement(ctx, ea); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if _, err := store.AppendEngagement(ctx, eb); err != nil {
		t.Fatalf("append b: %v", err)
	}

	page, err := store.ListEngagements(ctx, "battle-a", 0, 10)
	if err != nil {
		t.Fatalf("list battle-a: %v", err)
	}
	if len(page) != 1 || page[0].Engagement.ID != "eng-a" {
		t.Fatalf("battle-a journal = %+v, want only eng-a", page)
	}

	count, err := store.CountEngagements(ctx, "battle-b")
	if err != nil {
		t.Fatalf("count battle-b: %v", err)
	}
	if count != 1 {
		t.Fatalf("battle-b count = %d, want 1", count)
	}
}

func TestTelemetryRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	mustCreateBattle(t, store, "battle-1", "Signal Hill", base)

	first := battlestorage.TelemetryEvent{
		ID:        "evt-1",
		BattleID:  "battle-1",
		Kind:      "engagement_resolved",
		Detail:    map[string]string{"seed": "99", "damage": "3"},
		CreatedAt: base,
	}
	second := battlestorage.TelemetryEvent{
		ID:        "evt-2",
		BattleID:  "battle-1",
		Kind:      "replay_verified",
		CreatedAt: base.Add(time.Minute),
	}
	if err := store.AppendTelemetry(ctx, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := store.AppendTelemetry(ctx, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	events, err := store.ListTelemetry(ctx, "battle-1", 10)
	if err != nil {
		t.Fatalf("list telemetry: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].ID != "evt-2" || events[1].ID != "evt-1" {
		t.Fatalf("order = [%s %s], want newest first", events[0].ID, events[1].ID)
	}
	if !reflect.DeepEqual(events[1].Detail, first.Detail) {
		t.Fatalf("detail = %v, want %v", events[1].Detail, first.Detail)
	}
	if events[1].Kind != "engagement_resolved" {
		t.Fatalf("kind = %q, want engagement_resolved", events[1].Kind)
	}
}

func TestAppendTelemetryValidatesEvent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.AppendTelemetry(ctx, battlestorage.TelemetryEvent{Kind: "boot"})
	if err == nil {
		t.Fatal("expected error for missing id")
	}
	err = store.AppendTelemetry(ctx, battlestorage.TelemetryEvent{ID: "evt-1"})
	if err == nil {
		t.Fatal("expected error for missing kind")
	}
}

func assertTableExists(t *testing.T, sqlDB *sql.DB, tableName string) {
	t.Helper()

	row := sqlDB.QueryRowContext(context.Background(), `
SELECT COUNT(*)
FROM sqlite_master
WHERE type = 'table' AND name = ?;
`, tableName)
	var count int
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan sqlite_master for %q: %v", tableName, err)
	}
	if count != 1 {
		t.Fatalf("table %q count = %d, want 1", tableName, count)
	}
}
