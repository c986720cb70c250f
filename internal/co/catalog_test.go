package co

import (
	"sort"
	"testing"

	"github.com/ashveldt/wartide/internal/combat"
	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
)

func TestPowerState(t *testing.T) {
	for _, state := range []PowerState{StateDay, StatePower, StateSuper} {
		if !state.Valid() {
			t.Fatalf("state %q reported invalid", state)
		}
	}
	if PowerState("frenzy").Valid() {
		t.Fatal("unknown state reported valid")
	}
	if StateDay.Active() {
		t.Fatal("day must not count as an active power")
	}
	if !StatePower.Active() || !StateSuper.Active() {
		t.Fatal("power and super must count as active powers")
	}
}

func TestGetUnknownOfficer(t *testing.T) {
	_, err := Get("sturm")
	if err == nil {
		t.Fatal("expected error for unknown officer")
	}
	if got := apperrors.CodeOf(err); got != apperrors.CodeOfficerUnknown {
		t.Fatalf("Get() code = %q, want %q", got, apperrors.CodeOfficerUnknown)
	}
}

func TestAllIsSortedAndClosed(t *testing.T) {
	all := All()
	if len(all) != 8 {
		t.Fatalf("roster size = %d, want 8", len(all))
	}
	if !sort.SliceIsSorted(all, func(i, j int) bool { return all[i].ID < all[j].ID }) {
		t.Fatal("All() must be ordered by id")
	}
	if all[0].ID != "andy" {
		t.Fatalf("first officer = %q, want andy", all[0].ID)
	}
}

func TestResolveNeutral(t *testing.T) {
	m, err := Neutral(2)
	if err != nil {
		t.Fatalf("Neutral() error = %v", err)
	}
	if m.GoodLuck != combat.DefaultGoodLuck || m.BadLuck != combat.DefaultBadLuck {
		t.Fatalf("neutral luck = %v/%v, want engine defaults", m.GoodLuck, m.BadLuck)
	}
	if m.AttackComtowers != 2 || m.DefenseComtowers != 0 {
		t.Fatalf("neutral towers = %d/%d, want 2 attack, 0 defense", m.AttackComtowers, m.DefenseComtowers)
	}
	if m.TerrainScale != 1 || m.PowerActive {
		t.Fatalf("neutral scale/power = %d/%v, want 1/false", m.TerrainScale, m.PowerActive)
	}

	if _, err := Neutral(-1); apperrors.CodeOf(err) != apperrors.CodeCombatNegativeComtowers {
		t.Fatalf("Neutral(-1) error = %v, want negative comtower code", err)
	}
}

func TestResolveTowerDefense(t *testing.T) {
	javier, err := Resolve("javier", StateDay, 3)
	if err != nil {
		t.Fatalf("Resolve(javier) error = %v", err)
	}
	if javier.AttackComtowers != 3 || javier.DefenseComtowers != 3 {
		t.Fatalf("javier towers = %d/%d, want 3/3", javier.AttackComtowers, javier.DefenseComtowers)
	}

	max, err := Resolve("max", StateDay, 3)
	if err != nil {
		t.Fatalf("Resolve(max) error = %v", err)
	}
	if max.AttackComtowers != 3 || max.DefenseComtowers != 0 {
		t.Fatalf("max towers = %d/%d, want 3 attack only", max.AttackComtowers, max.DefenseComtowers)
	}
}

func TestResolveTerrainBoostOnlyAtSuper(t *testing.T) {
	tests := []struct {
		officer string
		state   PowerState
		want    int
	}{
		{"lash", StateDay, 1},
		{"lash", StatePower, 1},
		{"lash", StateSuper, 2},
		{"kanbei", StateSuper, 1},
	}
	for _, tt := range tests {
		m, err := Resolve(tt.officer, tt.state, 0)
		if err != nil {
			t.Fatalf("Resolve(%s, %s) error = %v", tt.officer, tt.state, err)
		}
		if m.TerrainScale != tt.want {
			t.Fatalf("Resolve(%s, %s) terrain scale = %d, want %d",
				tt.officer, tt.state, m.TerrainScale, tt.want)
		}
	}
}

func TestResolvePowerActivation(t *testing.T) {
	for _, tt := range []struct {
		state PowerState
		want  bool
	}{
		{StateDay, false},
		{StatePower, true},
		{StateSuper, true},
	} {
		m, err := Resolve("andy", tt.state, 0)
		if err != nil {
			t.Fatalf("Resolve(andy, %s) error = %v", tt.state, err)
		}
		if m.PowerActive != tt.want {
			t.Fatalf("Resolve(andy, %s) power active = %v, want %v", tt.state, m.PowerActive, tt.want)
		}
	}
}

func TestResolveLuckSpecialists(t *testing.T) {
	nell, err := Resolve("nell", StateSuper, 0)
	if err != nil {
		t.Fatalf("Resolve(nell) error = %v", err)
	}
	if nell.GoodLuck != 0.89 || nell.BadLuck != 0 {
		t.Fatalf("nell super luck = %v/%v, want 0.89/0", nell.GoodLuck, nell.BadLuck)
	}

	sonja, err := Resolve("sonja", StateDay, 0)
	if err != nil {
		t.Fatalf("Resolve(sonja) error = %v", err)
	}
	if sonja.BadLuck != 0.05 {
		t.Fatalf("sonja bad luck = %v, want 0.05", sonja.BadLuck)
	}
}

func TestResolveRejectsBadInputs(t *testing.T) {
	if _, err := Resolve("andy", PowerState("frenzy"), 0); apperrors.CodeOf(err) != apperrors.CodeOfficerInvalidState {
		t.Fatalf("invalid state error = %v, want invalid-state code", err)
	}
	if _, err := Resolve("andy", StateDay, -1); apperrors.CodeOf(err) != apperrors.CodeCombatNegativeComtowers {
		t.Fatalf("negative towers error = %v, want negative comtower code", err)
	}
	if _, err := Resolve("sturm", StateDay, 0); apperrors.CodeOf(err) != apperrors.CodeOfficerUnknown {
		t.Fatalf("unknown officer error = %v, want unknown officer code", err)
	}
}

// TestRosterNumbersSatisfyEngineValidation feeds every officer and state
// through the engine's snapshot validation, so a catalog edit that breaks a
// range is caught here rather than at resolution time.
func TestRosterNumbersSatisfyEngineValidation(t *testing.T) {
	for _, officer := range All() {
		for _, state := range []PowerState{StateDay, StatePower, StateSuper} {
			m, err := Resolve(officer.ID, state, 1)
			if err != nil {
				t.Fatalf("Resolve(%s, %s) error = %v", officer.ID, state, err)
			}
			attacker := combat.Attacker{
				HP:         10,
				BaseDamage: 0.55,
				COBonus:    m.AttackBonus,
				COPenalty:  m.AttackPenalty,
				COPower:    m.PowerActive,
				Comtowers:  m.AttackComtowers,
				GoodLuck:   m.GoodLuck,
				BadLuck:    m.BadLuck,
			}
			if err := attacker.Validate(); err != nil {
				t.Fatalf("officer %s state %s fails attacker validation: %v", officer.ID, state, err)
			}
			defender := combat.Defender{
				HP:           10,
				COBonus:      m.DefenseBonus,
				COPenalty:    m.DefensePenalty,
				Comtowers:    m.DefenseComtowers,
				TerrainStars: 3 * m.TerrainScale,
			}
			if err := defender.Validate(); err != nil {
				t.Fatalf("officer %s state %s fails defender validation: %v", officer.ID, state, err)
			}
		}
	}
}
