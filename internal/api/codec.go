package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ashveldt/wartide/internal/battle"
	"github.com/ashveldt/wartide/internal/battle/service"
	battlestorage "github.com/ashveldt/wartide/internal/battle/storage"
	"github.com/ashveldt/wartide/internal/co"
	"github.com/ashveldt/wartide/internal/combat"
	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
	"github.com/ashveldt/wartide/internal/random"
	"github.com/ashveldt/wartide/internal/terrain"
	"github.com/ashveldt/wartide/internal/units"
)

// combatantPayload is one side of a matchup on the wire.
type combatantPayload struct {
	Unit       string  `json:"unit"`
	HP         float64 `json:"hp"`
	Officer    string  `json:"officer,omitempty"`
	PowerState string  `json:"power_state,omitempty"`
	Terrain    string  `json:"terrain"`
	Comtowers  int     `json:"comtowers"`
}

func (p combatantPayload) toDomain() battle.Combatant {
	return battle.Combatant{
		UnitClass:  units.Class(strings.TrimSpace(p.Unit)),
		HP:         p.HP,
		OfficerID:  strings.TrimSpace(p.Officer),
		PowerState: co.PowerState(strings.TrimSpace(p.PowerState)),
		Terrain:    terrain.Kind(strings.TrimSpace(p.Terrain)),
		Comtowers:  p.Comtowers,
	}
}

func combatantFromDomain(c battle.Combatant) combatantPayload {
	return combatantPayload{
		Unit:       string(c.UnitClass),
		HP:         c.HP,
		Officer:    c.OfficerID,
		PowerState: string(c.PowerState),
		Terrain:    string(c.Terrain),
		Comtowers:  c.Comtowers,
	}
}

type reportPayload struct {
	AttackFraction float64 `json:"attack_fraction"`
	CapApplied     bool    `json:"cap_applied"`
	Luck           float64 `json:"luck"`
	AttackValue    float64 `json:"attack_value"`
	Defense        float64 `json:"defense"`
	Raw            float64 `json:"raw"`
	Damage         int     `json:"damage"`
	Clamped        bool    `json:"clamped,omitempty"`
}

func reportFromDomain(r combat.Report) reportPayload {
	return reportPayload{
		AttackFraction: r.AttackFraction,
		CapApplied:     r.CapApplied,
		Luck:           r.Luck,
		AttackValue:    r.AttackValue,
		Defense:        r.Defense,
		Raw:            r.Raw,
		Damage:         r.Damage,
		Clamped:        r.Clamped,
	}
}

type strikePayload struct {
	Attacker   string        `json:"attacker"`
	Defender   string        `json:"defender"`
	BaseDamage float64       `json:"base_damage"`
	Report     reportPayload `json:"report"`
}

func strikeFromDomain(s battle.Strike) strikePayload {
	return strikePayload{
		Attacker:   string(s.Attacker),
		Defender:   string(s.Defender),
		BaseDamage: s.BaseDamage,
		Report:     reportFromDomain(s.Report),
	}
}

type outcomePayload struct {
	First             strikePayload  `json:"first"`
	Counter           *strikePayload `json:"counter,omitempty"`
	AttackerHPAfter   float64        `json:"attacker_hp_after"`
	DefenderHPAfter   float64        `json:"defender_hp_after"`
	AttackerDestroyed bool           `json:"attacker_destroyed"`
	DefenderDestroyed bool           `json:"defender_destroyed"`
	AttackerExplosion string         `json:"attacker_explosion,omitempty"`
	DefenderExplosion string         `json:"defender_explosion,omitempty"`
}

func outcomeFromDomain(o battle.Outcome) outcomePayload {
	p := outcomePayload{
		First:             strikeFromDomain(o.First),
		AttackerHPAfter:   o.AttackerHPAfter,
		DefenderHPAfter:   o.DefenderHPAfter,
		AttackerDestroyed: o.AttackerDestroyed,
		DefenderDestroyed: o.DefenderDestroyed,
		AttackerExplosion: string(o.AttackerExplosion),
		DefenderExplosion: string(o.DefenderExplosion),
	}
	if o.Counter != nil {
		counter := strikeFromDomain(*o.Counter)
		p.Counter = &counter
	}
	return p
}

type battlePayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func battleFromDomain(b battle.Battle) battlePayload {
	return battlePayload{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

type engagementPayload struct {
	ID         string           `json:"id"`
	BattleID   string           `json:"battle_id"`
	Seq        int64            `json:"seq"`
	Seed       int64            `json:"seed"`
	SeedSource string           `json:"seed_source"`
	RollMode   string           `json:"roll_mode"`
	Attacker   combatantPayload `json:"attacker"`
	Defender   combatantPayload `json:"defender"`
	Outcome    outcomePayload   `json:"outcome"`
	CreatedAt  time.Time        `json:"created_at"`
}

func engagementFromDomain(e battlestorage.StoredEngagement) engagementPayload {
	return engagementPayload{
		ID:         e.ID,
		BattleID:   e.BattleID,
		Seq:        e.Seq,
		Seed:       e.Seed,
		SeedSource: string(e.SeedSource),
		RollMode:   string(e.RollMode),
		Attacker:   combatantFromDomain(e.Attacker),
		Defender:   combatantFromDomain(e.Defender),
		Outcome:    outcomeFromDomain(e.Outcome),
		CreatedAt:  e.CreatedAt,
	}
}

// matchupRequest is the body for engagement resolution, simulation, and
// the damage analysis routes. Seed and roll_mode are optional; their
// arbitration is the service's business.
type matchupRequest struct {
	Attacker combatantPayload `json:"attacker"`
	Defender combatantPayload `json:"defender"`
	Seed     *uint64          `json:"seed,omitempty"`
	Mode     string           `json:"roll_mode,omitempty"`
}

func (m matchupRequest) rollMode() random.RollMode {
	return random.RollMode(strings.ToUpper(strings.TrimSpace(m.Mode)))
}

type createBattleRequest struct {
	Name string `json:"name"`
}

type simulationPayload struct {
	Seed       int64          `json:"seed"`
	SeedSource string         `json:"seed_source"`
	RollMode   string         `json:"roll_mode"`
	Outcome    outcomePayload `json:"outcome"`
}

func simulationFromDomain(s service.Simulation) simulationPayload {
	return simulationPayload{
		Seed:       s.Seed,
		SeedSource: string(s.SeedSource),
		RollMode:   string(s.RollMode),
		Outcome:    outcomeFromDomain(s.Outcome),
	}
}

type explanationPayload struct {
	Seed       int64         `json:"seed"`
	SeedSource string        `json:"seed_source"`
	RollMode   string        `json:"roll_mode"`
	Report     reportPayload `json:"report"`
	Steps      []string      `json:"steps"`
}

func explanationFromDomain(e service.StrikeExplanation) explanationPayload {
	return explanationPayload{
		Seed:       e.Seed,
		SeedSource: string(e.SeedSource),
		RollMode:   string(e.RollMode),
		Report:     reportFromDomain(e.Explanation.Report),
		Steps:      e.Explanation.Steps,
	}
}

type outcomeProbabilityPayload struct {
	Damage      int     `json:"damage"`
	Probability float64 `json:"probability"`
}

type distributionPayload struct {
	Outcomes []outcomeProbabilityPayload `json:"outcomes"`
	Min      int                         `json:"min"`
	Max      int                         `json:"max"`
	Mean     float64                     `json:"mean"`
}

func distributionFromDomain(d combat.Distribution) distributionPayload {
	outcomes := make([]outcomeProbabilityPayload, 0, len(d.Outcomes))
	for _, o := range d.Outcomes {
		outcomes = append(outcomes, outcomeProbabilityPayload{Damage: o.Damage, Probability: o.Probability})
	}
	return distributionPayload{Outcomes: outcomes, Min: d.Min, Max: d.Max, Mean: d.Mean}
}

type driftPayload struct {
	EngagementID string `json:"engagement_id"`
	Field        string `json:"field"`
	Stored       string `json:"stored"`
	Derived      string `json:"derived"`
}

type replayFailurePayload struct {
	EngagementID string `json:"engagement_id"`
	Reason       string `json:"reason"`
}

type verificationPayload struct {
	BattleID string                 `json:"battle_id"`
	Checked  int                    `json:"checked"`
	Clean    bool                   `json:"clean"`
	Drifts   []driftPayload         `json:"drifts,omitempty"`
	Failed   []replayFailurePayload `json:"failed,omitempty"`
}

func verificationFromDomain(r service.VerificationReport) verificationPayload {
	p := verificationPayload{
		BattleID: r.BattleID,
		Checked:  r.Checked,
		Clean:    r.Clean(),
	}
	for _, d := range r.Drifts {
		p.Drifts = append(p.Drifts, driftPayload{
			EngagementID: d.EngagementID,
			Field:        d.Field,
			Stored:       d.Stored,
			Derived:      d.Derived,
		})
	}
	for _, f := range r.Failed {
		p.Failed = append(p.Failed, replayFailurePayload{EngagementID: f.EngagementID, Reason: f.Reason})
	}
	return p
}

// errorPayload is the uniform error envelope.
type errorPayload struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeRequestMalformed, "request body is not valid JSON", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	message := "internal error"
	if status < http.StatusInternalServerError {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		} else {
			message = err.Error()
		}
	}
	writeJSON(w, status, errorPayload{Error: errorBody{Code: string(code), Message: message}})
}

// queryInt parses an optional integer query parameter, returning fallback
// when the parameter is absent.
func queryInt(r *http.Request, name string, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeRequestMalformed,
			"query parameter must be an integer", map[string]string{"parameter": name})
	}
	return value, nil
}
