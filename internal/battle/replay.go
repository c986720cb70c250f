package battle

import (
	"fmt"
	"strconv"
)

// Drift is one field where a stored engagement disagrees with the value
// re-derived from its recorded seed.
type Drift struct {
	EngagementID string
	Field        string
	Stored       string
	Derived      string
}

// VerifyEngagement replays a stored engagement from its seed and compares
// the stored outcome field by field. An empty slice means the record
// replays bit-exact. Resolution errors (for example inputs that no longer
// validate against the current catalogs) are returned as errors, not drift.
func VerifyEngagement(e Engagement) ([]Drift, error) {
	derived, err := Engage(e.Seed, e.Attacker, e.Defender)
	if err != nil {
		return nil, fmt.Errorf("replay engagement %s: %w", e.ID, err)
	}

	var drifts []Drift
	record := func(field, stored, derivedValue string) {
		if stored != derivedValue {
			drifts = append(drifts, Drift{
				EngagementID: e.ID,
				Field:        field,
				Stored:       stored,
				Derived:      derivedValue,
			})
		}
	}

	record("first_damage",
		strconv.Itoa(e.Outcome.First.Report.Damage),
		strconv.Itoa(derived.First.Report.Damage))
	record("first_luck",
		formatFloat(e.Outcome.First.Report.Luck),
		formatFloat(derived.First.Report.Luck))
	record("counter_present",
		strconv.FormatBool(e.Outcome.Counter != nil),
		strconv.FormatBool(derived.Counter != nil))
	if e.Outcome.Counter != nil && derived.Counter != nil {
		record("counter_damage",
			strconv.Itoa(e.Outcome.Counter.Report.Damage),
			strconv.Itoa(derived.Counter.Report.Damage))
		record("counter_luck",
			formatFloat(e.Outcome.Counter.Report.Luck),
			formatFloat(derived.Counter.Report.Luck))
	}
	record("attacker_hp_after",
		formatFloat(e.Outcome.AttackerHPAfter),
		formatFloat(derived.AttackerHPAfter))
	record("defender_hp_after",
		formatFloat(e.Outcome.DefenderHPAfter),
		formatFloat(derived.DefenderHPAfter))
	record("attacker_destroyed",
		strconv.FormatBool(e.Outcome.AttackerDestroyed),
		strconv.FormatBool(derived.AttackerDestroyed))
	record("defender_destroyed",
		strconv.FormatBool(e.Outcome.DefenderDestroyed),
		strconv.FormatBool(derived.DefenderDestroyed))

	return drifts, nil
}

// formatFloat renders replay floats with full round-trip precision, so two
// values drift only when their bits differ.
func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
