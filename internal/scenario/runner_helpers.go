package scenario

import (
	"fmt"
	"math"
	"strings"

	"github.com/ashveldt/wartide/internal/battle"
)

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

// resolveCombatant finds a declared combatant by callsign, falling back to a
// case-insensitive match, and returns the canonical callsign alongside it.
func resolveCombatant(state *scenarioState, name string) (string, *battle.Combatant, error) {
	if combatant, ok := state.combatants[name]; ok {
		return name, combatant, nil
	}
	for key, combatant := range state.combatants {
		if strings.EqualFold(key, name) {
			return key, combatant, nil
		}
	}
	return "", nil, fmt.Errorf("unknown combatant %q", name)
}

func floatsClose(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return ""
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return fallback
}

func optionalInt(args map[string]any, key string, fallback int) int {
	value, ok := readInt(args, key)
	if !ok {
		return fallback
	}
	return value
}

func optionalFloat(args map[string]any, key string, fallback float64) float64 {
	value, ok := readFloat(args, key)
	if !ok {
		return fallback
	}
	return value
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func readFloat(args map[string]any, key string) (float64, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func readBool(args map[string]any, key string) (bool, bool) {
	value, ok := args[key]
	if !ok {
		return false, false
	}
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		lower := strings.ToLower(strings.TrimSpace(typed))
		switch lower {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}
