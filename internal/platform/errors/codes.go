// Package errors provides structured error handling with machine-readable codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Combat validation errors
	CodeCombatInvalidHP            Code = "COMBAT_INVALID_HP"
	CodeCombatNegativeBaseDamage   Code = "COMBAT_NEGATIVE_BASE_DAMAGE"
	CodeCombatNegativeModifier     Code = "COMBAT_NEGATIVE_MODIFIER"
	CodeCombatNegativeComtowers    Code = "COMBAT_NEGATIVE_COMTOWERS"
	CodeCombatNegativeTerrainStars Code = "COMBAT_NEGATIVE_TERRAIN_STARS"
	CodeCombatLuckOutOfRange       Code = "COMBAT_LUCK_OUT_OF_RANGE"

	// Luck source errors
	CodeLuckSourceMissing   Code = "LUCK_SOURCE_MISSING"
	CodeLuckSourceExhausted Code = "LUCK_SOURCE_EXHAUSTED"
	CodeLuckSourceFailed    Code = "LUCK_SOURCE_FAILED"

	// Random/seed errors
	CodeSeedOutOfRange  Code = "SEED_OUT_OF_RANGE"
	CodeRollModeInvalid Code = "ROLL_MODE_INVALID"

	// Officer errors
	CodeOfficerUnknown      Code = "OFFICER_UNKNOWN"
	CodeOfficerInvalidState Code = "OFFICER_INVALID_STATE"

	// Unit/terrain errors
	CodeUnitUnknown    Code = "UNIT_UNKNOWN"
	CodeTerrainUnknown Code = "TERRAIN_UNKNOWN"

	// Battle errors
	CodeBattleNameEmpty     Code = "BATTLE_NAME_EMPTY"
	CodeBattleUnitDestroyed Code = "BATTLE_UNIT_DESTROYED"
	CodeBattleCannotAttack  Code = "BATTLE_CANNOT_ATTACK"
	CodeBattleReplayDrift   Code = "BATTLE_REPLAY_DRIFT"

	// Grant errors
	CodeGrantInvalid  Code = "GRANT_INVALID"
	CodeGrantExpired  Code = "GRANT_EXPIRED"
	CodeGrantMismatch Code = "GRANT_MISMATCH"

	// Transport errors
	CodeRequestMalformed Code = "REQUEST_MALFORMED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeCombatInvalidHP,
		CodeCombatNegativeBaseDamage,
		CodeCombatNegativeModifier,
		CodeCombatNegativeComtowers,
		CodeCombatNegativeTerrainStars,
		CodeCombatLuckOutOfRange,
		CodeLuckSourceMissing,
		CodeSeedOutOfRange,
		CodeRollModeInvalid,
		CodeOfficerUnknown,
		CodeOfficerInvalidState,
		CodeUnitUnknown,
		CodeTerrainUnknown,
		CodeBattleNameEmpty,
		CodeBattleUnitDestroyed,
		CodeBattleCannotAttack,
		CodeRequestMalformed:
		return http.StatusBadRequest

	// Unauthorized - missing or unverifiable credentials
	case CodeGrantInvalid, CodeGrantExpired:
		return http.StatusUnauthorized

	// Forbidden - valid credentials for the wrong resource
	case CodeGrantMismatch:
		return http.StatusForbidden

	// Not found
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - the journal no longer matches the engine
	case CodeBattleReplayDrift, CodeLuckSourceExhausted:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
