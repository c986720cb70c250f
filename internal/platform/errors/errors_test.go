package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeBattleNameEmpty, "battle name is required")
	if !stderrors.Is(err, New(CodeBattleNameEmpty, "other message")) {
		t.Fatal("errors with the same code should match")
	}
	if stderrors.Is(err, New(CodeNotFound, "battle name is required")) {
		t.Fatal("errors with different codes should not match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "save battle", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
	if err.Error() != "save battle" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "save battle")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeUnknown},
		{"plain error", stderrors.New("boom"), CodeUnknown},
		{"domain error", New(CodeGrantExpired, "expired"), CodeGrantExpired},
		{"wrapped domain error", fmt.Errorf("handler: %w", New(CodeNotFound, "missing")), CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeCombatNegativeBaseDamage, http.StatusBadRequest},
		{CodeRequestMalformed, http.StatusBadRequest},
		{CodeGrantInvalid, http.StatusUnauthorized},
		{CodeGrantMismatch, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeBattleReplayDrift, http.StatusConflict},
		{CodeUnknown, http.StatusInternalServerError},
		{Code("SOMETHING_NEW"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
