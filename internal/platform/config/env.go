// Package config carries shared configuration plumbing for wartide
// binaries: env parsing and fatal exits for CLI entry points.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from environment variables using its env tags.
// target must be a non-nil struct pointer.
func ParseEnv(target any) error {
	if target == nil {
		return errors.New("config target is required")
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
