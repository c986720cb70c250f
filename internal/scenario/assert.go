package scenario

import (
	"fmt"
	"log"
)

// AssertionMode selects how violated expectations are reported.
type AssertionMode int

const (
	// AssertionStrict fails the run on the first violated expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs violated expectations and keeps running.
	AssertionLogOnly
)

// Assertions reports expectation outcomes according to the configured mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
}

// Failf reports a structural failure. These fail the run in every mode
// because the scenario cannot meaningfully continue.
func (a Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf reports a violated expectation. In log-only mode the violation is
// logged and the run continues.
func (a Assertions) Assertf(format string, args ...any) error {
	if a.Mode == AssertionLogOnly {
		if a.Logger != nil {
			a.Logger.Printf("expectation: "+format, args...)
		}
		return nil
	}
	return fmt.Errorf(format, args...)
}
