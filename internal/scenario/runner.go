package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ashveldt/wartide/internal/battle"
)

// Config controls scenario execution.
type Config struct {
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua scenarios against the combat engine.
type Runner struct {
	assertions Assertions
	logger     *log.Logger
	verbose    bool
}

// NewRunner prepares a scenario runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Runner{
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// scenarioState tracks combatants across steps. HP carries forward from one
// strike to the next, so later strikes fight from the damage already taken.
type scenarioState struct {
	combatants map[string]*battle.Combatant
	destroyed  map[string]bool
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{
		combatants: map[string]*battle.Combatant{},
		destroyed:  map[string]bool{},
	}

	for index, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		if err := r.runStep(state, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
