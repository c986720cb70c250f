// Package skirmish parses skirmish command flags and runs Lua scenarios.
package skirmish

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/ashveldt/wartide/internal/platform/cmd"
	"github.com/ashveldt/wartide/internal/scenario"
)

// Config holds skirmish command configuration.
type Config struct {
	Scenario string        `env:"WARTIDE_SCENARIO_FILE"`
	Assert   bool          `env:"WARTIDE_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose  bool          `env:"WARTIDE_SCENARIO_VERBOSE"`
	Timeout  time.Duration `env:"WARTIDE_SCENARIO_TIMEOUT" envDefault:"1m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assert, "assert", cfg.Assert, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall run timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the skirmish command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assert {
		mode = scenario.AssertionLogOnly
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logger := log.New(errOut, "", 0)
	err := scenario.RunFile(ctx, scenario.Config{
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
	}, cfg.Scenario)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "scenario passed: %s\n", cfg.Scenario)
	return nil
}
