// Package cmd holds shared entrypoint plumbing for wartide binaries.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ashveldt/wartide/internal/platform/config"
	"github.com/ashveldt/wartide/internal/platform/otel"
)

// otelShutdownTimeout bounds the flush of buffered spans on exit.
const otelShutdownTimeout = 5 * time.Second

// Service identifiers for startup telemetry and CLI naming consistency.
const (
	ServiceBattle   = "battle"
	ServiceMCP      = "mcp"
	ServiceSkirmish = "skirmish"
)

// ParseConfig loads environment defaults into cfg. Binaries call this
// before registering flags so flag values override the environment.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry configures tracing for the named service, executes the
// run loop, and flushes spans on the way out.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()

	return run(ctx)
}
