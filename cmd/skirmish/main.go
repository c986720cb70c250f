// Package main provides a CLI for running Lua skirmish scripts.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	skirmishcmd "github.com/ashveldt/wartide/internal/cmd/skirmish"
	"github.com/ashveldt/wartide/internal/platform/config"
)

func main() {
	cfg, err := skirmishcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := skirmishcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
