package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	battlecmd "github.com/ashveldt/wartide/internal/cmd/battle"
)

func main() {
	cfg, err := battlecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[BATTLE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := battlecmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
