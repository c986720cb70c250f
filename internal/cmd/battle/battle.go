// Package battle parses battle service flags and starts the HTTP API.
package battle

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ashveldt/wartide/internal/api"
	"github.com/ashveldt/wartide/internal/battle/service"
	"github.com/ashveldt/wartide/internal/battle/storage/sqlite"
	"github.com/ashveldt/wartide/internal/grant"
	entrypoint "github.com/ashveldt/wartide/internal/platform/cmd"
	"github.com/ashveldt/wartide/internal/telemetry"
)

// Config holds battle command configuration.
type Config struct {
	Port   int    `env:"WARTIDE_BATTLE_PORT" envDefault:"8080"`
	Addr   string `env:"WARTIDE_BATTLE_ADDR"`
	DBPath string `env:"WARTIDE_BATTLE_DB"  envDefault:"wartide.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The battle API port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The battle API listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the battle journal database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the journal, wires the battle service, and serves the API until
// the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBattle, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close journal: %v", err)
			}
		}()

		verifier, err := grant.LoadVerifierFromEnv(time.Now)
		if err != nil {
			return err
		}
		if verifier == nil {
			log.Printf("battle grants not configured; engagement appends are open")
		}

		svc := service.New(store, telemetry.NewEmitter(store))
		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		server, err := api.New(addr, svc, verifier)
		if err != nil {
			return err
		}
		return server.ListenAndServe(ctx)
	})
}
