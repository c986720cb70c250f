// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ashveldt/wartide/internal/battle/service"
	mcpserver "github.com/ashveldt/wartide/internal/mcp"
	entrypoint "github.com/ashveldt/wartide/internal/platform/cmd"
)

// Transport selectors.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds MCP command configuration.
type Config struct {
	Transport string `env:"WARTIDE_MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr  string `env:"WARTIDE_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server on the configured transport. The tool surface is
// analysis-only, so no journal store is opened.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		server, err := mcpserver.New(service.New(nil, nil))
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
		case TransportStdio:
			return server.Serve(ctx)
		case TransportHTTP:
			return server.ListenAndServe(ctx, cfg.HTTPAddr)
		default:
			return fmt.Errorf("unknown transport %q", cfg.Transport)
		}
	})
}
