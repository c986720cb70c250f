// Package mcp exposes the combat engine to agent tooling over the
// Model Context Protocol, on stdio or streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ashveldt/wartide/internal/battle/service"
	"github.com/ashveldt/wartide/internal/platform/branding"
	"github.com/ashveldt/wartide/internal/platform/timeouts"
)

const serverVersion = "0.1.0"

var serverName = branding.AppName + " MCP"

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New builds an MCP server whose tools call straight into the battle
// service's analysis paths. No journal is touched by any tool.
func New(svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("battle service is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, BattleResolveTool(), BattleResolveHandler(svc))
	mcp.AddTool(mcpServer, DamageExplainTool(), DamageExplainHandler(svc))
	mcp.AddTool(mcpServer, DamageDistributionTool(), DamageDistributionHandler(svc))
	mcp.AddTool(mcpServer, UnitMatchupTool(), UnitMatchupHandler())
	mcp.AddTool(mcpServer, CombatRulesTool(), CombatRulesHandler(svc))

	return &Server{mcpServer: mcpServer}, nil
}

// Serve runs the MCP server on stdio until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("mcp server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}

// ListenAndServe runs the streamable HTTP transport on addr until the
// context ends, with a bounded shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("mcp server is not configured")
	}
	if addr == "" {
		// Localhost-only by default.
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcpServer }, nil)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	log.Printf("mcp listening on %s", addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
