// Package api exposes the battle service over HTTP and WebSocket.
//
// All routes speak JSON under /v1. Engagement appends require a signed
// battle grant when a verifier is configured; without one the surface is
// open, which is the development default.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ashveldt/wartide/internal/battle/service"
	"github.com/ashveldt/wartide/internal/grant"
	"github.com/ashveldt/wartide/internal/platform/timeouts"
)

// Server serves the battle API on one address.
type Server struct {
	addr       string
	svc        *service.Service
	verifier   *grant.Verifier
	httpServer *http.Server
}

// New builds a server around a battle service. A nil verifier leaves
// engagement appends unauthenticated.
func New(addr string, svc *service.Service, verifier *grant.Verifier) (*Server, error) {
	if addr == "" {
		return nil, errors.New("listen address is required")
	}
	if svc == nil {
		return nil, errors.New("battle service is required")
	}

	s := &Server{
		addr:     addr,
		svc:      svc,
		verifier: verifier,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return s, nil
}

// Router builds the route table. Exposed so tests can drive the handlers
// without binding a port.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/rules", s.handleRules).Methods(http.MethodGet)

	v1.HandleFunc("/damage/resolve", s.handleDamageResolve).Methods(http.MethodPost)
	v1.HandleFunc("/damage/explain", s.handleDamageExplain).Methods(http.MethodPost)
	v1.HandleFunc("/damage/distribution", s.handleDamageDistribution).Methods(http.MethodPost)

	v1.HandleFunc("/battles", s.handleCreateBattle).Methods(http.MethodPost)
	v1.HandleFunc("/battles", s.handleListBattles).Methods(http.MethodGet)
	v1.HandleFunc("/battles/{battleID}", s.handleGetBattle).Methods(http.MethodGet)
	v1.Handle("/battles/{battleID}/engagements",
		s.requireGrant(http.HandlerFunc(s.handleResolveEngagement))).Methods(http.MethodPost)
	v1.HandleFunc("/battles/{battleID}/engagements", s.handleListEngagements).Methods(http.MethodGet)
	v1.HandleFunc("/battles/{battleID}/verify", s.handleVerifyBattle).Methods(http.MethodPost)
	v1.HandleFunc("/battles/{battleID}/watch", s.handleWatchBattle).Methods(http.MethodGet)

	return r
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("api server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("battle api listening on %s", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
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
