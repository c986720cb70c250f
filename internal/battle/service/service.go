// Package service orchestrates battles over the journal store and the
// combat engine: battle CRUD, engagement resolution, analysis, and replay
// verification.
package service

import (
	"context"
	"log"
	"sync"
	"time"

	battlestorage "github.com/ashveldt/wartide/internal/battle/storage"
	"github.com/ashveldt/wartide/internal/platform/id"
	"github.com/ashveldt/wartide/internal/random"
	"github.com/ashveldt/wartide/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies service spans in trace backends.
const tracerName = "wartide/battle/service"

// Service exposes battle operations to the HTTP, WebSocket, and MCP
// surfaces.
type Service struct {
	store   battlestorage.Store
	emitter *telemetry.Emitter
	tracer  trace.Tracer
	clock   func() time.Time
	newID   func() (string, error)
	newSeed func() (int64, error)

	mu       sync.Mutex
	watchers map[*watcher]struct{}
}

// New creates a Service with default clock, id, and seed generators. The
// emitter may be nil; telemetry is then skipped.
func New(store battlestorage.Store, emitter *telemetry.Emitter) *Service {
	return &Service{
		store:   store,
		emitter: emitter,
		tracer:  otel.Tracer(tracerName),
		clock:   time.Now,
		newID:   id.NewID,
		newSeed: random.NewSeed,
	}
}

// emit records telemetry without failing the operation it annotates.
func (s *Service) emit(ctx context.Context, battleID, kind string, detail map[string]string) {
	if err := s.emitter.Emit(ctx, battleID, kind, detail); err != nil {
		log.Printf("telemetry emit %s: %v", kind, err)
	}
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
