package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/balloonwind/internal/core/usecases"
)

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GridDefaults are applied when a request omits n or min_span.
type GridDefaults struct {
	Resolution  int
	MinSpanDeg  float64
	PressureHPa int
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Feed    *usecases.FeedService
	Tracks  *usecases.TrackService
	Maps    *usecases.MapService
	Catalog *usecases.CatalogService
	Grid    GridDefaults
	NATS    *nats.Conn
	Cache   Pinger

	// SpecPath locates the OpenAPI document; empty means DefaultSpecPath.
	SpecPath string
}
