package api

import (
	"context"

	"github.com/ritzau/award-network/pkg/config"
	"github.com/ritzau/award-network/pkg/model"
)

// Source represents a provider of activity events.
// Implementations encapsulate how events are gathered (files, exports, fixtures)
// and hand back the flat event list the network builder consumes.
type Source interface {
	// Name returns the unique name of the source (e.g., "EventFile").
	Name() string

	// Load returns every event the source knows about, in source order.
	// It should respect the context for cancellation.
	Load(ctx context.Context, cfg *config.Config) ([]model.ActivityEvent, error)
}
