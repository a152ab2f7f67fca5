package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ritzau/award-network/pkg/analysis/api"
	"github.com/ritzau/award-network/pkg/config"
	"github.com/ritzau/award-network/pkg/geo"
	"github.com/ritzau/award-network/pkg/lens"
	"github.com/ritzau/award-network/pkg/logging"
	"github.com/ritzau/award-network/pkg/metrics"
	"github.com/ritzau/award-network/pkg/model"
	"github.com/ritzau/award-network/pkg/network"
	"github.com/ritzau/award-network/pkg/pubsub"
)

// Snapshot is one immutable build result. Readers must not modify it.
type Snapshot struct {
	Graph    *model.NetworkGraph       `json:"graph"`
	Report   *Report                   `json:"report"`
	Clusters []model.GeographicCluster `json:"clusters"`
	Diff     *lens.GraphDiff           `json:"-"` // changes relative to the previous snapshot
	Hash     string                    `json:"hash"`
	Version  int                       `json:"version"`
	BuiltAt  time.Time                 `json:"builtAt"`
}

// Runner loads events and rebuilds the network graph on demand
type Runner struct {
	source    api.Source
	cfg       *config.Config
	publisher pubsub.Publisher // optional
	clock     func() time.Time

	mu sync.Mutex // Prevent concurrent builds

	snapMu   sync.RWMutex
	current  *Snapshot
	previous *lens.GraphSnapshot
}

// NewRunner creates a runner for the focal entity in cfg
func NewRunner(source api.Source, cfg *config.Config, publisher pubsub.Publisher) (*Runner, error) {
	if cfg == nil || cfg.Focal == "" {
		return nil, network.ErrNoFocalEntity
	}
	if _, err := cfg.AsOfTime(); err != nil {
		return nil, err
	}
	return &Runner{
		source:    source,
		cfg:       cfg,
		publisher: publisher,
		clock:     time.Now,
	}, nil
}

// Current returns the latest snapshot, or nil before the first build
func (r *Runner) Current() *Snapshot {
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return r.current
}

func (r *Runner) asOf() time.Time {
	asOf, _ := r.cfg.AsOfTime()
	if asOf.IsZero() {
		return r.clock()
	}
	return asOf
}

// Refresh loads events and builds a new snapshot. A failed load keeps the
// previous snapshot.
func (r *Runner) Refresh(ctx context.Context, reason string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := logging.New("analysis")
	logger.Info("Starting graph build", "reason", reason, "source", r.source.Name(), "focal", r.cfg.Focal)
	start := time.Now()

	r.publishStatus(pubsub.StateLoading, "Loading activity events...", reason, 1)
	events, err := r.source.Load(ctx, r.cfg)
	if err != nil {
		logger.Error("Loading events failed", "error", err)
		r.publishStatus(pubsub.StateFailed, fmt.Sprintf("Error loading events: %v", err), reason, 1)
		return nil, fmt.Errorf("load events from %s: %w", r.source.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.publishStatus(pubsub.StateBuilding, "Building relationship graph...", reason, 2)
	asOf := r.asOf()
	g, build := network.BuildGraph(events, r.cfg.Focal,
		network.WithAsOf(asOf),
		network.WithStrengthWeights(network.StrengthWeights(r.cfg.Strength)),
	)
	report := NewReport(g, build, r.cfg.Focal, r.source.Name(), asOf)
	clusters := geo.BuildClusters(g.Edges)

	for _, skipped := range build.Skipped {
		logger.Warn("Skipped malformed event", "event", skipped.EventID, "field", skipped.Field, "value", skipped.Value)
	}
	for _, conflict := range build.TypeConflicts {
		logger.Warn("Relationship has mixed event types", "edge", conflict.EdgeID, "chosen", conflict.Chosen, "types", conflict.Types)
	}

	r.snapMu.Lock()
	diff := lens.ComputeDiff(r.previous, g)
	snap := lens.CreateSnapshot(g)
	version := 1
	if r.current != nil {
		version = r.current.Version + 1
	}
	current := &Snapshot{
		Graph:    g,
		Report:   report,
		Clusters: clusters,
		Diff:     diff,
		Hash:     snap.Hash,
		Version:  version,
		BuiltAt:  r.clock(),
	}
	r.current = current
	r.previous = snap
	r.snapMu.Unlock()

	elapsed := time.Since(start)
	metrics.ObserveBuild(elapsed, build.ActiveEvents, build.Inactive, build.SkippedCount(), len(g.Nodes), len(g.Edges))
	metrics.GraphSize.WithLabelValues("clusters").Set(float64(len(clusters)))

	r.publishUpdate(current)
	r.publishStatus(pubsub.StateReady, "Graph ready", reason, 3)

	logger.Info("Graph build complete",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"active", build.ActiveEvents,
		"inactive", build.Inactive,
		"skipped", build.SkippedCount(),
		"durationMs", elapsed.Milliseconds(),
	)
	return current, nil
}

func (r *Runner) publishStatus(state, message, reason string, step int) {
	if r.publisher == nil {
		return
	}
	status := pubsub.GraphStatus{
		State:   state,
		Message: message,
		Reason:  reason,
		Step:    step,
		Total:   3,
	}
	if err := r.publisher.Publish(pubsub.TopicGraphStatus, state, status); err != nil {
		logging.Debug("could not publish graph status", "state", state, "error", err)
	}
}

func (r *Runner) publishUpdate(s *Snapshot) {
	if r.publisher == nil {
		return
	}
	if !s.Diff.FullGraph && s.Diff.Empty() {
		logging.Debug("graph unchanged, no update published", "version", s.Version)
		return
	}
	update := pubsub.GraphUpdate{
		Hash:          s.Hash,
		Version:       s.Version,
		Nodes:         len(s.Graph.Nodes),
		Edges:         len(s.Graph.Edges),
		AddedNodes:    len(s.Diff.AddedNodes),
		RemovedNodes:  len(s.Diff.RemovedNodes),
		AddedEdges:    len(s.Diff.AddedEdges),
		RemovedEdges:  len(s.Diff.RemovedEdges),
		ModifiedEdges: len(s.Diff.ModifiedEdges),
		FullGraph:     s.Diff.FullGraph,
	}
	eventType := "diff"
	if s.Diff.FullGraph {
		eventType = "full"
	}
	if err := r.publisher.Publish(pubsub.TopicGraphUpdate, eventType, update); err != nil {
		logging.Debug("could not publish graph update", "error", err)
	}
}
