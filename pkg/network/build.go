package network

import (
	"sort"
	"time"

	"github.com/ritzau/award-network/pkg/model"
)

// TypeConflict records an edge whose events disagree on event type
type TypeConflict struct {
	EdgeID string            `json:"edgeId"`
	Chosen model.EventType   `json:"chosen"`
	Types  []model.EventType `json:"types"`
}

// BuildReport describes what graph construction dropped or flagged
type BuildReport struct {
	TotalEvents   int                    `json:"totalEvents"`
	ActiveEvents  int                    `json:"activeEvents"`
	Inactive      int                    `json:"inactive"`
	Skipped       []*MalformedEventError `json:"-"`
	TypeConflicts []TypeConflict         `json:"typeConflicts"`
}

// SkippedCount is the number of malformed events excluded
func (r *BuildReport) SkippedCount() int {
	return len(r.Skipped)
}

type buildOptions struct {
	asOf    time.Time
	weights StrengthWeights
}

// Option configures BuildGraph
type Option func(*buildOptions)

// WithAsOf evaluates the active window at t instead of the wall clock
func WithAsOf(t time.Time) Option {
	return func(o *buildOptions) {
		o.asOf = t
	}
}

// WithStrengthWeights replaces the default strength constants
func WithStrengthWeights(w StrengthWeights) Option {
	return func(o *buildOptions) {
		o.weights = w
	}
}

// SortByEventDate returns a copy of events stable-sorted by EVENT_DATE.
// Events without a parseable date keep their relative order after all
// dated events. This fixes which event is "first" in a group.
func SortByEventDate(events []model.ActivityEvent) []model.ActivityEvent {
	type keyed struct {
		ev    model.ActivityEvent
		date  time.Time
		dated bool
	}

	ks := make([]keyed, len(events))
	for i := range events {
		d, err := model.ParseEventDate(events[i].EventDate)
		ks[i] = keyed{ev: events[i], date: d, dated: err == nil}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].dated != ks[j].dated {
			return ks[i].dated
		}
		return ks[i].date.Before(ks[j].date)
	})

	out := make([]model.ActivityEvent, len(ks))
	for i := range ks {
		out[i] = ks[i].ev
	}
	return out
}

// BuildGraph constructs the relationship graph of focalID from raw events.
// It never fails: malformed events are skipped and listed in the report.
func BuildGraph(events []model.ActivityEvent, focalID string, opts ...Option) (*model.NetworkGraph, *BuildReport) {
	o := buildOptions{weights: DefaultStrengthWeights()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.asOf.IsZero() {
		o.asOf = time.Now()
	}

	active := FilterActive(SortByEventDate(events), o.asOf)

	report := &BuildReport{
		TotalEvents:   len(events),
		ActiveEvents:  len(active.Events),
		Inactive:      active.Inactive,
		Skipped:       active.Skipped,
		TypeConflicts: []TypeConflict{},
	}

	nodes := BuildNodes(active.Events, focalID)
	edges := BuildEdges(active.Events, focalID, o.weights)

	for _, e := range edges {
		if e.TypeConflict {
			report.TypeConflicts = append(report.TypeConflicts, TypeConflict{
				EdgeID: e.ID,
				Chosen: e.RelationshipType,
				Types:  e.ObservedTypes,
			})
		}
	}

	g := &model.NetworkGraph{
		Nodes:   nodes,
		Edges:   edges,
		Summary: BuildSummary(nodes, edges, focalID),
	}
	g.Summary.NetworkWideValue = NetworkWideTotal(active.Events)

	for i := range g.Nodes {
		if g.Nodes[i].IsMainContractor {
			g.MainContractor = &g.Nodes[i]
			break
		}
	}

	return g, report
}
