package analysis

import (
	"time"

	"github.com/ritzau/award-network/pkg/cycles"
	"github.com/ritzau/award-network/pkg/graph"
	"github.com/ritzau/award-network/pkg/model"
	"github.com/ritzau/award-network/pkg/network"
)

// Report collects the findings of one graph build that are not part of
// the graph itself
type Report struct {
	Focal         string                 `json:"focal"`
	AsOf          time.Time              `json:"asOf"`
	Source        string                 `json:"source"`
	TotalEvents   int                    `json:"totalEvents"`
	ActiveEvents  int                    `json:"activeEvents"`
	Inactive      int                    `json:"inactiveEvents"`
	SkippedCount  int                    `json:"skippedCount"`
	Skipped       []string               `json:"skipped"`
	TypeConflicts []network.TypeConflict `json:"typeConflicts"`
	CircularFlows []cycles.CircularFlow  `json:"circularFlows"`
}

// NewReport summarizes a build
func NewReport(g *model.NetworkGraph, build *network.BuildReport, focal, source string, asOf time.Time) *Report {
	r := &Report{
		Focal:         focal,
		AsOf:          asOf,
		Source:        source,
		TotalEvents:   build.TotalEvents,
		ActiveEvents:  build.ActiveEvents,
		Inactive:      build.Inactive,
		SkippedCount:  build.SkippedCount(),
		Skipped:       make([]string, 0, build.SkippedCount()),
		TypeConflicts: build.TypeConflicts,
		CircularFlows: cycles.FindCircularFlows(graph.FromNetworkEdges(g.Edges)),
	}
	for _, s := range build.Skipped {
		r.Skipped = append(r.Skipped, s.Error())
	}
	return r
}

// HasWarnings reports whether the build dropped or flagged anything
func (r *Report) HasWarnings() bool {
	return r.SkippedCount > 0 || len(r.TypeConflicts) > 0 || len(r.CircularFlows) > 0
}
