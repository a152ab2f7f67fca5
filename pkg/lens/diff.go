package lens

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/ritzau/award-network/pkg/model"
)

// GraphDiff represents the difference between two graph states
type GraphDiff struct {
	AddedNodes    []model.NetworkNode `json:"addedNodes"`
	RemovedNodes  []string            `json:"removedNodes"`  // Node IDs
	ModifiedNodes []model.NetworkNode `json:"modifiedNodes"` // Nodes with changed attributes or metrics
	AddedEdges    []model.NetworkEdge `json:"addedEdges"`
	RemovedEdges  []string            `json:"removedEdges"` // Edge IDs
	ModifiedEdges []model.NetworkEdge `json:"modifiedEdges"`
	FullGraph     bool                `json:"fullGraph"` // True if this is a full graph, not a diff
}

// Empty reports whether nothing changed
func (d *GraphDiff) Empty() bool {
	return !d.FullGraph &&
		len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0 && len(d.ModifiedEdges) == 0
}

// GraphSnapshot is an indexed graph state kept for diffing
type GraphSnapshot struct {
	Hash  string
	Nodes map[string]model.NetworkNode
	Edges map[string]model.NetworkEdge
}

// ComputeHash hashes any JSON-serializable values into a stable cache key
func ComputeHash(parts ...interface{}) string {
	jsonData, err := json.Marshal(parts)
	if err != nil {
		return ""
	}

	hash := sha256.Sum256(jsonData)
	return fmt.Sprintf("%x", hash)
}

// CreateSnapshot indexes a graph for diffing
func CreateSnapshot(g *model.NetworkGraph) *GraphSnapshot {
	snapshot := &GraphSnapshot{
		Nodes: make(map[string]model.NetworkNode, len(g.Nodes)),
		Edges: make(map[string]model.NetworkEdge, len(g.Edges)),
	}

	for _, node := range g.Nodes {
		snapshot.Nodes[node.ID] = node
	}
	for _, edge := range g.Edges {
		snapshot.Edges[edge.ID] = edge
	}

	snapshot.Hash = ComputeHash(g)
	return snapshot
}

// ComputeDiff computes what changed between a snapshot and a new graph.
// Results are sorted by ID so equal inputs give equal diffs.
func ComputeDiff(oldSnapshot *GraphSnapshot, newGraph *model.NetworkGraph) *GraphDiff {
	if oldSnapshot == nil {
		return &GraphDiff{
			AddedNodes: newGraph.Nodes,
			AddedEdges: newGraph.Edges,
			FullGraph:  true,
		}
	}

	diff := &GraphDiff{
		AddedNodes:    make([]model.NetworkNode, 0),
		RemovedNodes:  make([]string, 0),
		ModifiedNodes: make([]model.NetworkNode, 0),
		AddedEdges:    make([]model.NetworkEdge, 0),
		RemovedEdges:  make([]string, 0),
		ModifiedEdges: make([]model.NetworkEdge, 0),
	}

	newNodes := make(map[string]bool, len(newGraph.Nodes))
	for _, node := range newGraph.Nodes {
		newNodes[node.ID] = true
		if old, exists := oldSnapshot.Nodes[node.ID]; !exists {
			diff.AddedNodes = append(diff.AddedNodes, node)
		} else if !reflect.DeepEqual(old, node) {
			diff.ModifiedNodes = append(diff.ModifiedNodes, node)
		}
	}
	for id := range oldSnapshot.Nodes {
		if !newNodes[id] {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}

	newEdges := make(map[string]bool, len(newGraph.Edges))
	for _, edge := range newGraph.Edges {
		newEdges[edge.ID] = true
		if old, exists := oldSnapshot.Edges[edge.ID]; !exists {
			diff.AddedEdges = append(diff.AddedEdges, edge)
		} else if !edgesEqual(old, edge) {
			diff.ModifiedEdges = append(diff.ModifiedEdges, edge)
		}
	}
	for id := range oldSnapshot.Edges {
		if !newEdges[id] {
			diff.RemovedEdges = append(diff.RemovedEdges, id)
		}
	}

	sort.Slice(diff.AddedNodes, func(i, j int) bool { return diff.AddedNodes[i].ID < diff.AddedNodes[j].ID })
	sort.Slice(diff.ModifiedNodes, func(i, j int) bool { return diff.ModifiedNodes[i].ID < diff.ModifiedNodes[j].ID })
	sort.Slice(diff.AddedEdges, func(i, j int) bool { return diff.AddedEdges[i].ID < diff.AddedEdges[j].ID })
	sort.Slice(diff.ModifiedEdges, func(i, j int) bool { return diff.ModifiedEdges[i].ID < diff.ModifiedEdges[j].ID })
	sort.Strings(diff.RemovedNodes)
	sort.Strings(diff.RemovedEdges)

	return diff
}

// edgesEqual compares edges on their aggregated content. Times are
// compared with Equal so monotonic clock readings do not matter.
func edgesEqual(a, b model.NetworkEdge) bool {
	return a.Direction == b.Direction &&
		a.RelationshipType == b.RelationshipType &&
		a.TypeConflict == b.TypeConflict &&
		a.Metrics == b.Metrics &&
		reflect.DeepEqual(a.Geography, b.Geography) &&
		a.Temporal.EarliestStart.Equal(b.Temporal.EarliestStart) &&
		a.Temporal.LatestEnd.Equal(b.Temporal.LatestEnd) &&
		a.Temporal.IsCurrentlyActive == b.Temporal.IsCurrentlyActive
}
