package graph

import (
	"sort"

	"github.com/ritzau/award-network/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// EntityGraph is the directed money/work flow graph between entities.
// It indexes entity identifiers onto a gonum simple.DirectedGraph.
type EntityGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // entity ID -> graph ID
	names  map[int64]string // graph ID -> entity ID
	nextID int64
}

// NewEntityGraph creates an empty entity graph
func NewEntityGraph() *EntityGraph {
	return &EntityGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// AddEntity registers an entity. Registering twice is a no-op.
func (eg *EntityGraph) AddEntity(id string) {
	if _, exists := eg.ids[id]; exists {
		return
	}

	eg.ids[id] = eg.nextID
	eg.names[eg.nextID] = id
	eg.graph.AddNode(simple.Node(eg.nextID))
	eg.nextID++
}

// AddFlow records a flow from source to target. Both entities are
// registered; a flow from an entity to itself adds no edge.
func (eg *EntityGraph) AddFlow(source, target string) {
	eg.AddEntity(source)
	eg.AddEntity(target)

	if source == target {
		return
	}

	sourceID := eg.ids[source]
	targetID := eg.ids[target]
	if !eg.graph.HasEdgeFromTo(sourceID, targetID) {
		eg.graph.SetEdge(eg.graph.NewEdge(eg.graph.Node(sourceID), eg.graph.Node(targetID)))
	}
}

// Has reports whether the entity is in the graph
func (eg *EntityGraph) Has(id string) bool {
	_, exists := eg.ids[id]
	return exists
}

// Len returns the number of entities
func (eg *EntityGraph) Len() int {
	return len(eg.ids)
}

// Graph returns the underlying gonum graph
func (eg *EntityGraph) Graph() *simple.DirectedGraph {
	return eg.graph
}

// EntityID maps a gonum node ID back to its entity identifier
func (eg *EntityGraph) EntityID(nodeID int64) (string, bool) {
	id, ok := eg.names[nodeID]
	return id, ok
}

// Successors returns the entities id flows to, sorted
func (eg *EntityGraph) Successors(id string) []string {
	nodeID, exists := eg.ids[id]
	if !exists {
		return nil
	}

	var out []string
	iter := eg.graph.From(nodeID)
	for iter.Next() {
		out = append(out, eg.names[iter.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the distinct counterparties of id in either
// direction, sorted
func (eg *EntityGraph) Neighbors(id string) []string {
	nodeID, exists := eg.ids[id]
	if !exists {
		return nil
	}

	seen := make(map[int64]bool)
	from := eg.graph.From(nodeID)
	for from.Next() {
		seen[from.Node().ID()] = true
	}
	to := eg.graph.To(nodeID)
	for to.Next() {
		seen[to.Node().ID()] = true
	}

	out := make([]string, 0, len(seen))
	for other := range seen {
		out = append(out, eg.names[other])
	}
	sort.Strings(out)
	return out
}

// Flows returns all flows as [source, target] pairs, sorted
func (eg *EntityGraph) Flows() [][2]string {
	var flows [][2]string

	iter := eg.graph.Edges()
	for iter.Next() {
		edge := iter.Edge()
		flows = append(flows, [2]string{eg.names[edge.From().ID()], eg.names[edge.To().ID()]})
	}

	sort.Slice(flows, func(i, j int) bool {
		if flows[i][0] != flows[j][0] {
			return flows[i][0] < flows[j][0]
		}
		return flows[i][1] < flows[j][1]
	})
	return flows
}

// BuildEntityGraph builds the flow graph of a set of activity events.
// Each event contributes a flow from its contractor to its related entity.
func BuildEntityGraph(events []model.ActivityEvent) *EntityGraph {
	eg := NewEntityGraph()
	for i := range events {
		eg.AddFlow(events[i].ContractorUEI, events[i].RelatedEntityUEI)
	}
	return eg
}

// FromNetworkEdges builds the flow graph of an already-built network,
// one flow per edge
func FromNetworkEdges(edges []model.NetworkEdge) *EntityGraph {
	eg := NewEntityGraph()
	for i := range edges {
		eg.AddFlow(edges[i].Source, edges[i].Target)
	}
	return eg
}
