package model

import "time"

// NodeRole is the part an entity plays in the focal contractor's network
type NodeRole string

const (
	RoleContractor NodeRole = "contractor"
	RoleAgency     NodeRole = "agency"
	RolePrime      NodeRole = "prime"
	RoleSub        NodeRole = "sub"
)

// EdgeDirection is relative to the focal entity
type EdgeDirection string

const (
	DirectionInflow  EdgeDirection = "inflow"
	DirectionOutflow EdgeDirection = "outflow"
)

// Location is a state/city pair
type Location struct {
	State string `json:"state"`
	City  string `json:"city"`
}

// NodeMetrics are aggregated over all active events touching a node.
// TotalActiveValue is per-relationship attribution: an award's total is
// counted once for each side that participates in it.
type NodeMetrics struct {
	TotalActiveValue  float64 `json:"totalActiveValue"`
	ActiveAwardsCount int     `json:"activeAwardsCount"`
	RelationshipCount int     `json:"relationshipCount"`
}

// NetworkNode is one distinct entity in the graph
type NetworkNode struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Role             NodeRole    `json:"role"`
	Location         Location    `json:"location"`
	IsMainContractor bool        `json:"isMainContractor"`
	Metrics          NodeMetrics `json:"metrics"`
}

// EdgeMetrics hold the aggregated values of one relationship.
// AvgAwardSize * ActiveAwards == TotalValue.
type EdgeMetrics struct {
	ActiveAwards int     `json:"activeAwards"`
	TotalValue   float64 `json:"totalValue"`
	Strength     float64 `json:"strength"` // 0-100
	AvgAwardSize float64 `json:"avgAwardSize"`
}

// EdgeGeography lists distinct non-empty places of performance
type EdgeGeography struct {
	States []string `json:"states"`
	Cities []string `json:"cities"`
}

// EdgeTemporal spans the award windows of the grouped events
type EdgeTemporal struct {
	EarliestStart     time.Time `json:"earliestStart"`
	LatestEnd         time.Time `json:"latestEnd"`
	IsCurrentlyActive bool      `json:"isCurrentlyActive"`
}

// NetworkEdge aggregates all active events between one (source, target) pair
type NetworkEdge struct {
	ID               string        `json:"id"` // "source->target"
	Source           string        `json:"source"`
	Target           string        `json:"target"`
	Direction        EdgeDirection `json:"direction"`
	RelationshipType EventType     `json:"relationshipType"`

	// TypeConflict is set when grouped events disagree on event type.
	// RelationshipType still comes from the first event.
	TypeConflict  bool        `json:"typeConflict,omitempty"`
	ObservedTypes []EventType `json:"observedTypes,omitempty"`

	Metrics   EdgeMetrics   `json:"metrics"`
	Geography EdgeGeography `json:"geography"`
	Temporal  EdgeTemporal  `json:"temporal"`
}

// GeographicReach summarizes where the network performs work
type GeographicReach struct {
	States       int      `json:"states"`
	Cities       int      `json:"cities"`
	PrimaryState string   `json:"primaryState"`
	StateList    []string `json:"stateList"`
	CityList     []string `json:"cityList"`
}

// RelationshipTypeCounts mixes node-role counts with one edge-type count:
// Subsidiaries counts SUBSIDIARY_OBLIGATION edges, not nodes.
type RelationshipTypeCounts struct {
	Agencies     int `json:"agencies"`
	Primes       int `json:"primes"`
	Subs         int `json:"subs"`
	Subsidiaries int `json:"subsidiaries"`
}

// NetworkSummary is a derived snapshot; recompute it when nodes/edges change
type NetworkSummary struct {
	TotalActiveValue     float64                `json:"totalActiveValue"`
	NetworkWideValue     float64                `json:"networkWideValue"` // unique award totals, no fan-out
	TotalRelationships   int                    `json:"totalRelationships"`
	InflowRelationships  int                    `json:"inflowRelationships"`
	OutflowRelationships int                    `json:"outflowRelationships"`
	GeographicReach      GeographicReach        `json:"geographicReach"`
	RelationshipTypes    RelationshipTypeCounts `json:"relationshipTypes"`
	AverageStrength      float64                `json:"averageStrength"`
}

// NetworkGraph is the complete output of one graph construction
type NetworkGraph struct {
	Nodes          []NetworkNode  `json:"nodes"`
	Edges          []NetworkEdge  `json:"edges"`
	MainContractor *NetworkNode   `json:"mainContractor"`
	Summary        NetworkSummary `json:"summary"`
}

// Node looks up a node by entity identifier
func (g *NetworkGraph) Node(id string) (*NetworkNode, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// EdgesOf returns the edges where id is source or target
func (g *NetworkGraph) EdgesOf(id string) []NetworkEdge {
	var edges []NetworkEdge
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			edges = append(edges, e)
		}
	}
	return edges
}

// GeographicCluster buckets edges by (state, city). TotalValue is
// per-location attribution: an edge spanning several locations adds its
// full value to each of them.
type GeographicCluster struct {
	State      string        `json:"state"`
	City       string        `json:"city"`
	Edges      []NetworkEdge `json:"edges"`
	TotalValue float64       `json:"totalValue"`
	NodeCount  int           `json:"nodeCount"`
}

// DateRange bounds a temporal filter. Zero values are unbounded.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NetworkFilters is a plain criteria value. Empty lists and nil bounds
// accept everything.
type NetworkFilters struct {
	RelationshipTypes []EventType `json:"relationshipTypes,omitempty"`
	MinValue          *float64    `json:"minValue,omitempty"`
	MaxValue          *float64    `json:"maxValue,omitempty"`
	States            []string    `json:"states,omitempty"`
	ActiveOnly        bool        `json:"activeOnly,omitempty"`
	DateRange         DateRange   `json:"dateRange"`
	AsOf              time.Time   `json:"asOf"` // used by ActiveOnly
}
