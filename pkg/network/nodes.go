package network

import (
	"github.com/ritzau/award-network/pkg/graph"
	"github.com/ritzau/award-network/pkg/model"
)

// relatedRole is the role decision table for the related side of an event
func relatedRole(ev *model.ActivityEvent) model.NodeRole {
	switch {
	case ev.RelatedEntityType.IsGovernment():
		return model.RoleAgency
	case ev.EventType == model.EventPrime:
		return model.RolePrime
	case ev.EventType == model.EventSubaward:
		return model.RoleSub
	default:
		return model.RoleContractor
	}
}

type nodeRegistry struct {
	focalID string
	order   []string
	nodes   map[string]*model.NetworkNode
}

// register adds a node unless the ID was already seen; the first
// observation of an entity fixes its name, location and role
func (r *nodeRegistry) register(id, name string, role model.NodeRole, loc model.Location) {
	if _, exists := r.nodes[id]; exists {
		return
	}
	if id == r.focalID {
		role = model.RoleContractor
	}
	r.nodes[id] = &model.NetworkNode{
		ID:               id,
		Name:             name,
		Role:             role,
		Location:         loc,
		IsMainContractor: id == r.focalID,
	}
	r.order = append(r.order, id)
}

// BuildNodes deduplicates the entities of the active events into nodes.
//
// Metrics are computed per node over every active event that references
// the node as source or target. TotalActiveValue sums award totals, so an
// award shared by two entities is counted on both sides.
func BuildNodes(active []ActiveEvent, focalID string) []model.NetworkNode {
	if len(active) == 0 {
		return []model.NetworkNode{}
	}

	reg := &nodeRegistry{focalID: focalID, nodes: make(map[string]*model.NetworkNode)}
	for i := range active {
		ev := &active[i].ActivityEvent
		reg.register(ev.ContractorUEI, ev.ContractorName, model.RoleContractor,
			model.Location{State: ev.ContractorState, City: ev.ContractorCity})
		reg.register(ev.RelatedEntityUEI, ev.RelatedEntityName, relatedRole(ev),
			model.Location{State: ev.PopState, City: ev.PopCity})
	}

	// Exactly one node is the main contractor, even when the focal entity
	// only shows up through filtering upstream
	if _, ok := reg.nodes[focalID]; !ok {
		reg.nodes[focalID] = &model.NetworkNode{ID: focalID, Role: model.RoleContractor, IsMainContractor: true}
		reg.order = append([]string{focalID}, reg.order...)
	}

	raw := make([]model.ActivityEvent, len(active))
	for i := range active {
		raw[i] = active[i].ActivityEvent
	}
	eg := graph.BuildEntityGraph(raw)

	values := make(map[string]float64)
	awards := make(map[string]map[string]bool)
	touch := func(id string, ev *model.ActivityEvent) {
		values[id] += ev.AwardTotalValue
		if awards[id] == nil {
			awards[id] = make(map[string]bool)
		}
		awards[id][ev.AwardKey] = true
	}
	for i := range active {
		ev := &active[i].ActivityEvent
		touch(ev.ContractorUEI, ev)
		if ev.RelatedEntityUEI != ev.ContractorUEI {
			touch(ev.RelatedEntityUEI, ev)
		}
	}

	nodes := make([]model.NetworkNode, 0, len(reg.order))
	for _, id := range reg.order {
		node := *reg.nodes[id]
		node.Metrics = model.NodeMetrics{
			TotalActiveValue:  values[id],
			ActiveAwardsCount: len(awards[id]),
			RelationshipCount: len(eg.Neighbors(id)),
		}
		nodes = append(nodes, node)
	}
	return nodes
}
