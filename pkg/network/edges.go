package network

import (
	"strings"

	"github.com/ritzau/award-network/pkg/model"
)

// EdgeID is the deterministic identifier of a (source, target) pair
func EdgeID(source, target string) string {
	return source + "->" + target
}

type edgeGroup struct {
	source string
	target string
	events []*ActiveEvent
}

// groupByPair groups events by ordered (contractor, related entity) pair,
// in order of the first appearance of each pair
func groupByPair(active []ActiveEvent) []*edgeGroup {
	index := make(map[[2]string]*edgeGroup)
	var groups []*edgeGroup

	for i := range active {
		ev := &active[i]
		key := [2]string{ev.ContractorUEI, ev.RelatedEntityUEI}
		g, exists := index[key]
		if !exists {
			g = &edgeGroup{source: key[0], target: key[1]}
			index[key] = g
			groups = append(groups, g)
		}
		g.events = append(g.events, ev)
	}
	return groups
}

// distinctNonEmpty appends s to list unless it is blank or already present
func distinctNonEmpty(list []string, seen map[string]bool, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || seen[s] {
		return list
	}
	seen[s] = true
	return append(list, s)
}

// BuildEdges aggregates the active events into one edge per
// (source, target) pair. The relationship type comes from the first event
// of each group; groups whose events disagree are flagged with
// TypeConflict rather than resolved.
func BuildEdges(active []ActiveEvent, focalID string, weights StrengthWeights) []model.NetworkEdge {
	groups := groupByPair(active)
	edges := make([]model.NetworkEdge, 0, len(groups))

	for _, g := range groups {
		first := g.events[0]

		direction := model.DirectionInflow
		if g.source == focalID {
			direction = model.DirectionOutflow
		}

		edge := model.NetworkEdge{
			ID:               EdgeID(g.source, g.target),
			Source:           g.source,
			Target:           g.target,
			Direction:        direction,
			RelationshipType: first.EventType,
			Geography: model.EdgeGeography{
				States: []string{},
				Cities: []string{},
			},
			Temporal: model.EdgeTemporal{
				EarliestStart:     first.Start,
				LatestEnd:         first.End,
				IsCurrentlyActive: true,
			},
		}

		awardKeys := make(map[string]bool)
		typesSeen := make(map[model.EventType]bool)
		states := make(map[string]bool)
		cities := make(map[string]bool)

		for _, ev := range g.events {
			awardKeys[ev.AwardKey] = true
			edge.Metrics.TotalValue += ev.AwardTotalValue

			if !typesSeen[ev.EventType] {
				typesSeen[ev.EventType] = true
				edge.ObservedTypes = append(edge.ObservedTypes, ev.EventType)
			}

			edge.Geography.States = distinctNonEmpty(edge.Geography.States, states, ev.PopState)
			edge.Geography.Cities = distinctNonEmpty(edge.Geography.Cities, cities, ev.PopCity)

			if ev.Start.Before(edge.Temporal.EarliestStart) {
				edge.Temporal.EarliestStart = ev.Start
			}
			if ev.End.After(edge.Temporal.LatestEnd) {
				edge.Temporal.LatestEnd = ev.End
			}
		}

		if len(edge.ObservedTypes) > 1 {
			edge.TypeConflict = true
		} else {
			edge.ObservedTypes = nil
		}

		edge.Metrics.ActiveAwards = len(awardKeys)
		edge.Metrics.AvgAwardSize = safeDiv(edge.Metrics.TotalValue, float64(edge.Metrics.ActiveAwards))
		edge.Metrics.Strength = weights.Strength(edge.Metrics.TotalValue, edge.Metrics.ActiveAwards, edge.Metrics.AvgAwardSize)

		edges = append(edges, edge)
	}

	return edges
}
