package network

import (
	"github.com/ritzau/award-network/pkg/model"
	"gonum.org/v1/gonum/stat"
)

// BuildSummary reduces a built node/edge set to portfolio statistics.
//
// PrimaryState is the state present in the most edges; on a tie the state
// encountered first in edge order wins. NetworkWideValue is
// not derivable from nodes/edges and is left for the caller (see
// NetworkWideTotal).
func BuildSummary(nodes []model.NetworkNode, edges []model.NetworkEdge, focalID string) model.NetworkSummary {
	summary := model.NetworkSummary{
		TotalRelationships: len(edges),
		GeographicReach: model.GeographicReach{
			StateList: []string{},
			CityList:  []string{},
		},
	}

	for i := range nodes {
		if nodes[i].ID == focalID && nodes[i].IsMainContractor {
			summary.TotalActiveValue = nodes[i].Metrics.TotalActiveValue
		}
		switch nodes[i].Role {
		case model.RoleAgency:
			summary.RelationshipTypes.Agencies++
		case model.RolePrime:
			summary.RelationshipTypes.Primes++
		case model.RoleSub:
			summary.RelationshipTypes.Subs++
		}
	}

	stateSeen := make(map[string]bool)
	citySeen := make(map[string]bool)
	stateCounts := make(map[string]int)
	strengths := make([]float64, 0, len(edges))

	for i := range edges {
		e := &edges[i]
		switch e.Direction {
		case model.DirectionInflow:
			summary.InflowRelationships++
		case model.DirectionOutflow:
			summary.OutflowRelationships++
		}
		if e.RelationshipType == model.EventSubsidiaryObligation {
			summary.RelationshipTypes.Subsidiaries++
		}
		strengths = append(strengths, e.Metrics.Strength)

		for _, s := range e.Geography.States {
			summary.GeographicReach.StateList = distinctNonEmpty(summary.GeographicReach.StateList, stateSeen, s)
			stateCounts[s]++
		}
		for _, c := range e.Geography.Cities {
			summary.GeographicReach.CityList = distinctNonEmpty(summary.GeographicReach.CityList, citySeen, c)
		}
	}

	best := 0
	for _, s := range summary.GeographicReach.StateList {
		if stateCounts[s] > best {
			best = stateCounts[s]
			summary.GeographicReach.PrimaryState = s
		}
	}

	summary.GeographicReach.States = len(summary.GeographicReach.StateList)
	summary.GeographicReach.Cities = len(summary.GeographicReach.CityList)

	if len(strengths) > 0 {
		summary.AverageStrength = stat.Mean(strengths, nil)
	}

	return summary
}

// NetworkWideTotal sums each distinct award's total value once, giving the
// non-duplicated counterpart to the per-relationship node totals. The first
// event seen for an award supplies its total.
func NetworkWideTotal(active []ActiveEvent) float64 {
	seen := make(map[string]bool)
	var total float64
	for i := range active {
		key := active[i].AwardKey
		if seen[key] {
			continue
		}
		seen[key] = true
		total += active[i].AwardTotalValue
	}
	return total
}
