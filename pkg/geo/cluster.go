package geo

import (
	"sort"

	"github.com/ritzau/award-network/pkg/model"
)

type clusterKey struct {
	state string
	city  string
}

// BuildClusters buckets edges by every (state, city) pair in the cross
// product of each edge's states and cities. An edge spanning two states
// and two cities lands in four clusters and contributes its full value to
// each: cluster totals are per-location attribution and do not sum to a
// network total. Edges without a state or without a city are not
// clustered.
//
// Clusters are sorted by total value descending, then state and city.
func BuildClusters(edges []model.NetworkEdge) []model.GeographicCluster {
	index := make(map[clusterKey]*model.GeographicCluster)
	members := make(map[clusterKey]map[string]bool)

	for i := range edges {
		e := &edges[i]
		for _, state := range e.Geography.States {
			for _, city := range e.Geography.Cities {
				key := clusterKey{state: state, city: city}
				c, exists := index[key]
				if !exists {
					c = &model.GeographicCluster{State: state, City: city}
					index[key] = c
					members[key] = make(map[string]bool)
				}
				c.Edges = append(c.Edges, *e)
				c.TotalValue += e.Metrics.TotalValue
				members[key][e.Source] = true
				members[key][e.Target] = true
			}
		}
	}

	clusters := make([]model.GeographicCluster, 0, len(index))
	for key, c := range index {
		c.NodeCount = len(members[key])
		clusters = append(clusters, *c)
	}

	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if a.TotalValue != b.TotalValue {
			return a.TotalValue > b.TotalValue
		}
		if a.State != b.State {
			return a.State < b.State
		}
		return a.City < b.City
	})

	return clusters
}
