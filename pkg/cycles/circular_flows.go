package cycles

import (
	"sort"

	"github.com/ritzau/award-network/pkg/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// CircularFlow is a set of entities that pass money or work around a loop,
// e.g. A primes B while B subcontracts back to A
type CircularFlow struct {
	Entities []string `json:"entities"`
}

// FindCircularFlows returns the strongly connected components of the flow
// graph that contain more than one entity. Entities within a flow are
// sorted, and flows are ordered by size (largest first) then by first entity.
func FindCircularFlows(eg *graph.EntityGraph) []CircularFlow {
	flows := make([]CircularFlow, 0)
	if eg == nil {
		return flows
	}

	for _, scc := range topo.TarjanSCC(eg.Graph()) {
		if len(scc) < 2 {
			continue
		}

		entities := make([]string, 0, len(scc))
		for _, n := range scc {
			if id, ok := eg.EntityID(n.ID()); ok {
				entities = append(entities, id)
			}
		}
		sort.Strings(entities)
		flows = append(flows, CircularFlow{Entities: entities})
	}

	sort.Slice(flows, func(i, j int) bool {
		if len(flows[i].Entities) != len(flows[j].Entities) {
			return len(flows[i].Entities) > len(flows[j].Entities)
		}
		return flows[i].Entities[0] < flows[j].Entities[0]
	})
	return flows
}

// Involving returns the flows that include entity id
func Involving(flows []CircularFlow, id string) []CircularFlow {
	var out []CircularFlow
	for _, f := range flows {
		for _, e := range f.Entities {
			if e == id {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
