package graph

import (
	"testing"

	"github.com/ritzau/award-network/pkg/model"
)

func TestNewEntityGraph(t *testing.T) {
	eg := NewEntityGraph()
	if eg == nil {
		t.Fatal("NewEntityGraph() returned nil")
	}

	if eg.Len() != 0 {
		t.Errorf("New graph should have 0 entities, got %d", eg.Len())
	}
}

func TestAddEntity(t *testing.T) {
	eg := NewEntityGraph()

	eg.AddEntity("C1")
	eg.AddEntity("C1")

	if eg.Len() != 1 {
		t.Errorf("Expected 1 entity, got %d", eg.Len())
	}
	if !eg.Has("C1") {
		t.Error("Entity C1 not found in graph")
	}
}

func TestAddFlow(t *testing.T) {
	eg := NewEntityGraph()

	eg.AddFlow("C1", "G1")
	eg.AddFlow("C1", "G1")

	flows := eg.Flows()
	if len(flows) != 1 {
		t.Fatalf("Expected 1 flow, got %d", len(flows))
	}

	if flows[0][0] != "C1" || flows[0][1] != "G1" {
		t.Errorf("Expected flow C1->G1, got %v", flows[0])
	}
}

func TestSelfFlowIgnored(t *testing.T) {
	eg := NewEntityGraph()

	eg.AddFlow("C1", "C1")

	if eg.Len() != 1 {
		t.Errorf("Expected 1 entity, got %d", eg.Len())
	}
	if len(eg.Flows()) != 0 {
		t.Errorf("Expected no flows, got %v", eg.Flows())
	}
	if n := eg.Neighbors("C1"); len(n) != 0 {
		t.Errorf("Expected no neighbors, got %v", n)
	}
}

func TestNeighborsBothDirections(t *testing.T) {
	eg := NewEntityGraph()

	// C1 receives from G1 and pays P1 and P2; P1 also pays C1
	eg.AddFlow("G1", "C1")
	eg.AddFlow("C1", "P1")
	eg.AddFlow("C1", "P2")
	eg.AddFlow("P1", "C1")

	neighbors := eg.Neighbors("C1")
	expected := []string{"G1", "P1", "P2"}
	if len(neighbors) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, neighbors)
	}
	for i := range expected {
		if neighbors[i] != expected[i] {
			t.Errorf("neighbors[%d] = %s, want %s", i, neighbors[i], expected[i])
		}
	}

	successors := eg.Successors("C1")
	if len(successors) != 2 || successors[0] != "P1" || successors[1] != "P2" {
		t.Errorf("Expected successors [P1 P2], got %v", successors)
	}

	if eg.Neighbors("missing") != nil {
		t.Error("Expected nil neighbors for unknown entity")
	}
}

func TestBuildEntityGraph(t *testing.T) {
	events := []model.ActivityEvent{
		{ContractorUEI: "C1", RelatedEntityUEI: "G1"},
		{ContractorUEI: "C1", RelatedEntityUEI: "P1"},
		{ContractorUEI: "C1", RelatedEntityUEI: "P1"},
	}

	eg := BuildEntityGraph(events)

	if eg.Len() != 3 {
		t.Errorf("Expected 3 entities, got %d", eg.Len())
	}
	if len(eg.Flows()) != 2 {
		t.Errorf("Expected 2 flows, got %d", len(eg.Flows()))
	}

	id, ok := eg.EntityID(0)
	if !ok || id != "C1" {
		t.Errorf("Expected first registered entity C1, got %q", id)
	}
}

func TestFromNetworkEdges(t *testing.T) {
	edges := []model.NetworkEdge{
		{Source: "C1", Target: "A1"},
		{Source: "C1", Target: "P1"},
		{Source: "P1", Target: "C1"},
	}

	eg := FromNetworkEdges(edges)

	if eg.Len() != 3 {
		t.Errorf("Expected 3 entities, got %d", eg.Len())
	}
	if got := eg.Successors("P1"); len(got) != 1 || got[0] != "C1" {
		t.Errorf("Expected P1 -> C1, got %v", got)
	}
}
