package cycles

import (
	"testing"

	"github.com/ritzau/award-network/pkg/graph"
)

func TestFindCircularFlows_NoCycles(t *testing.T) {
	eg := graph.NewEntityGraph()

	// Star network around the focal contractor: C1 -> A1, C1 -> P1
	eg.AddFlow("C1", "A1")
	eg.AddFlow("C1", "P1")

	flows := FindCircularFlows(eg)

	if len(flows) != 0 {
		t.Errorf("Expected no circular flows, but found %d", len(flows))
	}
}

func TestFindCircularFlows_SimpleCycle(t *testing.T) {
	eg := graph.NewEntityGraph()

	// C1 primes P1 while P1 subcontracts back to C1
	eg.AddFlow("C1", "P1")
	eg.AddFlow("P1", "C1")
	eg.AddFlow("C1", "A1")

	flows := FindCircularFlows(eg)

	if len(flows) != 1 {
		t.Fatalf("Expected 1 circular flow, but found %d", len(flows))
	}
	got := flows[0].Entities
	if len(got) != 2 || got[0] != "C1" || got[1] != "P1" {
		t.Errorf("Expected [C1 P1], got %v", got)
	}
}

func TestFindCircularFlows_Ordering(t *testing.T) {
	eg := graph.NewEntityGraph()

	// two-entity loop
	eg.AddFlow("X", "Y")
	eg.AddFlow("Y", "X")

	// three-entity loop
	eg.AddFlow("A", "B")
	eg.AddFlow("B", "C")
	eg.AddFlow("C", "A")

	flows := FindCircularFlows(eg)

	if len(flows) != 2 {
		t.Fatalf("Expected 2 circular flows, but found %d", len(flows))
	}
	if len(flows[0].Entities) != 3 || flows[0].Entities[0] != "A" {
		t.Errorf("Expected largest flow [A B C] first, got %v", flows[0].Entities)
	}
	if flows[1].Entities[0] != "X" {
		t.Errorf("Expected [X Y] second, got %v", flows[1].Entities)
	}

	if got := Involving(flows, "Y"); len(got) != 1 || got[0].Entities[0] != "X" {
		t.Errorf("Involving(Y) = %v", got)
	}
	if got := Involving(flows, "nobody"); len(got) != 0 {
		t.Errorf("Involving(nobody) = %v", got)
	}
}

func TestFindCircularFlows_Nil(t *testing.T) {
	if flows := FindCircularFlows(nil); flows == nil || len(flows) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", flows)
	}
}
