package engine

import (
	"errors"
	"testing"
)

// createLineNetwork builds A -> B -> C with 100m roads at 50 km/h.
func createLineNetwork(t *testing.T) (*RoadNetwork, *Intersection, *Intersection, *Intersection) {
	t.Helper()
	n := NewRoadNetwork()
	a := n.AddIntersection("A", 0, 0)
	b := n.AddIntersection("B", 100, 0)
	c := n.AddIntersection("C", 200, 0)
	if _, err := n.AddRoad(a.ID, b.ID, 100, 50, 1); err != nil {
		t.Fatalf("AddRoad(A,B): %v", err)
	}
	if _, err := n.AddRoad(b.ID, c.ID, 100, 50, 1); err != nil {
		t.Fatalf("AddRoad(B,C): %v", err)
	}
	return n, a, b, c
}

func TestAddIntersection_SequentialIDs(t *testing.T) {
	n := NewRoadNetwork()
	for i := 0; i < 5; i++ {
		in := n.AddIntersection("x", float64(i), 0)
		if in.ID != i {
			t.Errorf("intersection %d: got id %d", i, in.ID)
		}
	}
	if n.NumIntersections() != 5 {
		t.Errorf("expected 5 intersections, got %d", n.NumIntersections())
	}
}

func TestAddRoad_UnknownEndpoint(t *testing.T) {
	n := NewRoadNetwork()
	a := n.AddIntersection("A", 0, 0)

	tests := []struct {
		name     string
		from, to int
	}{
		{"unknown to", a.ID, 999},
		{"unknown from", 999, a.ID},
		{"both unknown", 998, 999},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := n.AddRoad(test.from, test.to, 100, 50, 1)
			if !errors.Is(err, ErrInvalidReference) {
				t.Fatalf("expected ErrInvalidReference, got %v", err)
			}
			if n.NumRoads() != 0 {
				t.Errorf("network mutated on failed AddRoad: %d roads", n.NumRoads())
			}
			if n.NumIntersections() != 1 {
				t.Errorf("intersection count changed: %d", n.NumIntersections())
			}
		})
	}
}

func TestAddTwoWayRoad(t *testing.T) {
	n := NewRoadNetwork()
	a := n.AddIntersection("A", 0, 0)
	b := n.AddIntersection("B", 100, 0)

	fwd, rev, err := n.AddTwoWayRoad(a.ID, b.ID, 100, 50, 2)
	if err != nil {
		t.Fatalf("AddTwoWayRoad: %v", err)
	}
	if fwd.From != a.ID || fwd.To != b.ID {
		t.Errorf("forward road endpoints wrong: %d -> %d", fwd.From, fwd.To)
	}
	if rev.From != b.ID || rev.To != a.ID {
		t.Errorf("reverse road endpoints wrong: %d -> %d", rev.From, rev.To)
	}
	if fwd.ID == rev.ID {
		t.Error("two-way road produced a single road id")
	}
	if n.NumRoads() != 2 {
		t.Errorf("expected 2 roads, got %d", n.NumRoads())
	}
}

func TestOutgoingRoads_CreationOrder(t *testing.T) {
	n := NewRoadNetwork()
	a := n.AddIntersection("A", 0, 0)
	b := n.AddIntersection("B", 1, 0)
	c := n.AddIntersection("C", 2, 0)
	d := n.AddIntersection("D", 3, 0)

	// Out-of-id-order insertion: adjacency must follow creation order.
	n.AddRoad(a.ID, d.ID, 10, 50, 1)
	n.AddRoad(a.ID, b.ID, 10, 50, 1)
	n.AddRoad(a.ID, c.ID, 10, 50, 1)

	roads, err := n.OutgoingRoads(a.ID)
	if err != nil {
		t.Fatalf("OutgoingRoads: %v", err)
	}
	want := []int{d.ID, b.ID, c.ID}
	if len(roads) != len(want) {
		t.Fatalf("expected %d roads, got %d", len(want), len(roads))
	}
	for i, r := range roads {
		if r.To != want[i] {
			t.Errorf("outgoing road %d: expected to=%d, got %d", i, want[i], r.To)
		}
	}
}

func TestOutgoingRoads_UnknownIntersection(t *testing.T) {
	n := NewRoadNetwork()
	if _, err := n.OutgoingRoads(42); !errors.Is(err, ErrUnknownIntersection) {
		t.Fatalf("expected ErrUnknownIntersection, got %v", err)
	}
	if _, err := n.Neighbors(42); !errors.Is(err, ErrUnknownIntersection) {
		t.Fatalf("Neighbors: expected ErrUnknownIntersection, got %v", err)
	}
}

func TestRoadBetween_Directional(t *testing.T) {
	n, a, b, _ := createLineNetwork(t)

	if r := n.RoadBetween(a.ID, b.ID); r == nil {
		t.Fatal("expected road A -> B")
	}
	if r := n.RoadBetween(b.ID, a.ID); r != nil {
		t.Errorf("reverse direction should have no road, got id=%d", r.ID)
	}
}

func TestIntersections_CreationOrder(t *testing.T) {
	n := NewRoadNetwork()
	names := []string{"one", "two", "three", "four"}
	for _, name := range names {
		n.AddIntersection(name, 0, 0)
	}
	all := n.Intersections()
	if len(all) != len(names) {
		t.Fatalf("expected %d intersections, got %d", len(names), len(all))
	}
	for i, in := range all {
		if in.Name != names[i] {
			t.Errorf("position %d: expected %q, got %q", i, names[i], in.Name)
		}
	}
}

func TestAttachSignal(t *testing.T) {
	n, a, _, _ := createLineNetwork(t)

	sig := NewSimpleSignal(5, 5)
	if err := n.AttachSignal(a.ID, sig); err != nil {
		t.Fatalf("AttachSignal: %v", err)
	}
	if n.Intersection(a.ID).Signal != sig {
		t.Error("signal not installed")
	}

	if err := n.AttachSignal(999, sig); !errors.Is(err, ErrUnknownIntersection) {
		t.Fatalf("expected ErrUnknownIntersection, got %v", err)
	}
}
