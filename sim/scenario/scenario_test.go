package scenario

import (
	"strings"
	"testing"

	"github.com/pmajewski/trafficflow/sim/engine"
)

func TestBuildClassic(t *testing.T) {
	n := BuildClassic()

	if n.NumIntersections() != 4 {
		t.Fatalf("expected 4 intersections, got %d", n.NumIntersections())
	}
	// Two-way A-B plus four one-way roads.
	if n.NumRoads() != 6 {
		t.Errorf("expected 6 roads, got %d", n.NumRoads())
	}
	if n.RoadBetween(0, 1) == nil || n.RoadBetween(1, 0) == nil {
		t.Error("A-B should be a two-way road")
	}
	if n.RoadBetween(2, 1) != nil {
		t.Error("loop roads are one-way; C -> B should not exist")
	}
	if r := n.RoadBetween(0, 2); r == nil || r.Length != 141.4 {
		t.Errorf("missing or wrong diagonal shortcut: %+v", r)
	}

	// Every intersection can reach every other on the classic layout.
	for _, from := range n.Intersections() {
		for _, to := range n.Intersections() {
			if from.ID == to.ID {
				continue
			}
			if engine.FindShortestPath(n, from.ID, to.ID) == nil {
				t.Errorf("no path from %d to %d", from.ID, to.ID)
			}
		}
	}
}

func TestBuildGrid(t *testing.T) {
	tests := []struct {
		name       string
		cols, rows int
		twoWay     bool
		wantRoads  int
	}{
		{"3x3 one-way", 3, 3, false, 12},
		{"3x3 two-way", 3, 3, true, 24},
		{"2x4 one-way", 2, 4, false, 10},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			n := BuildGrid(test.cols, test.rows, 100, test.twoWay)
			if n.NumIntersections() != test.cols*test.rows {
				t.Errorf("expected %d intersections, got %d", test.cols*test.rows, n.NumIntersections())
			}
			if n.NumRoads() != test.wantRoads {
				t.Errorf("expected %d roads, got %d", test.wantRoads, n.NumRoads())
			}
		})
	}
}

func TestBuildGrid_OneWayReachability(t *testing.T) {
	n := BuildGrid(3, 3, 100, false)

	// Edges run right and down: the top-left corner reaches everything,
	// and nothing reaches back to it.
	for _, in := range n.Intersections() {
		if in.ID == 0 {
			continue
		}
		if engine.FindShortestPath(n, 0, in.ID) == nil {
			t.Errorf("corner cannot reach intersection %d", in.ID)
		}
		if engine.FindShortestPath(n, in.ID, 0) != nil {
			t.Errorf("one-way grid should not route %d back to the corner", in.ID)
		}
	}
}

func TestBuildRing(t *testing.T) {
	n := BuildRing()

	// 6 ring + 1 center + 8 outer.
	if n.NumIntersections() != 15 {
		t.Fatalf("expected 15 intersections, got %d", n.NumIntersections())
	}
	// 6 ring edges + 6 center spokes + 8 outer edges + 6 ring-to-outer
	// connectors.
	if n.NumRoads() != 26 {
		t.Errorf("expected 26 roads, got %d", n.NumRoads())
	}

	// The center feeds the ring but cannot be re-entered.
	center := 6
	if engine.FindShortestPath(n, center, 0) == nil {
		t.Error("center should reach the inner ring")
	}
	if engine.FindShortestPath(n, 0, center) != nil {
		t.Error("no road leads back to the center")
	}
}

func TestBuildNetwork_UnknownKind(t *testing.T) {
	if _, err := BuildNetwork(engine.NetworkConfig{Kind: "torus"}); err == nil {
		t.Fatal("expected error for unknown network kind")
	}
}

func TestBuild_FullScenario(t *testing.T) {
	cfg := &engine.ScenarioConfig{
		Name:          "build-test",
		Network:       engine.NetworkConfig{Kind: "classic"},
		WindowSeconds: 30,
		Seed:          7,
		Spawners: []engine.SpawnerConfig{
			{Intersection: 0, Rate: 1, SpeedMin: 30, SpeedMax: 60},
			{Intersection: 1, Rate: 0.5, SpeedMin: 40, SpeedMax: 80},
		},
		Signals: []engine.SignalConfig{
			{Intersection: 2, Phases: []engine.SignalPhase{
				{Name: "ns", Approaches: []int{1}, Duration: 10},
				{Name: "ew", Approaches: []int{0}, Duration: 10},
			}},
		},
	}

	sim, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sim.Monitor.WindowSeconds() != 30 {
		t.Errorf("expected 30s window, got %g", sim.Monitor.WindowSeconds())
	}
	if len(sim.Fleet.Spawners()) != 2 {
		t.Errorf("expected 2 spawners, got %d", len(sim.Fleet.Spawners()))
	}
	if _, ok := sim.Network.Intersection(2).Signal.(*engine.SignalController); !ok {
		t.Error("signal controller not attached")
	}

	// A seeded scenario steps deterministically.
	other, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sim.StepN(0.5, 40)
	other.StepN(0.5, 40)
	if sim.Fleet.NumVehicles() != other.Fleet.NumVehicles() {
		t.Errorf("seeded builds diverged: %d vs %d vehicles",
			sim.Fleet.NumVehicles(), other.Fleet.NumVehicles())
	}
}

func TestBuild_DefaultWindow(t *testing.T) {
	cfg := &engine.ScenarioConfig{
		Name:    "default-window",
		Network: engine.NetworkConfig{Kind: "ring"},
	}
	sim, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sim.Monitor.WindowSeconds() != engine.DefaultWindowSeconds {
		t.Errorf("expected default window, got %g", sim.Monitor.WindowSeconds())
	}
}

func TestBuild_RejectsBadReferences(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *engine.ScenarioConfig
		wantErr string
	}{
		{
			"spawner off-network",
			&engine.ScenarioConfig{
				Name:     "bad-spawner",
				Network:  engine.NetworkConfig{Kind: "classic"},
				Spawners: []engine.SpawnerConfig{{Intersection: 99, Rate: 1, SpeedMin: 30, SpeedMax: 60}},
			},
			"spawner 0",
		},
		{
			"signal off-network",
			&engine.ScenarioConfig{
				Name:    "bad-signal",
				Network: engine.NetworkConfig{Kind: "classic"},
				Signals: []engine.SignalConfig{{
					Intersection: 99,
					Phases:       []engine.SignalPhase{{Approaches: []int{0}, Duration: 10}},
				}},
			},
			"signal 0",
		},
		{
			"invalid config",
			&engine.ScenarioConfig{Name: "", Network: engine.NetworkConfig{Kind: "classic"}},
			"name is required",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Build(test.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("expected error containing %q, got %q", test.wantErr, err.Error())
			}
		})
	}
}
