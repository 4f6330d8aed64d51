// Package scenario holds the builtin network builders and assembles
// runnable simulations from scenario configs. Builders live outside the
// engine package: they are example constructions consumed by the
// serving layer and by tests, not part of the simulation core.
package scenario

import (
	"fmt"
	"math"

	"github.com/pmajewski/trafficflow/sim/engine"
)

// BuildClassic builds the four-intersection demo network: a quad with a
// two-way edge between A and B, a one-way loop through C and D, and a
// diagonal shortcut from A to C.
func BuildClassic() *engine.RoadNetwork {
	n := engine.NewRoadNetwork()
	a := n.AddIntersection("Junction A", 0, 0)
	b := n.AddIntersection("Junction B", 100, 0)
	c := n.AddIntersection("Junction C", 100, 100)
	d := n.AddIntersection("Junction D", 0, 100)

	n.AddTwoWayRoad(a.ID, b.ID, 100, 50, 2)
	n.AddRoad(b.ID, c.ID, 100, 50, 2)
	n.AddRoad(c.ID, d.ID, 100, 50, 1)
	n.AddRoad(d.ID, a.ID, 100, 50, 1)
	n.AddRoad(a.ID, c.ID, 141.4, 60, 1)
	return n
}

// BuildGrid builds a cols x rows lattice with the given spacing between
// intersections. One-way grids get edges running right and down only;
// two-way grids get both directions.
func BuildGrid(cols, rows int, spacing float64, twoWay bool) *engine.RoadNetwork {
	n := engine.NewRoadNetwork()

	ids := make([][]int, rows)
	for i := 0; i < rows; i++ {
		ids[i] = make([]int, cols)
		for j := 0; j < cols; j++ {
			name := fmt.Sprintf("Int(%d,%d)", i, j)
			in := n.AddIntersection(name, float64(j)*spacing, float64(i)*spacing)
			ids[i][j] = in.ID
		}
	}

	addEdge := func(from, to int) {
		if twoWay {
			n.AddTwoWayRoad(from, to, spacing, 50, 2)
		} else {
			n.AddRoad(from, to, spacing, 50, 2)
		}
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols-1; j++ {
			addEdge(ids[i][j], ids[i][j+1])
		}
	}
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols; j++ {
			addEdge(ids[i][j], ids[i+1][j])
		}
	}
	return n
}

// BuildRing builds the layered demo network: a six-node inner ring, a
// central hub feeding the ring, an eight-node outer ring, and spokes
// connecting inner ring to outer ring.
func BuildRing() *engine.RoadNetwork {
	n := engine.NewRoadNetwork()

	ring := make([]*engine.Intersection, 0, 6)
	for i := 0; i < 6; i++ {
		x, y := onCircle(200, 200, 150, i, 6)
		ring = append(ring, n.AddIntersection(fmt.Sprintf("Ring%d", i), x, y))
	}
	for i := 0; i < 6; i++ {
		n.AddRoad(ring[i].ID, ring[(i+1)%6].ID, 155, 60, 2)
	}

	center := n.AddIntersection("Center", 200, 200)
	for _, in := range ring {
		n.AddRoad(center.ID, in.ID, 150, 50, 1)
	}

	outer := make([]*engine.Intersection, 0, 8)
	for i := 0; i < 8; i++ {
		x, y := onCircle(200, 200, 300, i, 8)
		outer = append(outer, n.AddIntersection(fmt.Sprintf("Outer%d", i), x, y))
	}
	for i := 0; i < 8; i++ {
		n.AddRoad(outer[i].ID, outer[(i+1)%8].ID, 237, 80, 3)
	}

	for i := 0; i < 6; i++ {
		n.AddRoad(ring[i].ID, outer[i].ID, 150, 70, 2)
	}
	return n
}

// BuildNetwork dispatches to the builder selected by a network config.
func BuildNetwork(cfg engine.NetworkConfig) (*engine.RoadNetwork, error) {
	switch cfg.Kind {
	case "classic":
		return BuildClassic(), nil
	case "grid":
		return BuildGrid(cfg.Cols, cfg.Rows, cfg.Spacing, cfg.TwoWay), nil
	case "ring":
		return BuildRing(), nil
	default:
		return nil, fmt.Errorf("unknown network kind %q", cfg.Kind)
	}
}

// Build assembles a full simulation from a scenario config: network,
// monitor window, seed, signals, and spawners. Intersection references
// in the config are checked against the built network.
func Build(cfg *engine.ScenarioConfig) (*engine.Simulation, error) {
	if err := engine.ValidateScenarioConfig(cfg); err != nil {
		return nil, err
	}

	network, err := BuildNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}

	window := cfg.WindowSeconds
	if window == 0 {
		window = engine.DefaultWindowSeconds
	}
	sim := engine.NewSimulation(network, window)

	if cfg.Seed != 0 {
		sim.Fleet.Seed(cfg.Seed)
	}

	for i, sig := range cfg.Signals {
		controller, err := engine.NewSignalController(sig.Phases)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		if err := network.AttachSignal(sig.Intersection, controller); err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
	}

	for i, sp := range cfg.Spawners {
		if _, err := sim.Fleet.AddSpawner(sp.Intersection, sp.Rate, sp.SpeedMin, sp.SpeedMax); err != nil {
			return nil, fmt.Errorf("spawner %d: %w", i, err)
		}
	}

	return sim, nil
}

func onCircle(cx, cy, radius float64, i, count int) (float64, float64) {
	angle := 2 * math.Pi * float64(i) / float64(count)
	return cx + radius*math.Cos(angle), cy + radius*math.Sin(angle)
}
