// Command analyze prints quick, human-readable heuristics about scenario
// files in the project's scenarios directory. It summarizes the network,
// total spawn pressure, expected steady-state vehicle counts, and
// highlights spawn points that cannot reach any destination.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/scenario"
)

func main() {
	scenarios := []string{
		"classic.json",
		"grid4x4.json",
		"ring.json",
		"rush_hour.json",
	}

	for _, file := range scenarios {
		fmt.Printf("\n=== Analyzing %s ===\n", file)
		analyzeScenario(filepath.Join("scenarios", file))
	}
}

func analyzeScenario(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var cfg engine.ScenarioConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", cfg.Name)
	fmt.Printf("Network: %s\n", cfg.Network.Kind)

	network, err := scenario.BuildNetwork(cfg.Network)
	if err != nil {
		fmt.Printf("Error building network: %v\n", err)
		return
	}

	fmt.Printf("Intersections: %d\n", network.NumIntersections())
	fmt.Printf("Roads: %d\n", network.NumRoads())

	// Total spawn pressure across all spawners
	totalRate := 0.0
	for _, sp := range cfg.Spawners {
		totalRate += sp.Rate
	}
	fmt.Printf("Spawners: %d (%.2f vehicles/second, %.0f/hour total)\n",
		len(cfg.Spawners), totalRate, totalRate*3600)
	fmt.Printf("Signals: %d\n", len(cfg.Signals))

	// Expected steady-state population: arrival rate times mean trip
	// time (Little's law), trip time estimated from the mean shortest
	// path length at the mean spawn speed.
	if len(cfg.Spawners) > 0 {
		meanTrip := estimateMeanTripSeconds(network, cfg.Spawners)
		if meanTrip > 0 {
			fmt.Printf("Estimated mean trip: %.0fs\n", meanTrip)
			fmt.Printf("Estimated steady-state vehicles: %.1f\n", totalRate*meanTrip)
		}
	}

	// Highlight spawn points that can never route anywhere
	deadEnds := 0
	for _, sp := range cfg.Spawners {
		if network.Intersection(sp.Intersection) == nil {
			fmt.Printf("⚠️  WARNING: spawner references unknown intersection %d\n", sp.Intersection)
			continue
		}
		if reachableDestinations(network, sp.Intersection) == 0 {
			fmt.Printf("⚠️  WARNING: spawner at intersection %d cannot reach any destination\n", sp.Intersection)
			deadEnds++
		}
	}
	if deadEnds == 0 && len(cfg.Spawners) > 0 {
		fmt.Printf("✅ All spawn points can reach a destination\n")
	}
}

// estimateMeanTripSeconds averages road-length-weighted shortest paths
// from each spawn point to each destination, at the spawner's mean speed.
func estimateMeanTripSeconds(network *engine.RoadNetwork, spawners []engine.SpawnerConfig) float64 {
	totalSeconds := 0.0
	trips := 0

	for _, sp := range spawners {
		meanSpeedKmh := (sp.SpeedMin + sp.SpeedMax) / 2
		if meanSpeedKmh <= 0 {
			continue
		}
		meanSpeedMs := meanSpeedKmh * 1000 / 3600

		for _, in := range network.Intersections() {
			if !in.IsDestination || in.ID == sp.Intersection {
				continue
			}
			path := engine.FindShortestPath(network, sp.Intersection, in.ID)
			if len(path) < 2 {
				continue
			}

			meters := 0.0
			for i := 0; i < len(path)-1; i++ {
				if road := network.RoadBetween(path[i], path[i+1]); road != nil {
					meters += road.Length
				}
			}
			totalSeconds += meters / meanSpeedMs
			trips++
		}
	}

	if trips == 0 {
		return 0
	}
	return totalSeconds / float64(trips)
}

// reachableDestinations counts destination-eligible intersections a spawn
// point can route to.
func reachableDestinations(network *engine.RoadNetwork, from int) int {
	count := 0
	for _, in := range network.Intersections() {
		if !in.IsDestination || in.ID == from {
			continue
		}
		if path := engine.FindShortestPath(network, from, in.ID); len(path) > 0 {
			count++
		}
	}
	return count
}
