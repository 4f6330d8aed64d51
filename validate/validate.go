// Command validate provides a small CLI that validates scenario JSON
// files in the ../scenarios directory. It checks:
//   - JSON structure and required fields
//   - Network kind and grid dimensions
//   - Spawner rates and speed ranges
//   - Signal phase shapes and the 1 second duration floor
//   - Intersection references against the built network
//   - Reachability: every spawn point can reach at least one destination
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/scenario"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateScenario loads and validates a single scenario JSON file.
// It performs structural checks, reference validation against the built
// network, and reachability analysis for spawn points.
func validateScenario(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var cfg engine.ScenarioConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateScenarioConfig(&cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Build the network to validate references against real intersection ids
	network, err := scenario.BuildNetwork(cfg.Network)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to build network: %v", err))
		return result
	}

	for i, sp := range cfg.Spawners {
		if network.Intersection(sp.Intersection) == nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Spawner %d references unknown intersection %d", i, sp.Intersection))
		}
	}

	for i, sig := range cfg.Signals {
		if network.Intersection(sig.Intersection) == nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Signal %d references unknown intersection %d", i, sig.Intersection))
			continue
		}
		for j, phase := range sig.Phases {
			for _, approach := range phase.Approaches {
				if network.Intersection(approach) == nil {
					result.Valid = false
					result.Errors = append(result.Errors, fmt.Sprintf("Signal %d phase %d references unknown approach %d", i, j, approach))
				}
			}
		}
	}

	// Reachability validation - every spawn point must reach a destination
	if result.Valid {
		reachability := validateReachability(network, cfg.Spawners)
		result.Valid = reachability.Valid
		result.Errors = append(result.Errors, reachability.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Network: %s (%d intersections, %d roads)",
			cfg.Network.Kind, network.NumIntersections(), network.NumRoads()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Spawners: %d", len(cfg.Spawners)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Signals: %d", len(cfg.Signals)))
		window := cfg.WindowSeconds
		if window == 0 {
			window = engine.DefaultWindowSeconds
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Monitor window: %.0fs", window))
	}

	return result
}

// validateReachability checks that every spawn point can reach at least
// one destination-eligible intersection other than itself. Spawners at
// dead ends would only ever produce idle vehicles.
func validateReachability(network *engine.RoadNetwork, spawners []engine.SpawnerConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	var destinations []int
	for _, in := range network.Intersections() {
		if in.IsDestination {
			destinations = append(destinations, in.ID)
		}
	}

	if len(destinations) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "No destination-eligible intersections in network")
		return result
	}

	unreachable := []string{}
	for _, sp := range spawners {
		reachable := 0
		for _, dest := range destinations {
			if dest == sp.Intersection {
				continue
			}
			if path := engine.FindShortestPath(network, sp.Intersection, dest); len(path) > 0 {
				reachable++
			}
		}
		if reachable == 0 {
			unreachable = append(unreachable, fmt.Sprintf("Spawner at intersection %d", sp.Intersection))
		}
	}

	if len(unreachable) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Reachability failure: %d/%d spawn points cannot reach any destination", len(unreachable), len(spawners)))
		for _, sp := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Dead end: %s", sp))
		}
	} else if len(spawners) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachability: All %d spawn points reach a destination", len(spawners)))
	}

	return result
}

// main scans ../scenarios for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	scenarioDir := "../scenarios"
	files, err := filepath.Glob(filepath.Join(scenarioDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateScenario(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}
