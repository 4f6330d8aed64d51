package main

import (
	"math"
	"os"
	"testing"

	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/scenario"
)

func writeTempScenario(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "test_scenario_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write scenario: %v", err)
	}
	tmpfile.Close()

	return tmpfile.Name()
}

func TestAnalyzeScenario_ValidFile(t *testing.T) {
	validScenario := `{
		"name": "Test Scenario",
		"description": "Test configuration",
		"network": {"kind": "classic"},
		"spawners": [
			{"intersection": 0, "rate": 0.2, "speed_min_kmh": 30, "speed_max_kmh": 60}
		],
		"signals": [
			{"intersection": 2, "phases": [
				{"approaches": [0], "duration_seconds": 10}
			]}
		]
	}`

	path := writeTempScenario(t, validScenario)

	// Test that analyzeScenario doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeScenario panicked: %v", r)
		}
	}()

	analyzeScenario(path)
}

func TestAnalyzeScenario_InvalidFile(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeScenario panicked with invalid file: %v", r)
		}
	}()

	analyzeScenario("/non/existent/file.json")
}

func TestAnalyzeScenario_InvalidJSON(t *testing.T) {
	path := writeTempScenario(t, `{"name": "test", invalid json}`)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeScenario panicked with invalid JSON: %v", r)
		}
	}()

	analyzeScenario(path)
}

func TestAnalyzeScenario_UnknownNetwork(t *testing.T) {
	path := writeTempScenario(t, `{
		"name": "Test",
		"network": {"kind": "hexagon"},
		"spawners": []
	}`)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeScenario panicked with unknown network: %v", r)
		}
	}()

	analyzeScenario(path)
}

func TestEstimateMeanTripSeconds_LineNetwork(t *testing.T) {
	// A -> B -> C, 100m each. Only C is a destination, so the single
	// trip from A is 200m at a mean speed of 45 km/h (12.5 m/s) = 16s.
	network := engine.NewRoadNetwork()
	a := network.AddIntersection("A", 0, 0)
	b := network.AddIntersection("B", 100, 0)
	c := network.AddIntersection("C", 200, 0)
	a.IsDestination = false
	b.IsDestination = false

	if _, err := network.AddRoad(a.ID, b.ID, 100, 50, 1); err != nil {
		t.Fatalf("AddRoad failed: %v", err)
	}
	if _, err := network.AddRoad(b.ID, c.ID, 100, 50, 1); err != nil {
		t.Fatalf("AddRoad failed: %v", err)
	}

	spawners := []engine.SpawnerConfig{
		{Intersection: a.ID, Rate: 0.5, SpeedMin: 30, SpeedMax: 60},
	}

	got := estimateMeanTripSeconds(network, spawners)
	if math.Abs(got-16.0) > 1e-9 {
		t.Errorf("Expected mean trip 16s, got %g", got)
	}
}

func TestEstimateMeanTripSeconds_NoTrips(t *testing.T) {
	network := engine.NewRoadNetwork()
	network.AddIntersection("A", 0, 0)

	spawners := []engine.SpawnerConfig{
		{Intersection: 0, Rate: 0.5, SpeedMin: 30, SpeedMax: 60},
	}

	if got := estimateMeanTripSeconds(network, spawners); got != 0 {
		t.Errorf("Expected 0 for network without trips, got %g", got)
	}
}

func TestReachableDestinations(t *testing.T) {
	network := scenario.BuildClassic()

	// Classic network is fully connected; every other intersection is a
	// reachable destination.
	got := reachableDestinations(network, 0)
	want := network.NumIntersections() - 1
	if got != want {
		t.Errorf("Expected %d reachable destinations from 0, got %d", want, got)
	}
}

func TestReachableDestinations_DeadEnd(t *testing.T) {
	network := engine.NewRoadNetwork()
	a := network.AddIntersection("A", 0, 0)
	b := network.AddIntersection("B", 100, 0)
	if _, err := network.AddRoad(a.ID, b.ID, 100, 50, 1); err != nil {
		t.Fatalf("AddRoad failed: %v", err)
	}

	if got := reachableDestinations(network, b.ID); got != 0 {
		t.Errorf("Expected 0 reachable destinations from sink, got %d", got)
	}
}
