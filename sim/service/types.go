package service

import (
	"time"

	"github.com/pmajewski/trafficflow/sim/engine"
)

// RunInfo provides information about a simulation run
type RunInfo struct {
	ID             string                  `json:"id"`
	ScenarioName   string                  `json:"scenario_name"`
	CreatedAt      time.Time               `json:"created_at"`
	LastAccessedAt time.Time               `json:"last_accessed_at"`
	State          *engine.SimulationState `json:"state"`
	Scenario       *engine.ScenarioConfig  `json:"scenario"`
}

// StepResult contains the result of advancing a run
type StepResult struct {
	Ticks       int                     `json:"ticks"`
	Dt          float64                 `json:"dt"`
	ElapsedTime float64                 `json:"elapsed_time"`
	State       *engine.SimulationState `json:"state"`
}

// SignalAdjustResult reports a signal phase duration change
type SignalAdjustResult struct {
	IntersectionID int                  `json:"intersection_id"`
	PhaseIndex     int                  `json:"phase_index"`
	Duration       float64              `json:"duration"` // post-clamp duration
	Phases         []engine.SignalPhase `json:"phases"`
}

// SpawnerAdjustResult reports a spawner rate change
type SpawnerAdjustResult struct {
	IntersectionID int     `json:"intersection_id"`
	Rate           float64 `json:"rate"` // post-clamp rate, vehicles per second
}

// RatesResult is the monitor readout for one intersection
type RatesResult struct {
	IntersectionID int                    `json:"intersection_id"`
	WindowSeconds  float64                `json:"window_seconds"`
	Total          int                    `json:"total"`
	Directions     []engine.DirectionRate `json:"directions"`
}

// ScenarioInfo provides information about a scenario configuration
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // The identifier to use for run creation
	Name        string `json:"name"`        // Display name
	Description string `json:"description"`
	NetworkKind string `json:"network_kind"`
	Spawners    int    `json:"spawners"`
	Signals     int    `json:"signals"`
}
