package service

import (
	"context"
	"time"

	"github.com/pmajewski/trafficflow/sim/engine"
)

// SimService defines all simulation-related operations
type SimService interface {
	// Run Management
	CreateRun(ctx context.Context, scenarioName string) (*RunInfo, error)
	GetRun(ctx context.Context, runID string) (*RunInfo, error)
	ListRuns(ctx context.Context) ([]*RunInfo, error)
	DeleteRun(ctx context.Context, runID string) error

	// Simulation Operations
	Step(ctx context.Context, runID string, dt float64, ticks int) (*StepResult, error)
	AdjustSignalPhase(ctx context.Context, runID string, intersectionID, phaseIndex int, delta float64) (*SignalAdjustResult, error)
	SetSpawnerRate(ctx context.Context, runID string, intersectionID int, rate float64) (*SpawnerAdjustResult, error)

	// Simulation State
	GetState(ctx context.Context, runID string) (*engine.SimulationState, error)
	IntersectionRates(ctx context.Context, runID string, intersectionID int) (*RatesResult, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, scenarioName string) (*engine.ScenarioConfig, error)
	SaveScenario(ctx context.Context, scenarioName string, cfg *engine.ScenarioConfig) error
}

// RunManager defines run storage operations
type RunManager interface {
	Create(id string, cfg *engine.ScenarioConfig) (*Run, error)
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ScenarioManager handles scenario configuration loading
type ScenarioManager interface {
	LoadConfig(name string) (*engine.ScenarioConfig, error)
	ListConfigs() ([]*ScenarioInfo, error)
	GetDefault() *engine.ScenarioConfig
	SaveConfig(name string, cfg *engine.ScenarioConfig) error
}

// Run represents one live simulation instance
type Run struct {
	ID             string
	Sim            *engine.Simulation
	Config         *engine.ScenarioConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
