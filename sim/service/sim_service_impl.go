package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pmajewski/trafficflow/sim/engine"
)

// Step request bounds. A single request may not simulate more than
// MaxStepDt * MaxStepTicks seconds of traffic.
const (
	MaxStepDt    = 10.0
	MaxStepTicks = 10000
)

// simServiceImpl implements the SimService interface
type simServiceImpl struct {
	runs      RunManager
	scenarios ScenarioManager
	mu        sync.RWMutex
}

// NewSimService creates a new simulation service instance
func NewSimService(runs RunManager, scenarios ScenarioManager) SimService {
	return &simServiceImpl{
		runs:      runs,
		scenarios: scenarios,
	}
}

// getScenarioID returns the scenario_id for a given display name, used
// for consistent API responses
func (s *simServiceImpl) getScenarioID(displayName string) string {
	available, err := s.scenarios.ListConfigs()
	if err == nil {
		for _, sc := range available {
			if sc.Name == displayName {
				return sc.ScenarioID
			}
		}
	}
	if displayName == "" {
		return "default"
	}
	return displayName
}

// CreateRun creates a new simulation run
func (s *simServiceImpl) CreateRun(ctx context.Context, scenarioName string) (*RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg *engine.ScenarioConfig
	var err error
	if scenarioName != "" {
		cfg, err = s.scenarios.LoadConfig(scenarioName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				available, listErr := s.scenarios.ListConfigs()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, sc := range available {
						ids = append(ids, sc.ScenarioID)
					}
					return nil, fmt.Errorf("scenario '%s' not found. Available scenarios: %v", scenarioName, ids)
				}
				return nil, fmt.Errorf("scenario '%s' not found. Use /api/scenarios to list available scenarios", scenarioName)
			}
			return nil, fmt.Errorf("failed to load scenario %s: %w", scenarioName, err)
		}
	} else {
		cfg = s.scenarios.GetDefault()
	}

	// Let the run manager generate a proper 4-character ID
	run, err := s.runs.Create("", cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	scenarioID := scenarioName
	if scenarioID == "" {
		scenarioID = s.getScenarioID(cfg.Name)
	}

	return &RunInfo{
		ID:             run.ID,
		ScenarioName:   scenarioID,
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
		State:          run.Sim.Snapshot(),
		Scenario:       run.Config,
	}, nil
}

// GetRun retrieves run information
func (s *simServiceImpl) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run not found: %w", err)
	}

	s.runs.UpdateLastAccessed(runID)

	return &RunInfo{
		ID:             run.ID,
		ScenarioName:   s.getScenarioID(run.Config.Name),
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
		State:          run.Sim.Snapshot(),
		Scenario:       run.Config,
	}, nil
}

// ListRuns returns all active runs
func (s *simServiceImpl) ListRuns(ctx context.Context) ([]*RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.runs.List()
	result := make([]*RunInfo, 0, len(runs))

	for _, run := range runs {
		result = append(result, &RunInfo{
			ID:             run.ID,
			ScenarioName:   s.getScenarioID(run.Config.Name),
			CreatedAt:      run.CreatedAt,
			LastAccessedAt: run.LastAccessedAt,
			State:          run.Sim.Snapshot(),
			Scenario:       run.Config,
		})
	}

	return result, nil
}

// DeleteRun removes a run
func (s *simServiceImpl) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runs.Delete(runID)
}

// Step advances a run by ticks steps of dt seconds each
func (s *simServiceImpl) Step(ctx context.Context, runID string, dt float64, ticks int) (*StepResult, error) {
	if dt <= 0 || dt > MaxStepDt {
		return nil, fmt.Errorf("dt must be in (0, %g], got %g", MaxStepDt, dt)
	}
	if ticks < 1 || ticks > MaxStepTicks {
		return nil, fmt.Errorf("ticks must be in [1, %d], got %d", MaxStepTicks, ticks)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run not found: %w", err)
	}
	s.runs.UpdateLastAccessed(runID)

	run.Sim.StepN(dt, ticks)

	return &StepResult{
		Ticks:       ticks,
		Dt:          dt,
		ElapsedTime: run.Sim.Elapsed(),
		State:       run.Sim.Snapshot(),
	}, nil
}

// AdjustSignalPhase changes one phase duration on a run's signal
// controller by delta seconds. The engine clamps the result to the
// minimum phase duration; the clamped value is returned.
func (s *simServiceImpl) AdjustSignalPhase(ctx context.Context, runID string, intersectionID, phaseIndex int, delta float64) (*SignalAdjustResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run not found: %w", err)
	}
	s.runs.UpdateLastAccessed(runID)

	in := run.Sim.Network.Intersection(intersectionID)
	if in == nil {
		return nil, fmt.Errorf("%w: id=%d", engine.ErrUnknownIntersection, intersectionID)
	}
	controller, ok := in.Signal.(*engine.SignalController)
	if !ok {
		return nil, fmt.Errorf("intersection %d has no phased signal controller", intersectionID)
	}

	duration, err := controller.AdjustPhaseDuration(phaseIndex, delta)
	if err != nil {
		return nil, err
	}

	return &SignalAdjustResult{
		IntersectionID: intersectionID,
		PhaseIndex:     phaseIndex,
		Duration:       duration,
		Phases:         controller.Phases(),
	}, nil
}

// SetSpawnerRate changes the arrival rate of the spawner at an
// intersection. The engine clamps negative rates to zero; the clamped
// value is returned.
func (s *simServiceImpl) SetSpawnerRate(ctx context.Context, runID string, intersectionID int, rate float64) (*SpawnerAdjustResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run not found: %w", err)
	}
	s.runs.UpdateLastAccessed(runID)

	for _, sp := range run.Sim.Fleet.Spawners() {
		if sp.IntersectionID == intersectionID {
			return &SpawnerAdjustResult{
				IntersectionID: intersectionID,
				Rate:           sp.SetRate(rate),
			}, nil
		}
	}
	return nil, fmt.Errorf("intersection %d has no spawner", intersectionID)
}

// GetState retrieves the current simulation state snapshot
func (s *simServiceImpl) GetState(ctx context.Context, runID string) (*engine.SimulationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run not found: %w", err)
	}
	s.runs.UpdateLastAccessed(runID)

	return run.Sim.Snapshot(), nil
}

// IntersectionRates returns the in-window traffic counts for one
// intersection of a run
func (s *simServiceImpl) IntersectionRates(ctx context.Context, runID string, intersectionID int) (*RatesResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run not found: %w", err)
	}
	s.runs.UpdateLastAccessed(runID)

	if run.Sim.Network.Intersection(intersectionID) == nil {
		return nil, fmt.Errorf("%w: id=%d", engine.ErrUnknownIntersection, intersectionID)
	}

	result := &RatesResult{
		IntersectionID: intersectionID,
		WindowSeconds:  run.Sim.Monitor.WindowSeconds(),
	}
	for key, count := range run.Sim.Monitor.RatesForIntersection(intersectionID) {
		result.Total += count
		result.Directions = append(result.Directions, engine.DirectionRate{
			From:  key.From,
			To:    key.To,
			Count: count,
		})
	}
	engine.SortDirectionRates(result.Directions)
	return result, nil
}

// ListScenarios returns available scenario configurations
func (s *simServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListConfigs()
}

// LoadScenario loads a specific scenario configuration
func (s *simServiceImpl) LoadScenario(ctx context.Context, scenarioName string) (*engine.ScenarioConfig, error) {
	return s.scenarios.LoadConfig(scenarioName)
}

// SaveScenario saves a scenario configuration to disk
func (s *simServiceImpl) SaveScenario(ctx context.Context, scenarioName string, cfg *engine.ScenarioConfig) error {
	return s.scenarios.SaveConfig(scenarioName, cfg)
}
