package run

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/scenario"
	"github.com/pmajewski/trafficflow/sim/service"
)

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
)

// Manager handles simulation run lifecycle
type Manager struct {
	runs  map[string]*service.Run
	genID func() string
	mu    sync.RWMutex
}

// NewManager creates a new run manager
func NewManager() *Manager {
	return &Manager{
		runs:  make(map[string]*service.Run),
		genID: generateRunID,
	}
}

// Create builds a simulation from the scenario config and registers it
// under the given ID. An empty ID gets a generated 4-character one;
// generated IDs redraw on collision instead of failing the create.
func (m *Manager) Create(id string, cfg *engine.ScenarioConfig) (*service.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		for {
			id = m.genID()
			if _, exists := m.runs[strings.ToLower(id)]; !exists {
				break
			}
		}
	} else if _, exists := m.runs[strings.ToLower(id)]; exists {
		// Explicit IDs fail on conflict (case-insensitive)
		return nil, ErrRunAlreadyExists
	}

	sim, err := scenario.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build simulation: %w", err)
	}

	run := &service.Run{
		ID:             id,
		Sim:            sim,
		Config:         cfg,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.runs[strings.ToLower(id)] = run
	return run, nil
}

// Get retrieves a run by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[strings.ToLower(id)]
	if !exists {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// List returns all active runs
func (m *Manager) List() []*service.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Run, 0, len(m.runs))
	for _, run := range m.runs {
		result = append(result, run)
	}
	return result
}

// Delete removes a run
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.runs[lowerID]; !exists {
		return ErrRunNotFound
	}
	delete(m.runs, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a run
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[strings.ToLower(id)]
	if !exists {
		return ErrRunNotFound
	}
	run.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredRuns removes runs that haven't been accessed in the
// given duration and returns how many were removed
func (m *Manager) CleanupExpiredRuns(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, run := range m.runs {
		if run.LastAccessedAt.Before(cutoff) {
			delete(m.runs, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active runs
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// generateRunID generates a random 4-character run ID
func generateRunID() string {
	// 2 random bytes, 4 hex characters
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
