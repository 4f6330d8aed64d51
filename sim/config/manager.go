package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/service"
)

var (
	ErrConfigNotFound = errors.New("scenario not found")
	ErrInvalidConfig  = errors.New("invalid scenario")
)

// Manager handles scenario configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.ScenarioConfig
	configs       map[string]*engine.ScenarioConfig
	mu            sync.RWMutex
}

// NewManager creates a new scenario configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("scenario directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.ScenarioConfig),
	}

	m.mu.Lock()
	err := m.loadDefaultConfigLocked()
	m.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to load default scenario: %w", err)
	}

	return m, nil
}

// LoadConfig loads a scenario by name
func (m *Manager) LoadConfig(name string) (*engine.ScenarioConfig, error) {
	m.mu.RLock()
	if cfg, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadConfigLocked(name)
}

// loadConfigLocked reads, validates, and caches a scenario file. The
// caller must hold the write lock.
func (m *Manager) loadConfigLocked(name string) (*engine.ScenarioConfig, error) {
	// Double-check after acquiring write lock
	if cfg, exists := m.configs[name]; exists {
		return cfg, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	configPath := filepath.Join(m.configDir, filename)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var cfg engine.ScenarioConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := engine.ValidateScenarioConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[name] = &cfg
	return &cfg, nil
}

// ListConfigs returns information about all available scenarios
func (m *Manager) ListConfigs() ([]*service.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var scenarios []*service.ScenarioInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		cfg, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid scenarios
			continue
		}

		scenarios = append(scenarios, &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  name, // This is the identifier to use for run creation
			Name:        cfg.Name,
			Description: cfg.Description,
			NetworkKind: cfg.Network.Kind,
			Spawners:    len(cfg.Spawners),
			Signals:     len(cfg.Signals),
		})
	}

	return scenarios, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *engine.ScenarioConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default scenario by name
func (m *Manager) SetDefault(name string) error {
	cfg, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = cfg
	return nil
}

// RefreshCache reloads all cached scenarios from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configs = make(map[string]*engine.ScenarioConfig)

	return m.loadDefaultConfigLocked()
}

// loadDefaultConfigLocked picks the default scenario: classic.json if
// present, else the first loadable file in the directory, else a
// built-in minimal scenario. The caller must hold the write lock.
func (m *Manager) loadDefaultConfigLocked() error {
	if cfg, err := m.loadConfigLocked("classic"); err == nil {
		m.defaultConfig = cfg
		return nil
	}

	entries, err := os.ReadDir(m.configDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			cfg, loadErr := m.loadConfigLocked(strings.TrimSuffix(entry.Name(), ".json"))
			if loadErr != nil {
				continue
			}
			m.defaultConfig = cfg
			return nil
		}
	}

	m.defaultConfig = m.createMinimalConfig()
	return nil
}

// SaveConfig saves a scenario to disk
func (m *Manager) SaveConfig(name string, cfg *engine.ScenarioConfig) error {
	if err := engine.ValidateScenarioConfig(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	configPath := filepath.Join(m.configDir, filename)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = cfg
	m.mu.Unlock()

	return nil
}

// createMinimalConfig creates a minimal valid scenario
func (m *Manager) createMinimalConfig() *engine.ScenarioConfig {
	return &engine.ScenarioConfig{
		Name:        "default",
		Description: "Default minimal scenario on the classic network",
		Network:     engine.NetworkConfig{Kind: "classic"},
		Spawners: []engine.SpawnerConfig{
			{Intersection: 0, Rate: 0.2, SpeedMin: 30, SpeedMax: 60},
		},
	}
}
