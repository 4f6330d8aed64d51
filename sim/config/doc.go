// Package config provides scenario configuration management for the
// traffic simulation.
//
// The config package handles:
//   - Loading scenario configurations from JSON files
//   - Configuration validation and caching
//   - Default scenario management
//   - Scenario discovery and listing
//
// Configuration Format:
//
// Scenarios are stored as JSON files in the scenarios directory. Each
// scenario selects a builtin network builder (classic, grid, or ring)
// and parameterizes it, then declares the spawners and phased signal
// controllers to install, the traffic-monitor window, and an optional
// random seed for reproducible runs.
//
// Usage:
//
//	manager, err := config.NewManager("scenarios")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific scenario
//	cfg, err := manager.LoadConfig("rush_hour")
//
//	// Get the default scenario
//	defaultCfg := manager.GetDefault()
//
//	// List available scenarios
//	scenarios, err := manager.ListConfigs()
//
// Validation:
//
// All scenarios are validated for network kind and grid dimensions,
// non-negative spawn rates with sane speed ranges, and signal phases at
// or above the engine's minimum phase duration. Intersection references
// are checked later, at build time, against the constructed network.
package config
