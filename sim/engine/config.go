package engine

import "fmt"

// ScenarioConfig describes a runnable simulation scenario loaded from
// JSON: which builtin network to build, the monitor window, the random
// seed, and the spawners and signals to install. Scenario files
// parameterize builtin network builders; they do not serialize
// networks.
type ScenarioConfig struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Network     NetworkConfig `json:"network"`

	// WindowSeconds is the traffic-monitor window; zero means the
	// default of 60 seconds.
	WindowSeconds float64 `json:"window_seconds,omitempty"`

	// Seed reseeds the fleet when non-zero, making the run
	// reproducible.
	Seed int64 `json:"seed,omitempty"`

	Spawners []SpawnerConfig `json:"spawners"`
	Signals  []SignalConfig  `json:"signals,omitempty"`
}

// NetworkConfig selects and parameterizes a builtin network builder.
type NetworkConfig struct {
	// Kind is "classic", "grid", or "ring".
	Kind string `json:"kind"`

	// Grid parameters; ignored for other kinds.
	Cols    int     `json:"cols,omitempty"`
	Rows    int     `json:"rows,omitempty"`
	Spacing float64 `json:"spacing,omitempty"`
	TwoWay  bool    `json:"two_way,omitempty"`
}

// SpawnerConfig places one Poisson spawner.
type SpawnerConfig struct {
	Intersection int     `json:"intersection"`
	Rate         float64 `json:"rate"` // vehicles per second
	SpeedMin     float64 `json:"speed_min_kmh"`
	SpeedMax     float64 `json:"speed_max_kmh"`
}

// SignalConfig installs one phased signal controller.
type SignalConfig struct {
	Intersection int           `json:"intersection"`
	Phases       []SignalPhase `json:"phases"`
}

// DefaultWindowSeconds is the monitor window used when a scenario does
// not specify one.
const DefaultWindowSeconds = 60.0

// ValidateScenarioConfig checks a scenario's structural invariants:
// network kind, grid dimensions, spawner rates and speed ranges, and
// signal phase shapes. Reference checks against the built network
// (intersection ids) are done at build time, where the network exists.
func ValidateScenarioConfig(cfg *ScenarioConfig) error {
	if cfg == nil {
		return fmt.Errorf("scenario config is nil")
	}
	if cfg.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	switch cfg.Network.Kind {
	case "classic", "ring":
	case "grid":
		if cfg.Network.Cols < 2 || cfg.Network.Rows < 2 {
			return fmt.Errorf("grid network needs cols and rows of at least 2, got %dx%d",
				cfg.Network.Cols, cfg.Network.Rows)
		}
		if cfg.Network.Spacing <= 0 {
			return fmt.Errorf("grid spacing must be positive, got %g", cfg.Network.Spacing)
		}
	case "":
		return fmt.Errorf("network kind is required")
	default:
		return fmt.Errorf("unknown network kind %q", cfg.Network.Kind)
	}

	if cfg.WindowSeconds < 0 {
		return fmt.Errorf("window_seconds must not be negative, got %g", cfg.WindowSeconds)
	}

	for i, sp := range cfg.Spawners {
		if sp.Rate < 0 {
			return fmt.Errorf("spawner %d: rate must not be negative, got %g", i, sp.Rate)
		}
		if sp.SpeedMin <= 0 || sp.SpeedMax < sp.SpeedMin {
			return fmt.Errorf("spawner %d: invalid speed range [%g, %g]", i, sp.SpeedMin, sp.SpeedMax)
		}
	}

	for i, sig := range cfg.Signals {
		if len(sig.Phases) == 0 {
			return fmt.Errorf("signal %d: phase list is empty", i)
		}
		for j, phase := range sig.Phases {
			if phase.Duration < MinPhaseDuration {
				return fmt.Errorf("signal %d phase %d: duration %g is below the %g second floor",
					i, j, phase.Duration, MinPhaseDuration)
			}
		}
	}

	return nil
}
