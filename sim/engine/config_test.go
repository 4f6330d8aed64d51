package engine

import (
	"strings"
	"testing"
)

func createValidScenarioConfig() *ScenarioConfig {
	return &ScenarioConfig{
		Name:    "test",
		Network: NetworkConfig{Kind: "classic"},
		Spawners: []SpawnerConfig{
			{Intersection: 0, Rate: 0.5, SpeedMin: 30, SpeedMax: 60},
		},
		Signals: []SignalConfig{
			{Intersection: 1, Phases: []SignalPhase{{Approaches: []int{0}, Duration: 10}}},
		},
	}
}

func TestValidateScenarioConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScenarioConfig)
		wantErr string
	}{
		{"valid", func(c *ScenarioConfig) {}, ""},
		{"nil spawners ok", func(c *ScenarioConfig) { c.Spawners = nil }, ""},
		{"missing name", func(c *ScenarioConfig) { c.Name = "" }, "name is required"},
		{"missing kind", func(c *ScenarioConfig) { c.Network.Kind = "" }, "kind is required"},
		{"unknown kind", func(c *ScenarioConfig) { c.Network.Kind = "mesh" }, "unknown network kind"},
		{"grid too small", func(c *ScenarioConfig) {
			c.Network = NetworkConfig{Kind: "grid", Cols: 1, Rows: 3, Spacing: 100}
		}, "at least 2"},
		{"grid bad spacing", func(c *ScenarioConfig) {
			c.Network = NetworkConfig{Kind: "grid", Cols: 3, Rows: 3, Spacing: 0}
		}, "spacing must be positive"},
		{"grid valid", func(c *ScenarioConfig) {
			c.Network = NetworkConfig{Kind: "grid", Cols: 2, Rows: 2, Spacing: 80}
		}, ""},
		{"negative window", func(c *ScenarioConfig) { c.WindowSeconds = -1 }, "window_seconds"},
		{"negative spawn rate", func(c *ScenarioConfig) { c.Spawners[0].Rate = -0.1 }, "rate must not be negative"},
		{"zero speed min", func(c *ScenarioConfig) { c.Spawners[0].SpeedMin = 0 }, "invalid speed range"},
		{"inverted speed range", func(c *ScenarioConfig) {
			c.Spawners[0].SpeedMin = 60
			c.Spawners[0].SpeedMax = 30
		}, "invalid speed range"},
		{"empty signal phases", func(c *ScenarioConfig) { c.Signals[0].Phases = nil }, "phase list is empty"},
		{"phase below floor", func(c *ScenarioConfig) { c.Signals[0].Phases[0].Duration = 0.5 }, "floor"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := createValidScenarioConfig()
			test.mutate(cfg)
			err := ValidateScenarioConfig(cfg)
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("expected error containing %q, got %q", test.wantErr, err.Error())
			}
		})
	}
}

func TestValidateScenarioConfig_Nil(t *testing.T) {
	if err := ValidateScenarioConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
