package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.NumInputs != len(cfg.Critter.Sensors) || cfg.Derived.NumInputs == 0 {
		t.Errorf("NumInputs = %d, sensors = %d", cfg.Derived.NumInputs, len(cfg.Critter.Sensors))
	}
	if cfg.Derived.NumOutputs != len(cfg.Critter.Actuators) {
		t.Errorf("NumOutputs = %d, actuators = %d", cfg.Derived.NumOutputs, len(cfg.Critter.Actuators))
	}
	if cfg.Derived.NumUnits != 19 {
		t.Errorf("NumUnits = %d, want 19", cfg.Derived.NumUnits)
	}
	if cfg.Derived.Survivors != 30 {
		t.Errorf("Survivors = %d, want 30", cfg.Derived.Survivors)
	}
	// Empty unit_choices falls back to the founder units.
	if len(cfg.Mutation.UnitChoices) != len(cfg.Brain.Units) {
		t.Errorf("UnitChoices = %d, want %d", len(cfg.Mutation.UnitChoices), len(cfg.Brain.Units))
	}
	if cfg.Derived.DT32 != float32(cfg.Simulation.DT) {
		t.Errorf("DT32 = %v", cfg.Derived.DT32)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	overlay := []byte("simulation:\n  population: 10\n  seed: 7\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Population != 10 || cfg.Simulation.Seed != 7 {
		t.Errorf("overlay not applied: %+v", cfg.Simulation)
	}
	if cfg.Simulation.TicksPerRun != 300 {
		t.Errorf("default lost: ticks_per_run = %d", cfg.Simulation.TicksPerRun)
	}
	if cfg.Derived.Survivors != 5 {
		t.Errorf("Survivors = %d, want 5", cfg.Derived.Survivors)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown unit", "brain:\n  units:\n    - { kind: neuron }\n"},
		{"unknown sensor layer", "critter:\n  sensors:\n    - { layer: water }\n"},
		{"blur before source", "layers:\n  - { name: a, kind: blur, source: b }\n  - { name: b, kind: uniform }\n"},
		{"bad fraction", "simulation:\n  survivor_fraction: 0\n"},
		{"missing fitness layer", "simulation:\n  fitness_layer: \"\"\n"},
		{"unknown nested unit", "brain:\n  units:\n    - { kind: circuit, units: [ { kind: neuron } ] }\n"},
		{"negative nested cap", "brain:\n  nested_think_cap: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written file: %v", err)
	}
	if back.Simulation != cfg.Simulation || len(back.Layers) != len(cfg.Layers) {
		t.Error("written config does not load back the same")
	}
}

func TestMustInitAndCfg(t *testing.T) {
	MustInit("")
	if Cfg().Habitat.Width == 0 {
		t.Error("Cfg returned empty habitat")
	}
}

func TestRefreshRecomputesDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg.Simulation.SurvivorFraction = 0.25
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if cfg.Derived.Survivors != 15 {
		t.Errorf("Survivors = %d, want 15", cfg.Derived.Survivors)
	}

	cfg.Simulation.SurvivorFraction = 0
	if err := cfg.Refresh(); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}
