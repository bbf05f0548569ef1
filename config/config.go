// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Habitat    HabitatConfig    `yaml:"habitat"`
	Layers     []LayerConfig    `yaml:"layers"`
	Critter    CritterConfig    `yaml:"critter"`
	Brain      BrainConfig      `yaml:"brain"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Storage    StorageConfig    `yaml:"storage"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// HabitatConfig holds the grid size shared by all layers.
type HabitatConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LayerConfig describes one named habitat layer. Kind selects which of the
// remaining fields apply.
type LayerConfig struct {
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"` // uniform, noise, blob, blur
	Invert bool    `yaml:"invert,omitempty"`
	Regrow float64 `yaml:"regrow,omitempty"` // per second toward the initial fill

	Value float64     `yaml:"value,omitempty"` // uniform
	Noise NoiseConfig `yaml:"noise,omitempty"`

	Brushes   int `yaml:"brushes,omitempty"` // blob
	BrushSize int `yaml:"brush_size,omitempty"`
	Steps     int `yaml:"steps,omitempty"`

	Source string `yaml:"source,omitempty"` // blur
	Depth  int    `yaml:"depth,omitempty"`
	Wrap   bool   `yaml:"wrap,omitempty"`
}

// NoiseConfig holds FBM noise parameters.
type NoiseConfig struct {
	Scale      float64 `yaml:"scale,omitempty"`
	Octaves    int     `yaml:"octaves,omitempty"`
	Lacunarity float64 `yaml:"lacunarity,omitempty"`
	Gain       float64 `yaml:"gain,omitempty"`
	Contrast   float64 `yaml:"contrast,omitempty"` // exponent; higher = sparser patches
}

// CritterConfig holds the founder body plan.
type CritterConfig struct {
	MaxSpeed     float64          `yaml:"max_speed"`
	ImpetusDecay float64          `yaml:"impetus_decay"`
	Sensors      []SensorConfig   `yaml:"sensors"`
	Actuators    []ActuatorConfig `yaml:"actuators"`
}

// SensorConfig describes a layer sensor.
type SensorConfig struct {
	Layer  string `yaml:"layer"`
	DX     int    `yaml:"dx"`
	DY     int    `yaml:"dy"`
	Invert bool   `yaml:"invert,omitempty"`
}

// ActuatorConfig describes a move actuator.
type ActuatorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// BrainConfig holds the founder circuit layout.
type BrainConfig struct {
	Units                       []UnitConfig `yaml:"units"`
	InitialConnectionsPerOutput int          `yaml:"initial_connections_per_output"`
	NestedThinkCap              int          `yaml:"nested_think_cap"` // per delivery into a circuit unit; 0 = parent budget
}

// UnitConfig describes Count units of one kind. A circuit unit is a
// nested brain with its own boundary and units.
type UnitConfig struct {
	Kind  string `yaml:"kind"` // simple, and, xor, inverter, diode, circuit
	Arity int    `yaml:"arity,omitempty"`
	Sign  bool   `yaml:"sign,omitempty"`
	Count int    `yaml:"count,omitempty"`

	// Circuit only
	Inputs      int          `yaml:"inputs,omitempty"`      // default 1
	Outputs     int          `yaml:"outputs,omitempty"`     // default 1
	Connections int          `yaml:"connections,omitempty"` // initial connections per output
	Units       []UnitConfig `yaml:"units,omitempty"`
}

// MutationConfig holds structural mutation rates and replacement pools.
// Empty pools default to the founder's own parts.
type MutationConfig struct {
	ConnectionReplaceChance float64          `yaml:"connection_replace_chance"`
	UnitReplaceChance       float64          `yaml:"unit_replace_chance"`
	UnitChoices             []UnitConfig     `yaml:"unit_choices"`
	SensorReplaceChance     float64          `yaml:"sensor_replace_chance"`
	SensorChoices           []SensorConfig   `yaml:"sensor_choices"`
	ActuatorReplaceChance   float64          `yaml:"actuator_replace_chance"`
	ActuatorChoices         []ActuatorConfig `yaml:"actuator_choices"`
}

// SimulationConfig holds driver loop parameters.
type SimulationConfig struct {
	Seed              int64   `yaml:"seed"`
	Population        int     `yaml:"population"`
	TicksPerRun       int     `yaml:"ticks_per_run"`
	DT                float64 `yaml:"dt"`
	MaxSignalsPerTick int     `yaml:"max_signals_per_tick"` // 0 drains; risky with feedback loops
	SurvivorFraction  float64 `yaml:"survivor_fraction"`
	MaxGenerations    int     `yaml:"max_generations"` // 0 = unlimited
	FitnessLayer      string  `yaml:"fitness_layer"`
	GrazeRate         float64 `yaml:"graze_rate"` // per second
	GrazeRadius       int     `yaml:"graze_radius"`
	ParallelThreshold int     `yaml:"parallel_threshold"` // use workers above this population
	Workers           int     `yaml:"workers"`            // 0 = GOMAXPROCS
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	OutputDir string `yaml:"output_dir"` // empty disables file output
	LogEvery  int    `yaml:"log_every"`  // generations between log lines
}

// StorageConfig selects the template store.
type StorageConfig struct {
	Kind string `yaml:"kind"` // memory, sqlite
	Path string `yaml:"path"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32 // Simulation.DT as float32
	NumInputs  int     // len(Critter.Sensors)
	NumOutputs int     // len(Critter.Actuators)
	NumUnits   int     // founder brain unit count
	Survivors  int     // survivors kept per generation
}

var (
	unitKinds  = []string{"simple", "and", "xor", "inverter", "diode", "circuit"}
	layerKinds = []string{"uniform", "noise", "blob", "blur"}
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file. Lists replace the
		// defaults wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Refresh(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Refresh recomputes derived values and revalidates. Call it after
// changing fields of a loaded config.
func (c *Config) Refresh() error {
	c.computeDerived()
	return c.validate()
}

// computeDerived fills defaults and calculates derived values.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.NumInputs = len(c.Critter.Sensors)
	c.Derived.NumOutputs = len(c.Critter.Actuators)

	for i := range c.Brain.Units {
		if c.Brain.Units[i].Count == 0 {
			c.Brain.Units[i].Count = 1
		}
	}
	c.Derived.NumUnits = 0
	for _, u := range c.Brain.Units {
		c.Derived.NumUnits += u.Count
	}

	if len(c.Mutation.UnitChoices) == 0 {
		c.Mutation.UnitChoices = slices.Clone(c.Brain.Units)
	}
	if len(c.Mutation.SensorChoices) == 0 {
		c.Mutation.SensorChoices = slices.Clone(c.Critter.Sensors)
	}
	if len(c.Mutation.ActuatorChoices) == 0 {
		c.Mutation.ActuatorChoices = slices.Clone(c.Critter.Actuators)
	}

	survivors := int(float64(c.Simulation.Population) * c.Simulation.SurvivorFraction)
	c.Derived.Survivors = max(survivors, 1)

	if c.Telemetry.LogEvery <= 0 {
		c.Telemetry.LogEvery = 1
	}
}

func (c *Config) validate() error {
	if c.Habitat.Width <= 0 || c.Habitat.Height <= 0 {
		return fmt.Errorf("%w: habitat size %dx%d", ErrInvalid, c.Habitat.Width, c.Habitat.Height)
	}
	if c.Simulation.Population <= 0 || c.Simulation.TicksPerRun <= 0 {
		return fmt.Errorf("%w: population and ticks_per_run must be positive", ErrInvalid)
	}
	if c.Simulation.SurvivorFraction <= 0 || c.Simulation.SurvivorFraction > 1 {
		return fmt.Errorf("%w: survivor_fraction %v outside (0,1]", ErrInvalid, c.Simulation.SurvivorFraction)
	}

	names := make(map[string]bool, len(c.Layers))
	for _, l := range c.Layers {
		if !slices.Contains(layerKinds, l.Kind) {
			return fmt.Errorf("%w: layer %q has unknown kind %q", ErrInvalid, l.Name, l.Kind)
		}
		if l.Kind == "blur" && !names[l.Source] {
			return fmt.Errorf("%w: blur layer %q reads %q, which is not defined before it", ErrInvalid, l.Name, l.Source)
		}
		names[l.Name] = true
	}
	for _, s := range slices.Concat(c.Critter.Sensors, c.Mutation.SensorChoices) {
		if !names[s.Layer] {
			return fmt.Errorf("%w: sensor reads unknown layer %q", ErrInvalid, s.Layer)
		}
	}
	if !names[c.Simulation.FitnessLayer] {
		return fmt.Errorf("%w: unknown fitness layer %q", ErrInvalid, c.Simulation.FitnessLayer)
	}

	if c.Brain.NestedThinkCap < 0 {
		return fmt.Errorf("%w: nested_think_cap %d is negative", ErrInvalid, c.Brain.NestedThinkCap)
	}
	return validateUnits(slices.Concat(c.Brain.Units, c.Mutation.UnitChoices))
}

func validateUnits(units []UnitConfig) error {
	for _, u := range units {
		if !slices.Contains(unitKinds, u.Kind) {
			return fmt.Errorf("%w: unknown unit kind %q", ErrInvalid, u.Kind)
		}
		if u.Kind != "circuit" {
			continue
		}
		if u.Inputs < 0 || u.Outputs < 0 || u.Connections < 0 {
			return fmt.Errorf("%w: circuit unit has negative port or connection counts", ErrInvalid)
		}
		if err := validateUnits(u.Units); err != nil {
			return err
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
