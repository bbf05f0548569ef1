package game

import (
	"fmt"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/critter"
	"github.com/pthm-cable/critters/habitat"
	"github.com/pthm-cable/critters/mutagen"
	"github.com/pthm-cable/critters/neural"
)

// HabitatTemplate converts the layer list into a habitat template.
func HabitatTemplate(cfg *config.Config) (habitat.Template, error) {
	t := habitat.Template{Width: cfg.Habitat.Width, Height: cfg.Habitat.Height}
	for _, lc := range cfg.Layers {
		lt, err := layerTemplate(lc)
		if err != nil {
			return habitat.Template{}, fmt.Errorf("layer %q: %w", lc.Name, err)
		}
		t.Layers = append(t.Layers, habitat.NamedLayer{
			Name:     lc.Name,
			Template: lt,
			Invert:   lc.Invert,
			Regrow:   float32(lc.Regrow),
		})
	}
	return t, nil
}

func layerTemplate(lc config.LayerConfig) (habitat.LayerTemplate, error) {
	switch lc.Kind {
	case "uniform":
		return habitat.UniformTemplate{Value: float32(lc.Value)}, nil
	case "noise":
		p := habitat.DefaultNoiseParams
		if lc.Noise.Scale > 0 {
			p.Scale = float32(lc.Noise.Scale)
		}
		if lc.Noise.Octaves > 0 {
			p.Octaves = lc.Noise.Octaves
		}
		if lc.Noise.Lacunarity > 0 {
			p.Lacunarity = float32(lc.Noise.Lacunarity)
		}
		if lc.Noise.Gain > 0 {
			p.Gain = float32(lc.Noise.Gain)
		}
		if lc.Noise.Contrast > 0 {
			p.Contrast = float32(lc.Noise.Contrast)
		}
		return habitat.NoiseTemplate{Params: p}, nil
	case "blob":
		return habitat.BlobTemplate{Brushes: lc.Brushes, BrushSize: lc.BrushSize, Steps: lc.Steps}, nil
	case "blur":
		return habitat.BlurTemplate{Source: lc.Source, Depth: lc.Depth, Wrap: lc.Wrap}, nil
	}
	return nil, fmt.Errorf("unknown layer kind %q", lc.Kind)
}

// UnitTemplates expands unit configs, repeating each Count times. Circuit
// units get nestedCap as their NestedThinkCap.
func UnitTemplates(units []config.UnitConfig, nestedCap int) ([]neural.Template, error) {
	var out []neural.Template
	for _, uc := range units {
		t, err := unitTemplate(uc, nestedCap)
		if err != nil {
			return nil, err
		}
		for range max(uc.Count, 1) {
			out = append(out, t)
		}
	}
	return out, nil
}

func unitTemplate(uc config.UnitConfig, nestedCap int) (neural.Template, error) {
	switch neural.Kind(uc.Kind) {
	case neural.KindSimple:
		return neural.SimpleTemplate{}, nil
	case neural.KindAnd:
		arity := uc.Arity
		if arity == 0 {
			arity = 2
		}
		t, err := neural.NewAndTemplate(arity)
		if err != nil {
			return nil, err
		}
		return t, nil
	case neural.KindXor:
		return neural.XorTemplate{}, nil
	case neural.KindInverter:
		return neural.InverterTemplate{}, nil
	case neural.KindDiode:
		return neural.DiodeTemplate{Sign: uc.Sign}, nil
	case neural.KindCircuit:
		inner, err := UnitTemplates(uc.Units, nestedCap)
		if err != nil {
			return nil, fmt.Errorf("nested circuit: %w", err)
		}
		t, err := neural.NewCircuitTemplate(neural.Settings{
			InputCount:                  max(uc.Inputs, 1),
			OutputCount:                 max(uc.Outputs, 1),
			InitialConnectionsPerOutput: uc.Connections,
			NestedThinkCap:              nestedCap,
		}, inner...)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", neural.ErrUnknownKind, uc.Kind)
}

func sensorTemplates(sensors []config.SensorConfig) []critter.SensorTemplate {
	out := make([]critter.SensorTemplate, len(sensors))
	for i, s := range sensors {
		out[i] = critter.LayerSensorTemplate{Layer: s.Layer, DX: s.DX, DY: s.DY, Invert: s.Invert}
	}
	return out
}

func actuatorTemplates(actuators []config.ActuatorConfig) []critter.ActuatorTemplate {
	out := make([]critter.ActuatorTemplate, len(actuators))
	for i, a := range actuators {
		out[i] = critter.MoveActuatorTemplate{X: float32(a.X), Y: float32(a.Y)}
	}
	return out
}

// FounderTemplate builds the generation-zero critter template. Its brain
// is a fresh circuit, so every founder gets its own random wiring.
func FounderTemplate(cfg *config.Config) (*critter.Template, error) {
	units, err := UnitTemplates(cfg.Brain.Units, cfg.Brain.NestedThinkCap)
	if err != nil {
		return nil, err
	}
	brain, err := neural.NewCircuitTemplate(neural.Settings{
		InputCount:                  cfg.Derived.NumInputs,
		OutputCount:                 cfg.Derived.NumOutputs,
		InitialConnectionsPerOutput: cfg.Brain.InitialConnectionsPerOutput,
	}, units...)
	if err != nil {
		return nil, fmt.Errorf("founder brain: %w", err)
	}

	return &critter.Template{
		Settings: critter.Settings{
			MaxSpeed:     float32(cfg.Critter.MaxSpeed),
			ImpetusDecay: float32(cfg.Critter.ImpetusDecay),
		},
		Brain:     brain,
		Sensors:   sensorTemplates(cfg.Critter.Sensors),
		Actuators: actuatorTemplates(cfg.Critter.Actuators),
	}, nil
}

// MutagenProvider registers the brain and critter mutation settings.
func MutagenProvider(cfg *config.Config) (*mutagen.Provider, error) {
	choices, err := UnitTemplates(cfg.Mutation.UnitChoices, cfg.Brain.NestedThinkCap)
	if err != nil {
		return nil, fmt.Errorf("unit choices: %w", err)
	}
	brain := neural.MutatorSettings{
		ConnectionReplaceChance: cfg.Mutation.ConnectionReplaceChance,
		UnitReplaceChance:       cfg.Mutation.UnitReplaceChance,
		UnitChoices:             choices,
	}
	if err := brain.Validate(); err != nil {
		return nil, err
	}

	body := critter.MutatorSettings{
		SensorReplaceChance:   cfg.Mutation.SensorReplaceChance,
		SensorChoices:         sensorTemplates(cfg.Mutation.SensorChoices),
		ActuatorReplaceChance: cfg.Mutation.ActuatorReplaceChance,
		ActuatorChoices:       actuatorTemplates(cfg.Mutation.ActuatorChoices),
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	p := mutagen.NewProvider()
	mutagen.Register(p, brain)
	mutagen.Register(p, body)
	return p, nil
}
