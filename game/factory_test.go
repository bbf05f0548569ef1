package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/critter"
	"github.com/pthm-cable/critters/habitat"
	"github.com/pthm-cable/critters/mutagen"
	"github.com/pthm-cable/critters/neural"
)

func TestUnitTemplatesExpandCounts(t *testing.T) {
	units, err := UnitTemplates([]config.UnitConfig{
		{Kind: "simple", Count: 3},
		{Kind: "and", Arity: 3},
		{Kind: "diode", Sign: true, Count: 2},
	}, 0)
	if err != nil {
		t.Fatalf("UnitTemplates: %v", err)
	}
	if len(units) != 6 {
		t.Fatalf("got %d templates, want 6", len(units))
	}
	if and, ok := units[3].(neural.AndTemplate); !ok || and.Arity() != 3 {
		t.Errorf("units[3] = %#v, want and(3)", units[3])
	}
	if d, ok := units[5].(neural.DiodeTemplate); !ok || !d.Sign {
		t.Errorf("units[5] = %#v, want positive diode", units[5])
	}

	if _, err := UnitTemplates([]config.UnitConfig{{Kind: "neuron"}}, 0); !errors.Is(err, neural.ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
	if _, err := UnitTemplates([]config.UnitConfig{{Kind: "and", Arity: 1}}, 0); !errors.Is(err, neural.ErrUnsupportedUnit) {
		t.Errorf("error = %v, want ErrUnsupportedUnit", err)
	}
}

func TestUnitTemplatesNestedCircuit(t *testing.T) {
	units, err := UnitTemplates([]config.UnitConfig{
		{Kind: "circuit", Connections: 1, Units: []config.UnitConfig{{Kind: "simple", Count: 2}}},
	}, 5)
	if err != nil {
		t.Fatalf("UnitTemplates: %v", err)
	}
	ct, ok := units[0].(*neural.CircuitTemplate)
	if !ok {
		t.Fatalf("units[0] = %T, want *neural.CircuitTemplate", units[0])
	}
	s := ct.Settings()
	if s.NestedThinkCap != 5 || s.InputCount != 1 || s.OutputCount != 1 {
		t.Errorf("settings = %+v, want cap 5 with 1 input and 1 output", s)
	}
	if got := len(ct.UnitTemplates()); got != 2 {
		t.Errorf("nested circuit has %d units, want 2", got)
	}

	_, err = UnitTemplates([]config.UnitConfig{
		{Kind: "circuit", Units: []config.UnitConfig{{Kind: "neuron"}}},
	}, 0)
	if !errors.Is(err, neural.ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
}

func TestNoiseLayerKeepsDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Habitat.Width, cfg.Habitat.Height = 8, 8
	cfg.Layers = []config.LayerConfig{
		{Name: "food", Kind: "noise", Noise: config.NoiseConfig{Scale: 9}},
	}
	ht, err := HabitatTemplate(cfg)
	if err != nil {
		t.Fatalf("HabitatTemplate: %v", err)
	}
	nt, ok := ht.Layers[0].Template.(habitat.NoiseTemplate)
	if !ok {
		t.Fatalf("layer template = %T, want habitat.NoiseTemplate", ht.Layers[0].Template)
	}
	if nt.Params.Scale != 9 {
		t.Errorf("scale = %v, want 9", nt.Params.Scale)
	}
	if nt.Params.Octaves != habitat.DefaultNoiseParams.Octaves || nt.Params.Gain != habitat.DefaultNoiseParams.Gain {
		t.Errorf("params = %+v, want defaults apart from scale", nt.Params)
	}
}

func TestFounderTemplateFromDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ht, err := HabitatTemplate(cfg)
	if err != nil {
		t.Fatalf("HabitatTemplate: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	h, err := ht.Create(rng)
	if err != nil {
		t.Fatalf("habitat: %v", err)
	}
	if got := len(h.Names()); got != len(cfg.Layers) {
		t.Errorf("habitat has %d layers, want %d", got, len(cfg.Layers))
	}

	founder, err := FounderTemplate(cfg)
	if err != nil {
		t.Fatalf("FounderTemplate: %v", err)
	}
	c, err := founder.Create(rng, h)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := len(c.Brain().Units()); got != cfg.Derived.NumUnits {
		t.Errorf("brain has %d units, want %d", got, cfg.Derived.NumUnits)
	}
	if c.Settings().MaxSpeed != float32(cfg.Critter.MaxSpeed) {
		t.Errorf("settings = %+v", c.Settings())
	}

	nested := 0
	for _, id := range c.Brain().Units() {
		u, _ := c.Brain().Unit(id)
		if nc, ok := u.(*neural.Circuit); ok {
			nested++
			if got := nc.Settings().NestedThinkCap; got != cfg.Brain.NestedThinkCap {
				t.Errorf("nested cap = %d, want %d", got, cfg.Brain.NestedThinkCap)
			}
		}
	}
	if nested == 0 {
		t.Error("founder brain has no circuit unit")
	}
}

func TestMutagenProviderRegistersBoth(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	p, err := MutagenProvider(cfg)
	if err != nil {
		t.Fatalf("MutagenProvider: %v", err)
	}

	brain, err := mutagen.Lookup[neural.MutatorSettings](p)
	if err != nil {
		t.Fatalf("brain settings: %v", err)
	}
	if len(brain.UnitChoices) != cfg.Derived.NumUnits || brain.ConnectionReplaceChance != cfg.Mutation.ConnectionReplaceChance {
		t.Errorf("brain settings = %+v", brain)
	}
	body, err := mutagen.Lookup[critter.MutatorSettings](p)
	if err != nil {
		t.Fatalf("critter settings: %v", err)
	}
	if len(body.SensorChoices) != len(cfg.Mutation.SensorChoices) {
		t.Errorf("sensor choices = %d, want %d", len(body.SensorChoices), len(cfg.Mutation.SensorChoices))
	}
}
