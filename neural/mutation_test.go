package neural

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/pthm-cable/critters/mutagen"
)

func sourceCircuit(t *testing.T, seed int64) *Circuit {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	c, err := NewCircuit(rng, 0, nil, Settings{InputCount: 3, OutputCount: 2, InitialConnectionsPerOutput: 3},
		SimpleTemplate{}, MustAndTemplate(3), XorTemplate{}, InverterTemplate{}, DiodeTemplate{Sign: true}, SimpleTemplate{})
	if err != nil {
		t.Fatalf("NewCircuit: %v", err)
	}
	return c
}

var allChoices = []Template{
	SimpleTemplate{}, MustAndTemplate(2), MustAndTemplate(4), XorTemplate{}, InverterTemplate{}, DiodeTemplate{}, DiodeTemplate{Sign: true},
}

func TestMutationClosure(t *testing.T) {
	m, err := NewMutator(MutatorSettings{ConnectionReplaceChance: 0.5, UnitReplaceChance: 0.5, UnitChoices: allChoices})
	if err != nil {
		t.Fatalf("NewMutator: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	src := sourceCircuit(t, 1).ExactTemplate()
	for gen := 0; gen < 200; gen++ {
		newID := rng.Intn(10)
		child := m.Mutate(rng, src, newID, nil)
		if child.ID() != newID {
			t.Fatalf("gen %d: id = %d, want %d", gen, child.ID(), newID)
		}
		if _, clash := child.Unit(newID); clash {
			t.Fatalf("gen %d: boundary id %d is also a unit", gen, newID)
		}
		assertClosed(t, child)
		if t.Failed() {
			t.Fatalf("gen %d: offspring not closed", gen)
		}
		src = child.ExactTemplate()
	}
}

func TestMutationDeterministic(t *testing.T) {
	m, err := NewMutator(MutatorSettings{ConnectionReplaceChance: 0.3, UnitReplaceChance: 0.3, UnitChoices: allChoices})
	if err != nil {
		t.Fatalf("NewMutator: %v", err)
	}
	src := sourceCircuit(t, 3).ExactTemplate()

	run := func() *Circuit {
		return m.Mutate(rand.New(rand.NewSource(99)), src, 4, nil)
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a.Wiring(), b.Wiring()) {
		t.Error("same seed produced different wiring")
	}
	for _, id := range a.Units() {
		ua, _ := a.Unit(id)
		ub, ok := b.Unit(id)
		if !ok || !reflect.DeepEqual(ua.BuildTemplate(), ub.BuildTemplate()) {
			t.Errorf("unit %d differs", id)
		}
	}
}

func TestMutationLeavesSourceUntouched(t *testing.T) {
	c := sourceCircuit(t, 5)
	before := c.Wiring()
	src := c.ExactTemplate()

	m, err := NewMutator(MutatorSettings{ConnectionReplaceChance: 1, UnitReplaceChance: 1, UnitChoices: []Template{XorTemplate{}}})
	if err != nil {
		t.Fatalf("NewMutator: %v", err)
	}
	m.Mutate(rand.New(rand.NewSource(1)), src, 0, nil)

	if !reflect.DeepEqual(before, src.Wiring()) || !reflect.DeepEqual(before, c.Wiring()) {
		t.Error("source wiring changed")
	}
	for _, id := range src.UnitIDs() {
		u, _ := src.UnitTemplate(id)
		live, _ := c.Unit(id)
		if u.Kind() != live.BuildTemplate().Kind() {
			t.Errorf("unit %d kind changed to %s", id, u.Kind())
		}
	}
}

func TestMutationZeroChanceCopiesStructure(t *testing.T) {
	m, err := NewMutator(MutatorSettings{})
	if err != nil {
		t.Fatalf("NewMutator: %v", err)
	}
	c := sourceCircuit(t, 8)
	child := m.Mutate(rand.New(rand.NewSource(1)), c.ExactTemplate(), 0, nil)
	if !reflect.DeepEqual(c.Wiring(), child.Wiring()) {
		t.Error("zero-chance offspring wiring differs from source")
	}
}

func TestMutationFullDropEmptiesWiring(t *testing.T) {
	// With chance 1, r < 0.5 drops and r >= 0.5 rewires: nothing is kept
	// verbatim, and about half the connections vanish.
	m, err := NewMutator(MutatorSettings{ConnectionReplaceChance: 1})
	if err != nil {
		t.Fatalf("NewMutator: %v", err)
	}
	c := sourceCircuit(t, 2)
	child := m.Mutate(rand.New(rand.NewSource(1)), c.ExactTemplate(), 0, nil)
	if child.Wiring().Connections() >= c.Wiring().Connections() {
		t.Errorf("connections %d, want fewer than %d", child.Wiring().Connections(), c.Wiring().Connections())
	}
	for _, dests := range child.Wiring() {
		for _, d := range dests {
			if d.Unit == child.ID() {
				t.Errorf("rewired connection points at the boundary: %v", d)
			}
		}
	}
}

func TestRewireSkipsUnitsWithoutInputs(t *testing.T) {
	// Unit 2 is a nested circuit with no inputs; every rewire must land on
	// unit 1 instead of leaving the boundary connection in place.
	closed := mustExact(t, 0, Settings{OutputCount: 1}, nil, nil)
	src := mustExact(t, 0, Settings{InputCount: 1, OutputCount: 1},
		map[int]Template{1: SimpleTemplate{}, 2: closed},
		Wiring{{Unit: 0, Port: 0}: {{Unit: 0, Port: 0}}})

	m, err := NewMutator(MutatorSettings{ConnectionReplaceChance: 1})
	if err != nil {
		t.Fatalf("NewMutator: %v", err)
	}
	for seed := int64(0); seed < 100; seed++ {
		child := m.Mutate(rand.New(rand.NewSource(seed)), src, 0, nil)
		for _, d := range child.Wiring()[Index{Unit: 0, Port: 0}] {
			if d != (Index{Unit: 1, Port: 0}) {
				t.Fatalf("seed %d: rewired to %v, want 1:0", seed, d)
			}
		}
	}

	if _, ok := rewire(rand.New(rand.NewSource(1)), nil, nil); ok {
		t.Error("rewire with no targets succeeded")
	}
}

func TestUnitReplacementPrunesStalePorts(t *testing.T) {
	// And(3) at unit 1 becomes a one-input Simple: wiring into ports 1 and
	// 2 goes away, and a source left with no destinations is removed.
	src := mustExact(t, 0, Settings{InputCount: 3, OutputCount: 1},
		map[int]Template{1: MustAndTemplate(3)},
		Wiring{
			{Unit: 0, Port: 0}: {{Unit: 1, Port: 0}, {Unit: 1, Port: 2}},
			{Unit: 0, Port: 1}: {{Unit: 1, Port: 1}},
			{Unit: 0, Port: 2}: {{Unit: 1, Port: 2}, {Unit: 0, Port: 0}},
			{Unit: 1, Port: 0}: {{Unit: 0, Port: 0}},
		})

	m, err := NewMutator(MutatorSettings{UnitReplaceChance: 1, UnitChoices: []Template{SimpleTemplate{}}})
	if err != nil {
		t.Fatalf("NewMutator: %v", err)
	}
	child := m.Mutate(rand.New(rand.NewSource(1)), src, 0, nil)

	u, _ := child.Unit(1)
	if _, ok := u.(*SimpleUnit); !ok {
		t.Fatalf("unit 1 = %T, want *SimpleUnit", u)
	}
	want := Wiring{
		{Unit: 0, Port: 0}: {{Unit: 1, Port: 0}},
		{Unit: 0, Port: 2}: {{Unit: 0, Port: 0}},
		{Unit: 1, Port: 0}: {{Unit: 0, Port: 0}},
	}
	if got := child.Wiring(); !reflect.DeepEqual(got, want) {
		t.Errorf("wiring = %v, want %v", got, want)
	}
}

func TestMutatorSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings MutatorSettings
		wantErr  error
	}{
		{"empty pool with chance", MutatorSettings{UnitReplaceChance: 0.1}, ErrNoUnitChoices},
		{"empty pool without chance", MutatorSettings{ConnectionReplaceChance: 0.2}, nil},
		{"negative", MutatorSettings{ConnectionReplaceChance: -1}, ErrInvalidSettings},
		{"ok", MutatorSettings{UnitReplaceChance: 0.1, UnitChoices: allChoices}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildMutatingTemplate(t *testing.T) {
	c := sourceCircuit(t, 4)

	if _, err := c.BuildMutatingTemplate(mutagen.NewProvider()); !errors.Is(err, mutagen.ErrNoSettings) {
		t.Fatalf("error = %v, want ErrNoSettings", err)
	}

	p := mutagen.NewProvider()
	mutagen.Register(p, MutatorSettings{ConnectionReplaceChance: 0.2, UnitReplaceChance: 0.2, UnitChoices: allChoices})
	mt, err := c.BuildMutatingTemplate(p)
	if err != nil {
		t.Fatalf("BuildMutatingTemplate: %v", err)
	}

	// Later changes to the live circuit must not reach the snapshot.
	before := mt.Source().Wiring()
	c.Input(NewSignal(5, 0, 0))
	c.Think(1000)
	if !reflect.DeepEqual(before, mt.Source().Wiring()) {
		t.Error("snapshot changed")
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		child := mt.Create(rng, i%3, nil).(*Circuit)
		assertClosed(t, child)
	}
}
