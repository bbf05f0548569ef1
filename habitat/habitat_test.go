package habitat

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		v, n, want int
	}{
		{0, 10, 0},
		{9, 10, 9},
		{10, 10, 0},
		{-1, 10, 9},
		{-21, 10, 9},
		{35, 10, 5},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.n); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestWrapF(t *testing.T) {
	tests := []struct {
		v, n, want float32
	}{
		{0.5, 10, 0.5},
		{10.25, 10, 0.25},
		{-0.5, 10, 9.5},
		{-20, 10, 0},
	}
	for _, tt := range tests {
		if got := WrapF(tt.v, tt.n); math.Abs(float64(got-tt.want)) > 1e-5 {
			t.Errorf("WrapF(%v, %v) = %v, want %v", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestLayerAtWraps(t *testing.T) {
	l := NewLayer(4, 3)
	l.Set(3, 2, 0.7)
	if got := l.At(-1, -1); got != 0.7 {
		t.Errorf("At(-1,-1) = %v, want 0.7", got)
	}
	if got := l.At(7, 5); got != 0.7 {
		t.Errorf("At(7,5) = %v, want 0.7", got)
	}
}

func TestUniformFillAndInvert(t *testing.T) {
	l := NewLayer(8, 8)
	l.UniformFill(0.25)
	if s := l.Sum(); math.Abs(s-16) > 1e-4 {
		t.Errorf("Sum = %v, want 16", s)
	}
	l.Invert()
	if got := l.At(3, 3); got != 0.75 {
		t.Errorf("inverted = %v, want 0.75", got)
	}
}

func TestNoiseFillRangeAndSeed(t *testing.T) {
	a := NewLayer(32, 32)
	a.NoiseFill(42, DefaultNoiseParams)
	b := NewLayer(32, 32)
	b.NoiseFill(42, DefaultNoiseParams)

	for i, v := range a.Values() {
		if v < 0 || v > 1 {
			t.Fatalf("cell %d = %v, out of [0,1]", i, v)
		}
		if v != b.Values()[i] {
			t.Fatalf("same seed differs at cell %d", i)
		}
	}
}

func TestBlobFillClamps(t *testing.T) {
	l := NewLayer(16, 16)
	l.BlobFill(rand.New(rand.NewSource(42)), 3, 4, 2000)
	var painted bool
	for _, v := range l.Values() {
		if v > 1 || v < 0 {
			t.Fatalf("value %v outside [0,1]", v)
		}
		if v > 0 {
			painted = true
		}
	}
	if !painted {
		t.Error("BlobFill painted nothing")
	}
}

func TestBlurFill(t *testing.T) {
	src := NewLayer(5, 5)
	src.Set(0, 0, 9)

	wrapped := NewLayer(5, 5)
	wrapped.BlurFill(src, 1, true)
	if got := wrapped.At(4, 4); got != 1 {
		t.Errorf("wrapped blur at far corner = %v, want 1", got)
	}
	if math.Abs(wrapped.Sum()-9) > 1e-4 {
		t.Errorf("wrapped blur sum = %v, want 9", wrapped.Sum())
	}

	clipped := NewLayer(5, 5)
	clipped.BlurFill(src, 1, false)
	if got := clipped.At(4, 4); got != 0 {
		t.Errorf("clipped blur at far corner = %v, want 0", got)
	}
	if got := clipped.At(0, 0); got != 9.0/4 {
		t.Errorf("clipped blur at corner = %v, want 2.25", got)
	}
}

func TestGrazeAndRegrow(t *testing.T) {
	l := NewLayer(10, 10)
	l.UniformFill(1)
	l.EnableRegrowth(0.5)

	before := l.Sum()
	got := l.Graze(0, 0, 2, 1)
	if math.Abs(float64(got)-2) > 1e-4 {
		t.Errorf("grazed %v, want 2", got)
	}
	if math.Abs(before-l.Sum()-2) > 1e-4 {
		t.Errorf("layer lost %v, want 2", before-l.Sum())
	}

	for i := 0; i < 200; i++ {
		l.Step(0.1)
	}
	if math.Abs(l.Sum()-before) > 1e-3 {
		t.Errorf("after regrowth sum = %v, want %v", l.Sum(), before)
	}
}

func TestGrazeNeverGoesNegative(t *testing.T) {
	l := NewLayer(4, 4)
	l.UniformFill(0.1)
	got := l.Graze(1, 1, 100, 1)
	for i, v := range l.Values() {
		if v < 0 {
			t.Fatalf("cell %d = %v", i, v)
		}
	}
	if got > 0.5+1e-5 {
		t.Errorf("grazed %v, more than available", got)
	}
}

func TestTemplateCreate(t *testing.T) {
	tmpl := Template{
		Width:  16,
		Height: 12,
		Layers: []NamedLayer{
			{Name: "food", Template: BlobTemplate{Brushes: 2, BrushSize: 4, Steps: 200}},
			{Name: "smell", Template: BlurTemplate{Source: "food", Depth: 2, Wrap: true}},
			{Name: "danger", Template: UniformTemplate{Value: 0.2}, Invert: true},
		},
	}
	h, err := tmpl.Create(rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	names := h.Names()
	if len(names) != 3 || names[0] != "food" || names[2] != "danger" {
		t.Errorf("names = %v", names)
	}
	danger, err := h.Layer("danger")
	if err != nil {
		t.Fatalf("Layer: %v", err)
	}
	if danger.W != 16 || danger.H != 12 {
		t.Errorf("layer size = %dx%d, want 16x12", danger.W, danger.H)
	}
	if got := danger.At(5, 5); math.Abs(float64(got)-0.8) > 1e-6 {
		t.Errorf("inverted uniform = %v, want 0.8", got)
	}
}

func TestMissingLayer(t *testing.T) {
	h := New(4, 4)
	if _, err := h.Layer("food"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("error = %v, want ErrLayerNotFound", err)
	}

	tmpl := Template{Width: 4, Height: 4, Layers: []NamedLayer{
		{Name: "smell", Template: BlurTemplate{Source: "food", Depth: 1}},
	}}
	if _, err := tmpl.Create(rand.New(rand.NewSource(1))); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("error = %v, want ErrLayerNotFound", err)
	}
}
