package habitat

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
)

// ErrLayerNotFound is returned when a named layer does not exist.
var ErrLayerNotFound = errors.New("layer not found")

// Habitat is a set of named layers sharing one size.
type Habitat struct {
	Width, Height int

	names  []string
	layers map[string]*Layer
}

// New creates an empty habitat.
func New(width, height int) *Habitat {
	return &Habitat{Width: width, Height: height, layers: make(map[string]*Layer)}
}

// AddLayer installs l under name, replacing an existing layer of that name.
func (h *Habitat) AddLayer(name string, l *Layer) error {
	if l.W != h.Width || l.H != h.Height {
		return fmt.Errorf("layer %q is %dx%d, habitat is %dx%d", name, l.W, l.H, h.Width, h.Height)
	}
	if _, ok := h.layers[name]; !ok {
		h.names = append(h.names, name)
	}
	h.layers[name] = l
	return nil
}

// Layer returns the named layer.
func (h *Habitat) Layer(name string) (*Layer, error) {
	l, ok := h.layers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLayerNotFound, name)
	}
	return l, nil
}

// Names returns layer names in creation order.
func (h *Habitat) Names() []string { return slices.Clone(h.names) }

// Step regrows every layer that has regrowth enabled.
func (h *Habitat) Step(dt float32) {
	for _, name := range h.names {
		h.layers[name].Step(dt)
	}
}

// LayerTemplate creates one layer of a habitat. Layers are created in
// order, so a template may read layers created before it.
type LayerTemplate interface {
	Create(rng *rand.Rand, h *Habitat) (*Layer, error)
}

// NamedLayer pairs a layer template with its name and post-processing.
type NamedLayer struct {
	Name     string
	Template LayerTemplate
	Invert   bool
	Regrow   float32 // per second; 0 disables
}

// Template creates habitats.
type Template struct {
	Width, Height int
	Layers        []NamedLayer
}

// Create builds a habitat, creating layers in order.
func (t Template) Create(rng *rand.Rand) (*Habitat, error) {
	if t.Width <= 0 || t.Height <= 0 {
		return nil, fmt.Errorf("habitat size %dx%d must be positive", t.Width, t.Height)
	}

	h := New(t.Width, t.Height)
	for _, nl := range t.Layers {
		l, err := nl.Template.Create(rng, h)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", nl.Name, err)
		}
		if nl.Invert {
			l.Invert()
		}
		if nl.Regrow > 0 {
			l.EnableRegrowth(nl.Regrow)
		}
		if err := h.AddLayer(nl.Name, l); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// UniformTemplate fills a layer with one value.
type UniformTemplate struct {
	Value float32
}

func (t UniformTemplate) Create(_ *rand.Rand, h *Habitat) (*Layer, error) {
	l := NewLayer(h.Width, h.Height)
	l.UniformFill(t.Value)
	return l, nil
}

// NoiseTemplate fills a layer with fractal noise seeded from rng.
type NoiseTemplate struct {
	Params NoiseParams
}

func (t NoiseTemplate) Create(rng *rand.Rand, h *Habitat) (*Layer, error) {
	l := NewLayer(h.Width, h.Height)
	l.NoiseFill(rng.Int63(), t.Params)
	return l, nil
}

// BlobTemplate paints random-walk brushes.
type BlobTemplate struct {
	Brushes, BrushSize, Steps int
}

func (t BlobTemplate) Create(rng *rand.Rand, h *Habitat) (*Layer, error) {
	l := NewLayer(h.Width, h.Height)
	l.BlobFill(rng, t.Brushes, t.BrushSize, t.Steps)
	return l, nil
}

// BlurTemplate blurs a previously created layer.
type BlurTemplate struct {
	Source string
	Depth  int
	Wrap   bool
}

func (t BlurTemplate) Create(_ *rand.Rand, h *Habitat) (*Layer, error) {
	src, err := h.Layer(t.Source)
	if err != nil {
		return nil, err
	}
	l := NewLayer(h.Width, h.Height)
	l.BlurFill(src, t.Depth, t.Wrap)
	return l, nil
}
