// Package habitat provides the toroidal scalar grids critters live on.
package habitat

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// Layer is a W×H grid of float32 values addressed with toroidal wrap.
type Layer struct {
	W, H int

	values []float32

	// Capacity and rate for regrowth. Nil cap disables Step.
	cap    []float32
	regrow float32
}

// NewLayer creates a zeroed layer.
func NewLayer(w, h int) *Layer {
	return &Layer{W: w, H: h, values: make([]float32, w*h)}
}

// At returns the value at (x, y), wrapping both coordinates.
func (l *Layer) At(x, y int) float32 {
	return l.values[Wrap(y, l.H)*l.W+Wrap(x, l.W)]
}

// Set stores v at (x, y), wrapping both coordinates.
func (l *Layer) Set(x, y int, v float32) {
	l.values[Wrap(y, l.H)*l.W+Wrap(x, l.W)] = v
}

// Values returns the backing grid in row-major order.
func (l *Layer) Values() []float32 { return l.values }

// Sum returns the total of all cells.
func (l *Layer) Sum() float64 {
	var s float64
	for _, v := range l.values {
		s += float64(v)
	}
	return s
}

// Invert replaces every value v with 1 - v.
func (l *Layer) Invert() {
	for i, v := range l.values {
		l.values[i] = 1 - v
	}
}

// UniformFill sets every cell to v.
func (l *Layer) UniformFill(v float32) {
	for i := range l.values {
		l.values[i] = v
	}
}

// NoiseParams shapes NoiseFill.
type NoiseParams struct {
	Scale      float32 `yaml:"scale"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float32 `yaml:"lacunarity"`
	Gain       float32 `yaml:"gain"`
	Contrast   float32 `yaml:"contrast"` // exponent; higher = sparser patches
}

// DefaultNoiseParams matches a few broad patches per layer.
var DefaultNoiseParams = NoiseParams{
	Scale:      4,
	Octaves:    4,
	Lacunarity: 2,
	Gain:       0.5,
	Contrast:   1,
}

// NoiseFill fills the layer with tileable fractal simplex noise in [0,1].
// The grid is mapped onto a torus in 4D noise space so opposite edges meet
// without a seam.
func (l *Layer) NoiseFill(seed int64, p NoiseParams) {
	noise := opensimplex.NewNormalized32(seed)
	if p.Octaves < 1 {
		p.Octaves = 1
	}

	for y := 0; y < l.H; y++ {
		v := (float32(y) + 0.5) / float32(l.H)
		for x := 0; x < l.W; x++ {
			u := (float32(x) + 0.5) / float32(l.W)
			l.values[y*l.W+x] = fbm(noise, u, v, p)
		}
	}
}

func fbm(noise opensimplex.Noise32, u, v float32, p NoiseParams) float32 {
	var sum, norm float32
	amp := float32(1)
	freq := p.Scale

	su, cu := math.Sincos(2 * math.Pi * float64(u))
	sv, cv := math.Sincos(2 * math.Pi * float64(v))
	for o := 0; o < p.Octaves; o++ {
		r := freq / (2 * math.Pi)
		sum += amp * noise.Eval4(r*float32(cu), r*float32(su), r*float32(cv), r*float32(sv))
		norm += amp
		freq *= p.Lacunarity
		amp *= p.Gain
	}
	sum /= norm

	if p.Contrast > 0 && p.Contrast != 1 {
		sum = float32(math.Pow(float64(sum), float64(p.Contrast)))
	}
	return clamp01(sum)
}

// BlobFill paints count soft brushes that each random-walk for steps
// steps, then clamps the layer to 1.
func (l *Layer) BlobFill(rng *rand.Rand, count, size, steps int) {
	const paintScalar = 0.04
	half := size / 2

	for b := 0; b < count; b++ {
		px, py := rng.Intn(l.W), rng.Intn(l.H)
		for s := 0; s < steps; s++ {
			for dy := -half; dy < half; dy++ {
				for dx := -half; dx < half; dx++ {
					// Paint grows towards the brush rim.
					dist2 := float32(dx*dx + dy*dy)
					i := Wrap(py+dy, l.H)*l.W + Wrap(px+dx, l.W)
					l.values[i] += dist2 / float32(size*size) * paintScalar
				}
			}

			switch r := rng.Float64(); {
			case r > 0.75:
				py--
			case r > 0.5:
				py++
			case r > 0.25:
				px--
			default:
				px++
			}
			px, py = Wrap(px, l.W), Wrap(py, l.H)
		}
	}

	for i, v := range l.values {
		if v > 1 {
			l.values[i] = 1
		}
	}
}

// BlurFill replaces the layer with a box blur of src of the given radius.
// With wrap the kernel crosses edges; without it cells near an edge
// average only the in-bounds part of the kernel. src may be l itself.
func (l *Layer) BlurFill(src *Layer, depth int, wrap bool) {
	in := src.values
	if src == l {
		in = append([]float32(nil), l.values...)
	}

	for y := 0; y < l.H; y++ {
		for x := 0; x < l.W; x++ {
			var total, area float32
			for y2 := y - depth; y2 <= y+depth; y2++ {
				if !wrap && (y2 < 0 || src.H <= y2) {
					continue
				}
				for x2 := x - depth; x2 <= x+depth; x2++ {
					if !wrap && (x2 < 0 || src.W <= x2) {
						continue
					}
					total += in[Wrap(y2, src.H)*src.W+Wrap(x2, src.W)]
					area++
				}
			}
			l.values[y*l.W+x] = total / area
		}
	}
}

// Graze removes up to want from the cells around (x, y) with a tent kernel
// of the given radius and returns the amount removed. radius 1 is a 3x3
// kernel.
func (l *Layer) Graze(x, y int, want float32, radius int) float32 {
	if want <= 0 {
		return 0
	}

	var wsum float32
	for oy := -radius; oy <= radius; oy++ {
		for ox := -radius; ox <= radius; ox++ {
			if w := tent(ox, oy, radius); w > 0 {
				wsum += w
			}
		}
	}

	var removed float32
	for oy := -radius; oy <= radius; oy++ {
		yy := Wrap(y+oy, l.H)
		for ox := -radius; ox <= radius; ox++ {
			w := tent(ox, oy, radius)
			if w <= 0 {
				continue
			}
			i := yy*l.W + Wrap(x+ox, l.W)
			take := min(want*(w/wsum), l.values[i])
			if take < 0 {
				take = 0
			}
			l.values[i] -= take
			removed += take
		}
	}
	return removed
}

func tent(ox, oy, radius int) float32 {
	return float32(radius+1) - float32(absInt(ox)+absInt(oy))
}

// EnableRegrowth snapshots the current values as the capacity Step
// regrows towards at rate per second.
func (l *Layer) EnableRegrowth(rate float32) {
	l.cap = append([]float32(nil), l.values...)
	l.regrow = rate
}

// Step regrows every cell towards its capacity.
func (l *Layer) Step(dt float32) {
	if l.cap == nil || l.regrow <= 0 {
		return
	}
	k := min(l.regrow*dt, 1)
	for i, target := range l.cap {
		l.values[i] += (target - l.values[i]) * k
	}
}

// Clone returns a deep copy.
func (l *Layer) Clone() *Layer {
	c := &Layer{W: l.W, H: l.H, regrow: l.regrow}
	c.values = append([]float32(nil), l.values...)
	if l.cap != nil {
		c.cap = append([]float32(nil), l.cap...)
	}
	return c
}

// Wrap maps v into [0, n).
func Wrap(v, n int) int {
	r := v % n
	if r < 0 {
		r += n
	}
	return r
}

// WrapF maps v into [0, n).
func WrapF(v, n float32) float32 {
	r := float32(math.Mod(float64(v), float64(n)))
	if r < 0 {
		r += n
	}
	if r >= n {
		r = 0
	}
	return r
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
