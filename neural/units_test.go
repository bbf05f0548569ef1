package neural

import (
	"errors"
	"math"
	"testing"
)

// recorder collects emitted signals.
type recorder struct {
	got []Signal
}

func (r *recorder) out(s Signal) { r.got = append(r.got, s) }

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestSimpleUnitFiresOnceAboveThreshold(t *testing.T) {
	var r recorder
	u := NewSimpleUnit(3, r.out)

	u.Input(NewSignal(0.6, 3, 0))
	if len(r.got) != 0 {
		t.Fatalf("emitted after first input: %v", r.got)
	}
	u.Input(NewSignal(0.6, 3, 0))

	if len(r.got) != 1 {
		t.Fatalf("emissions = %d, want 1", len(r.got))
	}
	if !approx(r.got[0].Value, 1.2) {
		t.Errorf("value = %v, want 1.2", r.got[0].Value)
	}
	if r.got[0].Dest != (Index{Unit: 3, Port: 0}) {
		t.Errorf("dest = %v, want 3:0", r.got[0].Dest)
	}
	if u.State() != 0 {
		t.Errorf("state = %v, want 0 after firing", u.State())
	}
}

func TestSimpleUnitDoesNotFireAtExactlyOne(t *testing.T) {
	var r recorder
	u := NewSimpleUnit(0, r.out)
	u.Input(NewSignal(0.5, 0, 0))
	u.Input(NewSignal(0.5, 0, 0))
	if len(r.got) != 0 {
		t.Errorf("emitted at state 1.0: %v", r.got)
	}
}

func TestAndUnit(t *testing.T) {
	var r recorder
	u := NewAndUnit(1, r.out, 2)

	u.Input(NewSignal(0.5, 1, 0))
	u.Input(NewSignal(0.5, 1, 1))
	if len(r.got) != 0 {
		t.Fatalf("emitted below threshold: %v", r.got)
	}

	u.Reset()
	u.Input(NewSignal(1.5, 1, 0))
	if len(r.got) != 0 {
		t.Fatalf("emitted with one port charged: %v", r.got)
	}
	u.Input(NewSignal(1.5, 1, 1))

	if len(r.got) != 1 {
		t.Fatalf("emissions = %d, want 1", len(r.got))
	}
	if !approx(r.got[0].Value, 3.0) {
		t.Errorf("value = %v, want 3.0", r.got[0].Value)
	}
	for i, s := range u.State() {
		if s != 0 {
			t.Errorf("state[%d] = %v, want 0", i, s)
		}
	}
}

func TestAndUnitRequiresMatchingSign(t *testing.T) {
	var r recorder
	u := NewAndUnit(0, r.out, 2)
	u.Input(NewSignal(-1.5, 0, 0))
	u.Input(NewSignal(1.5, 0, 1))
	if len(r.got) != 0 {
		t.Fatalf("emitted with mixed signs: %v", r.got)
	}
	u.Input(NewSignal(-3, 0, 1))
	if len(r.got) != 1 || !approx(r.got[0].Value, -3.0) {
		t.Errorf("got %v, want one emission of -3", r.got)
	}
}

func TestNewAndTemplateRejectsSmallArity(t *testing.T) {
	for _, arity := range []int{-1, 0, 1} {
		if _, err := NewAndTemplate(arity); !errors.Is(err, ErrUnsupportedUnit) {
			t.Errorf("NewAndTemplate(%d) error = %v, want ErrUnsupportedUnit", arity, err)
		}
	}
	tmpl, err := NewAndTemplate(3)
	if err != nil {
		t.Fatalf("NewAndTemplate(3): %v", err)
	}
	if got := tmpl.Create(nil, 0, nil).InputCount(); got != 3 {
		t.Errorf("InputCount = %d, want 3", got)
	}
}

func TestXorUnit(t *testing.T) {
	var r recorder
	u := NewXorUnit(2, r.out)

	u.Input(NewSignal(1.5, 2, 0))
	u.Input(NewSignal(1.5, 2, 1))
	if len(r.got) != 0 {
		t.Fatalf("emitted with both positive: %v", r.got)
	}

	u.Input(NewSignal(-3, 2, 1))
	if len(r.got) != 1 {
		t.Fatalf("emissions = %d, want 1", len(r.got))
	}
	if !approx(r.got[0].Value, 3.0) {
		t.Errorf("value = %v, want 3.0 (1.5 - -1.5)", r.got[0].Value)
	}
	if a, b := u.State(); a != 0 || b != 0 {
		t.Errorf("state = (%v, %v), want cleared", a, b)
	}
}

func TestInverterUnit(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
		want  []float32
	}{
		{"positive", []float32{0.7, 0.7}, []float32{-1.4}},
		{"negative", []float32{-2}, []float32{2}},
		{"below threshold", []float32{0.4, -0.3, 0.5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r recorder
			u := NewInverterUnit(0, r.out)
			for _, v := range tt.input {
				u.Input(NewSignal(v, 0, 0))
			}
			if len(r.got) != len(tt.want) {
				t.Fatalf("emissions = %v, want %v", r.got, tt.want)
			}
			for i, w := range tt.want {
				if !approx(r.got[i].Value, w) {
					t.Errorf("emission %d = %v, want %v", i, r.got[i].Value, w)
				}
			}
		})
	}
}

func TestDiodeUnit(t *testing.T) {
	tests := []struct {
		name  string
		sign  bool
		input []float32
		want  []float32
	}{
		{"positive passes positive", true, []float32{0.8, 0.8}, []float32{1.6}},
		{"positive blocks negative", true, []float32{-5, -5}, nil},
		{"negative passes negative", false, []float32{-0.8, -0.8}, []float32{-1.6}},
		{"negative blocks positive", false, []float32{5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r recorder
			u := NewDiodeUnit(0, r.out, tt.sign)
			for _, v := range tt.input {
				u.Input(NewSignal(v, 0, 0))
			}
			if len(r.got) != len(tt.want) {
				t.Fatalf("emissions = %v, want %v", r.got, tt.want)
			}
			for i, w := range tt.want {
				if !approx(r.got[i].Value, w) {
					t.Errorf("emission %d = %v, want %v", i, r.got[i].Value, w)
				}
			}
		})
	}
}

func TestDetachedUnitDropsEmission(t *testing.T) {
	u := NewSimpleUnit(0, nil)
	u.Input(NewSignal(5, 0, 0))
	if u.State() != 0 {
		t.Errorf("state = %v, want 0 after firing", u.State())
	}
}

func TestBuildTemplatePreservesParameters(t *testing.T) {
	units := []Unit{
		NewSimpleUnit(0, nil),
		NewAndUnit(1, nil, 4),
		NewXorUnit(2, nil),
		NewInverterUnit(3, nil),
		NewDiodeUnit(4, nil, false),
	}
	for _, u := range units {
		clone := u.BuildTemplate().Create(nil, 9, nil)
		if clone.ID() != 9 {
			t.Errorf("%T clone id = %d, want 9", u, clone.ID())
		}
		if clone.InputCount() != u.InputCount() || clone.OutputCount() != u.OutputCount() {
			t.Errorf("%T clone ports = %d/%d, want %d/%d", u,
				clone.InputCount(), clone.OutputCount(), u.InputCount(), u.OutputCount())
		}
	}
	if d := NewDiodeUnit(0, nil, false).BuildTemplate().Create(nil, 0, nil).(*DiodeUnit); d.Sign() {
		t.Error("diode sign not preserved")
	}
}
