package inspector

import (
	"testing"
)

func TestBar(t *testing.T) {
	opts := map[string]string{"max": "50"}
	tests := []struct {
		value float64
		want  string
	}{
		{25, "Score [##########----------] 25.00"},
		{0, "Score [--------------------] 0.00"},
		{-3, "Score [--------------------] -3.00"},
		{80, "Score [####################] 80.00"},
	}
	for _, tt := range tests {
		if got := Bar("Score", tt.value, opts); got != tt.want {
			t.Errorf("Bar(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestRenderField(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Field{Name: "Mutant", Value: true, Widget: WidgetBool}, "[x] Mutant"},
		{Field{Name: "Mutant", Value: false, Widget: WidgetBool}, "[ ] Mutant"},
		{Field{Name: "Score", Value: float32(1.5), Widget: WidgetLabel}, "Score: 1.50"},
		{Field{Name: "Score", Value: float32(1.5), Widget: WidgetLabel, Options: map[string]string{"fmt": "%.1f"}}, "Score: 1.5"},
		{Field{Name: "Name", Value: "x", Widget: WidgetBar}, "Name: x"},
	}
	for _, tt := range tests {
		if got := RenderField(tt.field); got != tt.want {
			t.Errorf("RenderField(%+v) = %q, want %q", tt.field, got, tt.want)
		}
	}
}
