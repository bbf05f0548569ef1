package inspector

import (
	"testing"

	"github.com/pthm-cable/critters/components"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		opts   map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"label", WidgetLabel, map[string]string{}},
		{"bar,max:50", WidgetBar, map[string]string{"max": "50"}},
		{"label, fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"skip", WidgetSkip, map[string]string{}},
		{"sparkline", WidgetAuto, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			w, opts := ParseTag(tt.tag)
			if w != tt.widget {
				t.Errorf("widget = %v, want %v", w, tt.widget)
			}
			if len(opts) != len(tt.opts) {
				t.Fatalf("options = %v, want %v", opts, tt.opts)
			}
			for k, v := range tt.opts {
				if opts[k] != v {
					t.Errorf("option %q = %q, want %q", k, opts[k], v)
				}
			}
		})
	}
}

func TestExtractFieldsSkipsTagged(t *testing.T) {
	org := components.Organism{ID: 7, ParentID: 3, Mutant: true}
	fields := ExtractFields(&org)

	want := []struct {
		name   string
		widget Widget
	}{
		{"ID", WidgetLabel},
		{"ParentID", WidgetLabel},
		{"Mutant", WidgetBool},
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for i, w := range want {
		if fields[i].Name != w.name || fields[i].Widget != w.widget {
			t.Errorf("field %d = %s/%v, want %s/%v", i, fields[i].Name, fields[i].Widget, w.name, w.widget)
		}
	}
}

func TestExtractFieldsNonStruct(t *testing.T) {
	if got := ExtractFields(42); got != nil {
		t.Errorf("ExtractFields(42) = %v", got)
	}
	var nilOrg *components.Organism
	if got := ExtractFields(nilOrg); got != nil {
		t.Errorf("ExtractFields(nil) = %v", got)
	}
}

func TestGetFloatValue(t *testing.T) {
	for _, v := range []any{float32(2), 2.0, int32(2), uint32(2), 2} {
		got, ok := GetFloatValue(v)
		if !ok || got != 2 {
			t.Errorf("GetFloatValue(%T) = %v, %v", v, got, ok)
		}
	}
	if _, ok := GetFloatValue("2"); ok {
		t.Error("string should not convert")
	}
}
