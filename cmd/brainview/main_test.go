package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/pthm-cable/critters/critter"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/telemetry"
)

func TestParseSpecAcceptsBothForms(t *testing.T) {
	spec := critter.Spec{
		Settings: critter.Settings{MaxSpeed: 2},
		Brain:    neural.TemplateSpec{Kind: neural.KindSimple},
	}

	snap, err := json.Marshal(telemetry.BestSnapshot{Generation: 3, Fitness: 1.5, Template: spec})
	if err != nil {
		t.Fatal(err)
	}
	got, lin, err := parseSpec(snap)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got.Settings.MaxSpeed != 2 || lin.Generation != 3 {
		t.Errorf("snapshot parsed as %+v, generation %d", got.Settings, lin.Generation)
	}

	bare, err := json.Marshal(spec)
	if err != nil {
		t.Fatal(err)
	}
	got, lin, err = parseSpec(bare)
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	if got.Brain.Kind != neural.KindSimple || lin.Generation != 0 {
		t.Errorf("bare parsed as %+v, generation %d", got.Brain, lin.Generation)
	}
}

func TestLoadSpecNeedsASource(t *testing.T) {
	if _, _, err := loadSpec("", "", "", ""); !errors.Is(err, errNoSource) {
		t.Errorf("err = %v, want errNoSource", err)
	}
	if _, _, err := loadSpec("", "memory", "", "missing"); err == nil {
		t.Error("expected not-found error")
	}
}
