package game

import (
	"testing"

	"github.com/pthm-cable/critters/critter"
)

func TestReplayScoresLikeARun(t *testing.T) {
	cfg := loadConfig(t, uniformWorld)
	g := newTestGame(t, cfg, Options{})

	spec, err := critter.Encode(organisms(g)[0].Critter.BuildTemplate())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	c, fit, err := Replay(cfg, spec, 10)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if fit.Ticks != 10 {
		t.Errorf("ticks = %d, want 10", fit.Ticks)
	}
	if fit.Score != 5 {
		t.Errorf("score = %v, want 5", fit.Score)
	}
	if c.SensorCount() != 2 {
		t.Errorf("sensors = %d, want 2", c.SensorCount())
	}
}
