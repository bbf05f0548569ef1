// Command brainview replays a saved critter template and prints its
// components and brain.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/critter"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/inspector"
	"github.com/pthm-cable/critters/storage"
	"github.com/pthm-cable/critters/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	templatePath := flag.String("template", "", "best.json or a bare template JSON file")
	storeKind := flag.String("store", "", "Load the template from this store instead (memory, sqlite)")
	storePath := flag.String("store-path", "", "SQLite database path")
	id := flag.String("id", "", "Template id in the store")
	ticks := flag.Int("ticks", 0, "Ticks to replay before printing (0 = ticks_per_run)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	spec, lineage, err := loadSpec(*templatePath, *storeKind, *storePath, *id)
	if err != nil {
		slog.Error("failed to load template", "error", err)
		os.Exit(1)
	}

	n := *ticks
	if n <= 0 {
		n = cfg.Simulation.TicksPerRun
	}
	c, fit, err := game.Replay(cfg, spec, n)
	if err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}

	ins := inspector.NewInspector(os.Stdout)
	if err := ins.WriteOrganism(components.Organism{Critter: c}, fit, lineage); err != nil {
		slog.Error("write failed", "error", err)
		os.Exit(1)
	}
}

var errNoSource = errors.New("one of -template or -store with -id is required")

func loadSpec(path, kind, dbPath, id string) (critter.Spec, components.Lineage, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return critter.Spec{}, components.Lineage{}, err
		}
		return parseSpec(data)

	case kind != "" && id != "":
		store, err := storage.NewStore(kind, dbPath)
		if err != nil {
			return critter.Spec{}, components.Lineage{}, err
		}
		ctx := context.Background()
		if err := store.Init(ctx); err != nil {
			return critter.Spec{}, components.Lineage{}, err
		}
		defer storage.CloseIfSupported(store)

		rec, ok, err := store.GetTemplate(ctx, id)
		if err != nil {
			return critter.Spec{}, components.Lineage{}, err
		}
		if !ok {
			return critter.Spec{}, components.Lineage{}, fmt.Errorf("template %q not found", id)
		}
		return rec.Spec, components.Lineage{Generation: rec.Generation}, nil

	default:
		return critter.Spec{}, components.Lineage{}, errNoSource
	}
}

// parseSpec accepts either a best.json snapshot or a bare template.
func parseSpec(data []byte) (critter.Spec, components.Lineage, error) {
	var snap telemetry.BestSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return critter.Spec{}, components.Lineage{}, err
	}
	if snap.Template.Brain.Kind != "" {
		return snap.Template, components.Lineage{Generation: snap.Generation}, nil
	}

	var spec critter.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return critter.Spec{}, components.Lineage{}, err
	}
	return spec, components.Lineage{}, nil
}
