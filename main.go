package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/inspector"
	"github.com/pthm-cable/critters/storage"
	"github.com/pthm-cable/critters/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, or time-based if that is 0 too)")
	maxGenerations := flag.Int("max-generations", -1, "Stop after N generations (0 = unlimited, -1 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and best template")
	storeKind := flag.String("store", "", "Template store: memory or sqlite (empty = use config)")
	storePath := flag.String("store-path", "", "SQLite database path (empty = use config)")
	logStats := flag.Bool("log-stats", true, "Output per-generation stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	inspect := flag.Bool("inspect", false, "Print the best critter's components and brain on exit")

	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = time.Now().UnixNano()
	}
	if *maxGenerations >= 0 {
		cfg.Simulation.MaxGenerations = *maxGenerations
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *storeKind != "" {
		cfg.Storage.Kind = *storeKind
	}
	if *storePath != "" {
		cfg.Storage.Path = *storePath
	}

	if err := run(cfg, *logStats, *inspect); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logStats, inspect bool) error {
	output, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return err
	}
	if err := store.Init(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := storage.CloseIfSupported(store); err != nil {
			slog.Warn("closing store", "error", err)
		}
	}()

	g, err := game.NewGame(cfg, game.Options{
		Output:   output,
		Store:    store,
		LogStats: logStats,
	})
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting evolution",
		"run_id", g.RunID(),
		"seed", cfg.Simulation.Seed,
		"population", cfg.Simulation.Population,
		"ticks_per_run", cfg.Simulation.TicksPerRun,
		"max_generations", cfg.Simulation.MaxGenerations,
		"store", cfg.Storage.Kind,
	)

	for cfg.Simulation.MaxGenerations == 0 || g.Generation() < cfg.Simulation.MaxGenerations {
		if err := g.RunGeneration(); err != nil {
			return err
		}
	}

	best, ok := g.Best()
	if !ok {
		return nil
	}
	slog.Info("max generations reached",
		"generation", g.Generation(),
		"best_generation", best.Generation,
		"best_fitness", best.Fitness,
	)

	if inspect {
		c, fit, err := game.Replay(cfg, best.Template, cfg.Simulation.TicksPerRun)
		if err != nil {
			return err
		}
		ins := inspector.NewInspector(os.Stdout)
		return ins.WriteOrganism(components.Organism{Critter: c}, fit, components.Lineage{Generation: best.Generation})
	}
	return nil
}
