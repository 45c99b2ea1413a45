package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/klepto/archive"
	"github.com/pthm-cable/klepto/config"
	"github.com/pthm-cable/klepto/sim"
	"github.com/pthm-cable/klepto/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and network archive (overrides config)")
	generations := flag.Int("generations", 0, "Main generations to run (0 = use config)")
	burnin := flag.Int("burnin", -1, "Burn-in generations (-1 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *generations > 0 {
		cfg.Run.Generations = *generations
	}
	if *burnin >= 0 {
		cfg.Run.Burnin = *burnin
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration after overrides", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	om, err := telemetry.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	s, err := sim.New(cfg, rngSeed)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}

	observers := sim.MultiObserver{sim.NewLogObserver(logger)}

	// Stream generation stats to CSV as they complete
	if om != nil {
		observers = append(observers, sim.ObserverFunc(func(s *sim.Simulation, msg sim.Msg) bool {
			if msg != sim.GenerationDone {
				return true
			}
			gs, ok := s.Analysis().Last()
			if !ok {
				return true
			}
			if err := om.WriteGeneration(gs); err != nil {
				slog.Error("failed to write generation stats", "error", err)
				return false
			}
			return true
		}))
	}

	// Archive every evaluated generation's network arena
	if path := om.ArchivePath(); path != "" {
		aw, err := archive.NewWriter(path)
		if err != nil {
			slog.Error("failed to create network archive", "error", err)
			os.Exit(1)
		}
		defer aw.Close()

		observers = append(observers, sim.ObserverFunc(func(s *sim.Simulation, msg sim.Msg) bool {
			if msg != sim.GenerationDone {
				return true
			}
			nets := s.Population().Nets
			if err := aw.Append(s.Generation(), nets.N(), nets.Stride(), nets.Data()); err != nil {
				slog.Error("failed to archive networks", "error", err)
				return false
			}
			return true
		}))
	}

	if !s.Run(observers) {
		slog.Error("simulation stopped early")
		os.Exit(1)
	}
}
