package sim

import (
	"log/slog"
	"time"
)

// Msg identifies a simulation lifecycle event.
type Msg int

const (
	// Initialized fires once before the first timestep.
	Initialized Msg = iota
	// NewGeneration fires at the start of every main generation.
	NewGeneration
	// PostTimestep fires after every completed timestep, burn-in included.
	PostTimestep
	// GenerationDone fires after fitness assessment, before reproduction,
	// so observers see the evaluated generation intact.
	GenerationDone
	// Finished fires once after the last generation.
	Finished
)

func (m Msg) String() string {
	switch m {
	case Initialized:
		return "initialized"
	case NewGeneration:
		return "new-generation"
	case PostTimestep:
		return "post-timestep"
	case GenerationDone:
		return "generation-done"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Observer receives lifecycle notifications. Returning false vetoes the
// run: the simulation stops and Run returns false.
type Observer interface {
	Notify(s *Simulation, msg Msg) bool
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(s *Simulation, msg Msg) bool

// Notify calls f.
func (f ObserverFunc) Notify(s *Simulation, msg Msg) bool { return f(s, msg) }

// MultiObserver fans notifications out to every member. All members are
// notified even when one vetoes; the result is the conjunction.
type MultiObserver []Observer

// Notify delivers the event to every observer.
func (m MultiObserver) Notify(s *Simulation, msg Msg) bool {
	ok := true
	for _, o := range m {
		if !o.Notify(s, msg) {
			ok = false
		}
	}
	return ok
}

// LogObserver emits structured progress logs per generation.
type LogObserver struct {
	log *slog.Logger
}

// NewLogObserver wraps a logger as an observer.
func NewLogObserver(log *slog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// Notify logs initialization, per-generation summaries and completion.
func (lo *LogObserver) Notify(s *Simulation, msg Msg) bool {
	switch msg {
	case Initialized:
		cfg := s.Config()
		lo.log.Info("simulation initialized",
			"agents", cfg.Agents.N,
			"topology", cfg.Agents.Ann,
			"landscape", s.Landscape().Dim(),
			"burnin", cfg.Run.Burnin,
			"generations", cfg.Run.Generations,
			"seed", s.Seed(),
		)
	case GenerationDone:
		gs, ok := s.Analysis().Last()
		if !ok {
			return true
		}
		lo.log.Info("generation complete",
			"generation", gs.Generation,
			"fixed", gs.Fixed,
			"mean_fitness", gs.MeanFitness,
			"max_fitness", gs.MaxFitness,
			"mean_complexity", gs.MeanComplexity,
			"repro_ind", gs.Ancestors,
			"foragers", gs.Foragers,
			"klepts", gs.Klepts,
			"handlers", gs.Handlers,
			"duration", time.Duration(gs.DurationMs*float64(time.Millisecond)),
		)
	case Finished:
		lo.log.Info("simulation finished", "generations", len(s.Analysis().Generations()))
	}
	return true
}
