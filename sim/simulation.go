package sim

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/pthm-cable/klepto/archive"
	"github.com/pthm-cable/klepto/config"
	"github.com/pthm-cable/klepto/landscape"
	"github.com/pthm-cable/klepto/neural"
	"github.com/pthm-cable/klepto/telemetry"
)

// Simulation owns the landscape and the population and drives the
// generational loop. All stochastic decisions outside reproduction draw
// from one master stream seeded at construction, so a (config, seed) pair
// reproduces a run exactly.
type Simulation struct {
	cfg      *config.Config
	seed     int64
	rng      *rand.Rand
	land     *landscape.Landscape
	kernel   *landscape.Kernel
	pop      *Population
	analysis telemetry.Analysis

	g, t     int // current generation and timestep; g is -1 during burn-in
	epoch    int // reproduction counter across burn-in and main generations
	workers  int
	genStart time.Time

	scratches []*neural.Scratch
	presences []landscape.Presence
	victims   []int
	pairs     []conflictPair
}

// conflictPair is one attacker matched to its chosen victim.
type conflictPair struct {
	attacker, victim int
}

// New builds a simulation from configuration: the landscape (from a
// capacity image or procedural noise) with full initial item cover, a
// population with randomized networks at uniform random positions, and
// optionally network states restored from a prior run's archive.
func New(cfg *config.Config, seed int64) (*Simulation, error) {
	topo, err := neural.New(cfg.Agents.Ann)
	if err != nil {
		return nil, err
	}

	var land *landscape.Landscape
	if cfg.Landscape.CapacityImage != "" {
		ch, err := landscape.ParseChannel(cfg.Landscape.ImageChannel)
		if err != nil {
			return nil, err
		}
		land, err = landscape.NewFromImage(cfg.Landscape.CapacityImage, ch)
		if err != nil {
			return nil, err
		}
	} else {
		land, err = landscape.New(cfg.Landscape.Size)
		if err != nil {
			return nil, err
		}
		land.GenerateCapacity(seed, cfg.Landscape.Noise)
	}
	land.FillItemsToCap(float32(cfg.Landscape.MaxItemCap))

	s := &Simulation{
		cfg:     cfg,
		seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
		land:    land,
		kernel:  landscape.NewKernel(cfg.Landscape.KernelRadius),
		pop:     NewPopulation(topo, cfg.Agents.N),
		g:       -1,
		workers: runtime.GOMAXPROCS(0),
	}
	s.scratches = make([]*neural.Scratch, s.workers)
	for i := range s.scratches {
		s.scratches[i] = topo.NewScratch()
	}
	s.presences = make([]landscape.Presence, cfg.Agents.N)

	s.pop.Nets.Randomize(s.rng, 0.5)
	dim := land.Dim()
	for i := range s.pop.Agents {
		s.pop.Agents[i].Pos = landscape.Coord{X: s.rng.Intn(dim), Y: s.rng.Intn(dim)}
	}

	if cfg.Agents.InitArchive != "" {
		if err := s.restoreNetworks(cfg.Agents.InitArchive, cfg.Agents.InitGeneration); err != nil {
			return nil, err
		}
	}

	s.refreshOccupancy()
	return s, nil
}

// restoreNetworks overwrites the population arena from an archive record.
func (s *Simulation) restoreNetworks(path string, generation int) error {
	r, err := archive.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	if generation < 0 {
		generation, err = r.Last()
		if err != nil {
			return err
		}
	}
	snap, err := r.Extract(generation)
	if err != nil {
		return err
	}
	if snap.Count != s.pop.Nets.N() || snap.StateSize != s.pop.Nets.Stride() {
		return fmt.Errorf("sim: archive record %d holds %d individuals of state size %d, configuration needs %d of %d",
			generation, snap.Count, snap.StateSize, s.pop.Nets.N(), s.pop.Nets.Stride())
	}
	return snap.Decompress(s.pop.Nets.Data())
}

// Config returns the simulation's configuration.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Seed returns the master seed.
func (s *Simulation) Seed() int64 { return s.seed }

// Generation returns the current main generation, or -1 during burn-in.
func (s *Simulation) Generation() int { return s.g }

// Timestep returns the current timestep within the generation.
func (s *Simulation) Timestep() int { return s.t }

// Landscape returns the spatial substrate.
func (s *Simulation) Landscape() *landscape.Landscape { return s.land }

// Population returns the live population.
func (s *Simulation) Population() *Population { return s.pop }

// Analysis returns the accumulated per-generation records.
func (s *Simulation) Analysis() *telemetry.Analysis { return &s.analysis }

// Fixed reports whether the current generation runs in fixed mode: the
// trailing fixed_generations use the longer timestep count and suppress
// structural pruning.
func (s *Simulation) Fixed() bool {
	return s.g >= 0 && s.g >= s.cfg.Run.Generations-s.cfg.Run.FixedGenerations
}

// Run executes burn-in and main generations, notifying obs (which may be
// nil) at each lifecycle point. It returns false if any observer vetoed.
func (s *Simulation) Run(obs Observer) bool {
	notify := func(msg Msg) bool {
		if obs == nil {
			return true
		}
		return obs.Notify(s, msg)
	}

	if !notify(Initialized) {
		return false
	}

	s.g = -1
	for b := 0; b < s.cfg.Run.Burnin; b++ {
		for s.t = 0; s.t < s.cfg.Run.Timesteps; s.t++ {
			s.step()
			if !notify(PostTimestep) {
				return false
			}
		}
		s.pop.AssessFitness(s.cfg.Agents.CmplxPenalty, s.workers)
		s.reproduce(false)
	}

	for s.g = 0; s.g < s.cfg.Run.Generations; s.g++ {
		s.genStart = time.Now()
		if !notify(NewGeneration) {
			return false
		}

		timesteps := s.cfg.Run.Timesteps
		if s.Fixed() {
			timesteps = s.cfg.Run.TimestepsFixed
		}
		for s.t = 0; s.t < timesteps; s.t++ {
			s.step()
			if !notify(PostTimestep) {
				return false
			}
		}

		s.pop.AssessFitness(s.cfg.Agents.CmplxPenalty, s.workers)
		s.recordGeneration()
		if !notify(GenerationDone) {
			return false
		}
		s.reproduce(s.Fixed())
	}

	return notify(Finished)
}

// step advances the ecology by one timestep: resource growth, handling
// countdowns, movement, then foraging and conflict resolution. Occupancy is
// refreshed after every phase that changes positions or roles so perception
// and attacker targeting stay consistent.
func (s *Simulation) step() {
	s.land.GrowItems(float32(s.cfg.Landscape.MaxItemCap), float32(s.cfg.Landscape.ItemGrowth), s.rng)

	for i := range s.pop.Agents {
		s.pop.Agents[i].DoHandle()
	}
	s.refreshOccupancy()

	s.moveAgents()
	s.refreshOccupancy()

	s.resolveForagingAndConflicts()
	s.refreshOccupancy()
}

// refreshOccupancy rebuilds the per-role count and density layers from the
// current agent state.
func (s *Simulation) refreshOccupancy() {
	for i := range s.pop.Agents {
		s.presences[i] = landscape.Presence{Pos: s.pop.Agents[i].Pos, Role: s.pop.Agents[i].Role()}
	}
	s.land.UpdateOccupancy(s.kernel, s.presences)
}

// mooreOffsets is the 3x3 neighborhood an agent evaluates, current cell
// included.
var mooreOffsets = [9]landscape.Coord{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// moveAgents lets every non-handling agent pick the neighboring cell its
// network scores highest and adopt the posture the winning evaluation
// chose. Agents only read the shared layers and write their own slot, so
// the loop parallelizes; each worker evaluates with its own scratch.
func (s *Simulation) moveAgents() {
	agents := s.pop.Agents
	parallelFor(len(agents), s.workers, func(w, start, end int) {
		scratch := s.scratches[w]
		var in [neural.NumCues]float32
		for i := start; i < end; i++ {
			ind := &agents[i]
			if ind.Handling {
				continue
			}

			best := ind.Pos
			bestSuit := float32(math.Inf(-1))
			bestForaging := false
			for _, off := range mooreOffsets {
				c := s.land.Wrap(ind.Pos.Add(off))
				in[neural.CueItems] = s.land.At(landscape.Items, c)
				in[neural.CueForagers] = s.land.At(landscape.Foragers, c)
				in[neural.CueKlepts] = s.land.At(landscape.Klepts, c)
				in[neural.CueHandlers] = s.land.At(landscape.Handlers, c)

				out := s.pop.Nets.Evaluate(i, in[:], scratch)
				if out[neural.OutSuitability] > bestSuit {
					bestSuit = out[neural.OutSuitability]
					best = c
					bestForaging = out[neural.OutForaging] > 0
				}
			}
			ind.Pos = best
			ind.Foraging = bestForaging
		}
	})
}

// resolveForagingAndConflicts runs the sequential stochastic phase of the
// timestep on the master stream.
//
// Foragers first test their cell: with n items present, detection succeeds
// with probability 1-(1-rate)^n, removing one item and starting the
// handling countdown. Kleptoparasites sharing a cell with at least one
// handler then each pick a victim uniformly among the co-located handlers;
// the resulting pairs resolve in shuffled order so no agent index is
// favored. A victim already displaced by an earlier fight is skipped. The
// winner ends up handling with the remaining countdown, the loser flees.
func (s *Simulation) resolveForagingAndConflicts() {
	agents := s.pop.Agents

	detection := s.cfg.Landscape.DetectionRate
	for i := range agents {
		ind := &agents[i]
		if ind.Handling || !ind.Foraging {
			continue
		}
		items := float64(s.land.At(landscape.Items, ind.Pos))
		if items < 1 {
			continue
		}
		if s.rng.Float64() < 1-math.Pow(1-detection, items) {
			ind.PickItem(s.cfg.Agents.HandlingTime)
			s.land.Add(landscape.Items, ind.Pos, -1)
		}
	}

	s.pairs = s.pairs[:0]
	for i := range agents {
		a := &agents[i]
		if a.Handling || a.Foraging {
			continue
		}
		if s.land.At(landscape.HandlersCount, a.Pos) < 1 {
			continue
		}
		s.victims = s.victims[:0]
		for j := range agents {
			if j == i {
				continue
			}
			if agents[j].Handling && agents[j].Pos == a.Pos {
				s.victims = append(s.victims, j)
			}
		}
		if len(s.victims) == 0 {
			continue
		}
		s.pairs = append(s.pairs, conflictPair{
			attacker: i,
			victim:   s.victims[s.rng.Intn(len(s.victims))],
		})
	}

	s.rng.Shuffle(len(s.pairs), func(a, b int) {
		s.pairs[a], s.pairs[b] = s.pairs[b], s.pairs[a]
	})

	for _, p := range s.pairs {
		v := &agents[p.victim]
		if !v.Handling {
			continue // displaced by an earlier fight this timestep
		}
		a := &agents[p.attacker]
		if a.Handling {
			continue // already won an item this timestep
		}
		if s.rng.Float64() >= s.cfg.Conflict.ProbFight {
			continue
		}
		if s.rng.Float64() < s.cfg.Conflict.ProbAttackerWins {
			a.PickItem(v.HandleTime)
			v.Flee(s.land, s.cfg.Agents.FleeRadius, s.rng)
		} else {
			a.Flee(s.land, s.cfg.Agents.FleeRadius, s.rng)
		}
	}
}

// recordGeneration appends this generation's analysis record.
func (s *Simulation) recordGeneration() {
	mean, std, max := telemetry.FitnessSummary(s.pop.Fitness)
	foragers, klepts, handlers := s.pop.RoleCounts()

	var totalItems float64
	for _, v := range s.land.Data(landscape.Items) {
		totalItems += float64(v)
	}

	ancestors := make([]int, len(s.pop.Agents))
	for i := range s.pop.Agents {
		ancestors[i] = s.pop.Agents[i].Ancestor
	}

	s.analysis.Append(telemetry.GenerationStats{
		Generation:     s.g,
		Fixed:          s.Fixed(),
		MeanFitness:    mean,
		StdFitness:     std,
		MaxFitness:     max,
		MeanComplexity: s.pop.MeanComplexity(),
		Ancestors:      telemetry.CountDistinct(ancestors),
		TotalItems:     totalItems,
		Foragers:       foragers,
		Klepts:         klepts,
		Handlers:       handlers,
		DurationMs:     float64(time.Since(s.genStart).Microseconds()) / 1000,
	})
}

// reproduce builds the next generation and advances the epoch counter that
// keys the per-slot reproduction streams.
func (s *Simulation) reproduce(fixed bool) {
	s.pop.RebuildSelection(s.rng.Uint64(), s.rng.Uint64())
	s.pop.Reproduce(s.land, s.cfg.Agents, s.cfg.Mutation, fixed, s.seed, s.epoch, s.workers)
	s.epoch++
}
