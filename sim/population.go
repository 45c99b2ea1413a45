package sim

import (
	"math/rand"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/klepto/config"
	"github.com/pthm-cable/klepto/landscape"
	"github.com/pthm-cable/klepto/neural"
)

// Population holds the live agents, their network arena and the fitness
// vector, plus an equally sized back buffer. Reproduction writes offspring
// into the back buffer and swaps, so parents stay intact while every
// offspring slot is built independently.
type Population struct {
	Agents  []Individual
	Nets    *neural.Collection
	Fitness []float64

	nextAgents []Individual
	nextNets   *neural.Collection

	weights   []float64
	ancestors []int
	sel       distuv.Categorical
	selReady  bool
}

// NewPopulation allocates both generation buffers for n individuals.
func NewPopulation(topo *neural.Topology, n int) *Population {
	return &Population{
		Agents:     make([]Individual, n),
		Nets:       neural.NewCollection(topo, n),
		Fitness:    make([]float64, n),
		nextAgents: make([]Individual, n),
		nextNets:   neural.NewCollection(topo, n),
		weights:    make([]float64, n),
		ancestors:  make([]int, n),
	}
}

// N is the population size.
func (p *Population) N() int { return len(p.Agents) }

// AssessFitness fills the fitness vector: banked food minus the complexity
// penalty per active weight, floored at zero.
func (p *Population) AssessFitness(cmplxPenalty float64, workers int) {
	parallelFor(len(p.Agents), workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			f := float64(p.Agents[i].Food)
			if cmplxPenalty > 0 {
				f -= cmplxPenalty * float64(p.Nets.Complexity(i))
			}
			if f < 0 {
				f = 0
			}
			p.Fitness[i] = f
		}
	})
	p.selReady = false
}

// RebuildSelection builds the fitness-proportional selection distribution
// from the current fitness vector. When every fitness is zero, selection
// falls back to uniform so a collapsed generation still reproduces.
func (p *Population) RebuildSelection(seed1, seed2 uint64) {
	total := 0.0
	for i, f := range p.Fitness {
		p.weights[i] = f
		total += f
	}
	if total <= 0 {
		for i := range p.weights {
			p.weights[i] = 1
		}
	}
	p.sel = distuv.NewCategorical(p.weights, randv2.NewPCG(seed1, seed2))
	p.selReady = true
}

// SampleAncestors draws one ancestor per offspring slot from the selection
// distribution. The returned slice is reused across calls.
func (p *Population) SampleAncestors() []int {
	if !p.selReady {
		panic("sim: SampleAncestors before RebuildSelection")
	}
	for i := range p.ancestors {
		p.ancestors[i] = int(p.sel.Rand())
	}
	return p.ancestors
}

// Reproduce replaces the population: each offspring slot samples an
// ancestor, sprouts near the ancestor's position, copies the ancestor's
// network state and mutates it, then the generation buffers swap. Ancestor
// sampling is sequential; slot construction runs in parallel on streams
// derived from (masterSeed, epoch, slot) so results do not depend on
// goroutine scheduling.
func (p *Population) Reproduce(land *landscape.Landscape, acfg config.AgentsConfig, mcfg config.MutationConfig, fixed bool, masterSeed int64, epoch, workers int) {
	anc := p.SampleAncestors()

	parallelFor(len(p.Agents), workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			rng := rand.New(rand.NewSource(offspringSeed(masterSeed, epoch, i)))
			a := anc[i]

			r := acfg.SproutRadius
			off := landscape.Coord{
				X: rng.Intn(2*r+1) - r,
				Y: rng.Intn(2*r+1) - r,
			}
			p.nextAgents[i].Sprout(land.Wrap(p.Agents[a].Pos.Add(off)), a)
			p.nextNets.Assign(p.Nets, a, i)
			p.nextNets.MutateOne(i, mcfg, fixed, rng)
		}
	})

	p.Agents, p.nextAgents = p.nextAgents, p.Agents
	p.Nets, p.nextNets = p.nextNets, p.Nets
	p.selReady = false
}

// RoleCounts tallies the population by current role.
func (p *Population) RoleCounts() (foragers, klepts, handlers int) {
	for i := range p.Agents {
		switch p.Agents[i].Role() {
		case landscape.RoleForager:
			foragers++
		case landscape.RoleKlept:
			klepts++
		case landscape.RoleHandler:
			handlers++
		}
	}
	return foragers, klepts, handlers
}

// MeanComplexity averages active weight counts over the population.
func (p *Population) MeanComplexity() float64 {
	if len(p.Agents) == 0 {
		return 0
	}
	total := 0
	for i := range p.Agents {
		total += p.Nets.Complexity(i)
	}
	return float64(total) / float64(len(p.Agents))
}
