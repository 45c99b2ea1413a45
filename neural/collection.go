package neural

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/klepto/config"
)

// Collection stores the network states of a whole population in one arena:
// N individuals, each occupying a contiguous block of Stride floats. The
// arena layout keeps reproduction (block copy), mutation (element walk) and
// archiving (bulk I/O over Data) cache-friendly and allocation-free.
type Collection struct {
	topo   *Topology
	n      int
	stride int
	data   []float32
}

// NewCollection allocates a zero-initialized arena for n individuals.
func NewCollection(topo *Topology, n int) *Collection {
	stride := topo.StateSize()
	return &Collection{
		topo:   topo,
		n:      n,
		stride: stride,
		data:   make([]float32, n*stride),
	}
}

// N is the number of individuals.
func (c *Collection) N() int { return c.n }

// Stride is the per-individual state length in floats.
func (c *Collection) Stride() int { return c.stride }

// Topology returns the shared network topology.
func (c *Collection) Topology() *Topology { return c.topo }

// Data exposes the raw arena for bulk I/O (archive write/restore).
func (c *Collection) Data() []float32 { return c.data }

// State returns individual i's full state block.
func (c *Collection) State(i int) []float32 {
	return c.data[i*c.stride : (i+1)*c.stride]
}

// Evaluate feeds the input vector through individual i's network.
func (c *Collection) Evaluate(i int, in []float32, s *Scratch) []float32 {
	return c.topo.Feed(c.State(i), in, s)
}

// Complexity counts individual i's active weights.
func (c *Collection) Complexity(i int) int {
	return c.topo.Complexity(c.State(i))
}

// Assign copies individual from's full state block out of src into slot to
// of this collection. Both collections must share the same topology.
func (c *Collection) Assign(src *Collection, from, to int) {
	if src.topo != c.topo {
		panic(fmt.Sprintf("neural: assign across topologies %q and %q", src.topo.Name(), c.topo.Name()))
	}
	copy(c.State(to), src.State(from))
}

// Randomize draws fresh Gaussian weights for every individual, leaving
// feedback scratch at zero. Variable-slope sigmoid parameters start at 1 so
// initial networks respond to their inputs.
func (c *Collection) Randomize(rng *rand.Rand, sigma float32) {
	for i := 0; i < c.n; i++ {
		state := c.State(i)
		for li, l := range c.topo.layers {
			ns := l.Neuron.StateSize()
			iw := l.Neuron.InputWeights()
			ab := l.Neuron.ActivationBegin()
			fb := l.Neuron.FeedbackBegin()
			sb := l.Neuron.ScratchBegin()
			base := c.topo.offsets[li]
			for ni := 0; ni < l.N; ni++ {
				slice := state[base+ni*ns : base+(ni+1)*ns]
				for w := 0; w < iw; w++ {
					slice[w] = float32(rng.NormFloat64()) * sigma
				}
				for w := ab; w < fb; w++ {
					slice[w] = 1
				}
				for w := fb; w < sb; w++ {
					slice[w] = float32(rng.NormFloat64()) * sigma
				}
				for w := sb; w < ns; w++ {
					slice[w] = 0
				}
			}
		}
	}
}

// MutateOne perturbs individual i's evolvable state with sparse Gaussian
// noise: each weight mutates with probability cfg.Rate, drawing from the
// big-sigma distribution with probability cfg.BigRate. Structural pruning
// (zeroing a weight with probability cfg.PruneRate) is suppressed when
// fixed is set. Feedback scratch is never touched.
func (c *Collection) MutateOne(i int, cfg config.MutationConfig, fixed bool, rng *rand.Rand) {
	state := c.State(i)
	for li, l := range c.topo.layers {
		ns := l.Neuron.StateSize()
		tw := l.Neuron.TotalWeights()
		base := c.topo.offsets[li]
		for ni := 0; ni < l.N; ni++ {
			slice := state[base+ni*ns : base+ni*ns+tw]
			for w := range slice {
				if !fixed && rng.Float64() < cfg.PruneRate {
					slice[w] = 0
					continue
				}
				if rng.Float64() < cfg.Rate {
					sigma := cfg.Sigma
					if rng.Float64() < cfg.BigRate {
						sigma = cfg.BigSigma
					}
					slice[w] += float32(rng.NormFloat64() * sigma)
				}
			}
		}
	}
}

// Mutate applies MutateOne to every individual from a single stream.
func (c *Collection) Mutate(cfg config.MutationConfig, fixed bool, rng *rand.Rand) {
	for i := 0; i < c.n; i++ {
		c.MutateOne(i, cfg, fixed, rng)
	}
}
