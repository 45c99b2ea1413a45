package neural

import "fmt"

// Topology is a validated chain of layers with precomputed state offsets.
// Structural validity (each layer's output size feeding the next layer's
// input size) is checked once at construction and never at evaluation time.
// Two state slices produced for the same Topology always have identical
// length and identical per-neuron offsets, which is what makes whole-state
// copy and element-wise mutation safe without structural knowledge.
type Topology struct {
	name       string
	layers     []Layer
	offsets    []int // state offset of each layer
	stateSize  int
	inputSize  int
	outputSize int
	maxWidth   int // widest layer output, sizes evaluation buffers
}

// NewTopology builds and validates a topology. It returns an error for an
// empty layer list or any adjacent-layer size mismatch.
func NewTopology(name string, layers ...Layer) (*Topology, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("neural: topology %q has no layers", name)
	}
	t := &Topology{
		name:       name,
		layers:     layers,
		offsets:    make([]int, len(layers)),
		inputSize:  layers[0].InputSize(),
		outputSize: layers[len(layers)-1].OutputSize(),
	}
	for i, l := range layers {
		if l.N < 1 {
			return nil, fmt.Errorf("neural: topology %q layer %d is empty", name, i)
		}
		if i > 0 && layers[i-1].OutputSize() != l.InputSize() {
			return nil, fmt.Errorf("neural: topology %q layer %d input size %d != layer %d output size %d",
				name, i, l.InputSize(), i-1, layers[i-1].OutputSize())
		}
		t.offsets[i] = t.stateSize
		t.stateSize += l.StateSize()
		if l.OutputSize() > t.maxWidth {
			t.maxWidth = l.OutputSize()
		}
	}
	return t, nil
}

// Name returns the topology's selector name.
func (t *Topology) Name() string { return t.name }

// Layers returns the layer chain.
func (t *Topology) Layers() []Layer { return t.layers }

// InputSize is the first layer's input size.
func (t *Topology) InputSize() int { return t.inputSize }

// OutputSize is the last layer's output size.
func (t *Topology) OutputSize() int { return t.outputSize }

// StateSize is the flat per-individual state length.
func (t *Topology) StateSize() int { return t.stateSize }

// Scratch holds the two ping-pong buffers one evaluation needs. Each
// goroutine evaluating networks owns its own Scratch.
type Scratch struct {
	a, b []float32
}

// NewScratch allocates evaluation buffers sized for the topology.
func (t *Topology) NewScratch() *Scratch {
	return &Scratch{
		a: make([]float32, t.maxWidth),
		b: make([]float32, t.maxWidth),
	}
}

// Feed chains the layer evaluations left to right over the flat state
// slice. The returned slice aliases one of the scratch buffers and is valid
// until the next Feed with the same Scratch.
func (t *Topology) Feed(state, in []float32, s *Scratch) []float32 {
	cur := in
	out := s.a
	for i, l := range t.layers {
		out = out[:l.OutputSize()]
		l.Feed(cur, state[t.offsets[i]:t.offsets[i]+l.StateSize()], out)
		cur = out
		if i%2 == 0 {
			out = s.b
		} else {
			out = s.a
		}
	}
	return cur
}

// Complexity counts the active (non-zero) evolvable weights in a state
// slice. Feedback scratch is excluded: it is runtime memory, not genome.
func (t *Topology) Complexity(state []float32) int {
	active := 0
	for i, l := range t.layers {
		ns := l.Neuron.StateSize()
		tw := l.Neuron.TotalWeights()
		base := t.offsets[i]
		for n := 0; n < l.N; n++ {
			slice := state[base+n*ns : base+n*ns+tw]
			for _, w := range slice {
				if w != 0 {
					active++
				}
			}
		}
	}
	return active
}

// NeuronState returns the state slice of one neuron, addressed by layer and
// position, for diagnostics. It panics on out-of-range indices.
func (t *Topology) NeuronState(state []float32, layer, idx int) []float32 {
	l := t.layers[layer]
	if idx < 0 || idx >= l.N {
		panic(fmt.Sprintf("neural: neuron index %d out of range for layer %d (size %d)", idx, layer, l.N))
	}
	ns := l.Neuron.StateSize()
	base := t.offsets[layer] + idx*ns
	return state[base : base+ns]
}
