package neural

// Layer is N identical neurons sharing one input vector. Each neuron owns a
// disjoint sub-range of the layer's state; there is no aliasing between
// neurons.
type Layer struct {
	Neuron NeuronType
	N      int
}

// InputSize is the layer's input vector length.
func (l Layer) InputSize() int { return l.Neuron.Inputs }

// OutputSize is the layer's output vector length (one scalar per neuron).
func (l Layer) OutputSize() int { return l.N }

// StateSize is the total state length across all neurons.
func (l Layer) StateSize() int { return l.N * l.Neuron.StateSize() }

// Feed evaluates every neuron over the shared input, writing one output per
// neuron into out. state must be the layer's state block and out must have
// length l.N.
func (l Layer) Feed(in, state, out []float32) {
	ns := l.Neuron.StateSize()
	for i := 0; i < l.N; i++ {
		out[i] = l.Neuron.Feed(in, state[i*ns:(i+1)*ns])
	}
}
