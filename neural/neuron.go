package neural

// NeuronType describes one neuron kind: input arity, activation and
// feedback families, and whether a bias weight is present. The state-slice
// layout is a pure function of these four values:
//
//	[ weights (+bias) | activation params | feedback params | feedback scratch ]
//
// Everything before the scratch region is evolvable; the scratch region is
// runtime memory and is never mutated by the genetic operators.
type NeuronType struct {
	Inputs int
	Act    Activation
	Fb     Feedback
	Biased bool
}

// InputWeights is the number of ordinary weights, including the bias.
func (nt NeuronType) InputWeights() int {
	if nt.Biased {
		return nt.Inputs + 1
	}
	return nt.Inputs
}

// TotalWeights is the size of the evolvable region of the state slice.
func (nt NeuronType) TotalWeights() int {
	return nt.InputWeights() + nt.Act.StateSize() + nt.Fb.StateSize()
}

// StateSize is the full state-slice length, scratch included.
func (nt NeuronType) StateSize() int {
	return nt.TotalWeights() + nt.Fb.ScratchSize()
}

// ActivationBegin is the offset of the activation parameters.
func (nt NeuronType) ActivationBegin() int { return nt.InputWeights() }

// FeedbackBegin is the offset of the feedback parameters.
func (nt NeuronType) FeedbackBegin() int {
	return nt.ActivationBegin() + nt.Act.StateSize()
}

// ScratchBegin is the offset of the feedback scratch memory.
func (nt NeuronType) ScratchBegin() int {
	return nt.FeedbackBegin() + nt.Fb.StateSize()
}

// Feed computes the neuron's output for the given input vector and state
// slice. The weighted sum runs through feedback (which may update scratch)
// and then through activation. len(in) must equal nt.Inputs and len(state)
// must equal nt.StateSize().
func (nt NeuronType) Feed(in, state []float32) float32 {
	var u float32
	w := state
	if nt.Biased {
		u = w[0]
		w = w[1:]
	}
	for i, x := range in {
		u += w[i] * x
	}

	fb := nt.FeedbackBegin()
	sc := nt.ScratchBegin()
	u = nt.Fb.Apply(u, state[fb:sc], state[sc:nt.StateSize()])
	return nt.Act.Apply(u, state[nt.ActivationBegin():fb])
}
