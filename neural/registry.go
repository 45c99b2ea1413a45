package neural

import (
	"fmt"
	"sort"
)

// Perceptual cues sampled per candidate cell, in input-vector order.
const (
	CueItems    = iota // food items at the cell
	CueForagers        // smoothed forager density
	CueKlepts          // smoothed kleptoparasite density
	CueHandlers        // smoothed handler density
	NumCues
)

// Network output vector layout.
const (
	OutSuitability = iota // preference for occupying the evaluated cell
	OutForaging           // > 0 selects the foraging posture
	NumOutputs
)

// builders maps topology selector strings to constructors. All topologies
// read NumCues inputs and produce NumOutputs outputs so the simulation can
// switch them from configuration alone.
var builders = map[string]func() (*Topology, error){
	"identity": func() (*Topology, error) {
		return NewTopology("identity",
			Layer{Neuron: NeuronType{Inputs: NumCues, Act: Identity{}, Fb: NoFeedback{}}, N: NumOutputs},
		)
	},
	"sigmoid": func() (*Topology, error) {
		return NewTopology("sigmoid",
			Layer{Neuron: NeuronType{Inputs: NumCues, Act: VarSigmoid{}, Fb: NoFeedback{}, Biased: true}, N: 8},
			Layer{Neuron: NeuronType{Inputs: 8, Act: Identity{}, Fb: NoFeedback{}, Biased: true}, N: NumOutputs},
		)
	},
	"recurrent": func() (*Topology, error) {
		return NewTopology("recurrent",
			Layer{Neuron: NeuronType{Inputs: NumCues, Act: VarSigmoid{}, Fb: DirectFeedback{}, Biased: true}, N: 8},
			Layer{Neuron: NeuronType{Inputs: 8, Act: Identity{}, Fb: NoFeedback{}, Biased: true}, N: NumOutputs},
		)
	},
	"deep": func() (*Topology, error) {
		return NewTopology("deep",
			Layer{Neuron: NeuronType{Inputs: NumCues, Act: VarSigmoid{}, Fb: NoFeedback{}, Biased: true}, N: 8},
			Layer{Neuron: NeuronType{Inputs: 8, Act: Tanh{Bipolar: true}, Fb: NoFeedback{}, Biased: true}, N: 8},
			Layer{Neuron: NeuronType{Inputs: 8, Act: Identity{}, Fb: NoFeedback{}, Biased: true}, N: NumOutputs},
		)
	},
}

// New constructs the topology named by the selector string.
func New(selector string) (*Topology, error) {
	b, ok := builders[selector]
	if !ok {
		return nil, fmt.Errorf("neural: unknown topology selector %q (known: %v)", selector, Selectors())
	}
	return b()
}

// Selectors lists the known topology selector strings, sorted.
func Selectors() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
