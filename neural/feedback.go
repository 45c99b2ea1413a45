package neural

// Feedback transforms a neuron's net input before activation. It may read
// evolvable parameters from ps and carry memory across evaluations in the
// scratch slice; scratch is the only mutable region touched during feed.
type Feedback interface {
	Name() string
	// StateSize is the number of evolvable parameters.
	StateSize() int
	// ScratchSize is the number of mutable memory slots carried between
	// evaluations of the same state slice.
	ScratchSize() int
	Apply(u float32, ps, scratch []float32) float32
}

// NoFeedback passes the net input through unchanged.
type NoFeedback struct{}

func (NoFeedback) Name() string     { return "none" }
func (NoFeedback) StateSize() int   { return 0 }
func (NoFeedback) ScratchSize() int { return 0 }
func (NoFeedback) Apply(u float32, _, _ []float32) float32 {
	return u
}

// DirectFeedback adds the previous output scaled by an evolvable gain:
// out = u + gain*prev. The previous output is kept in scratch[0], so
// successive evaluations of the same state slice form a simple recurrence.
type DirectFeedback struct{}

func (DirectFeedback) Name() string     { return "direct" }
func (DirectFeedback) StateSize() int   { return 1 }
func (DirectFeedback) ScratchSize() int { return 1 }
func (DirectFeedback) Apply(u float32, ps, scratch []float32) float32 {
	scratch[0] = u + ps[0]*scratch[0]
	return scratch[0]
}
