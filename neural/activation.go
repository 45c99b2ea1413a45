// Package neural implements the evolvable feed-forward network engine that
// drives agent behavior. A network's entire parameter set - input weights,
// activation parameters, feedback parameters and feedback scratch memory -
// lives in one flat float32 slice with a layout computed once from the
// topology, so copying, mutating and archiving individuals are plain
// array-element operations.
package neural

import "math"

// Activation maps a neuron's net input to its output. Implementations are
// pure scalar transforms; evolvable extra parameters, if any, are read from
// the ps slice.
type Activation interface {
	Name() string
	// StateSize is the number of evolvable extra parameters.
	StateSize() int
	// Min and Max declare the closed output range.
	Min() float32
	Max() float32
	Apply(u float32, ps []float32) float32
}

// Zero outputs the constant 0 regardless of input.
type Zero struct{}

func (Zero) Name() string                     { return "zero" }
func (Zero) StateSize() int                   { return 0 }
func (Zero) Min() float32                     { return 0 }
func (Zero) Max() float32                     { return 0 }
func (Zero) Apply(float32, []float32) float32 { return 0 }

// Identity passes the net input through unchanged.
type Identity struct{}

func (Identity) Name() string   { return "identity" }
func (Identity) StateSize() int { return 0 }
func (Identity) Min() float32   { return -math.MaxFloat32 }
func (Identity) Max() float32   { return math.MaxFloat32 }
func (Identity) Apply(u float32, _ []float32) float32 {
	return u
}

// Sign is a hard-limit step. Positive drive maps to the low end of the
// range, everything else to the high end.
type Sign struct {
	Bipolar bool
}

func (s Sign) Name() string {
	if s.Bipolar {
		return "sgn_bipolar"
	}
	return "sgn_unipolar"
}
func (Sign) StateSize() int { return 0 }
func (s Sign) Min() float32 {
	if s.Bipolar {
		return -1
	}
	return 0
}
func (Sign) Max() float32 { return 1 }
func (s Sign) Apply(u float32, _ []float32) float32 {
	if s.Bipolar {
		if u > 0 {
			return -1
		}
		return 1
	}
	if u > 0 {
		return 0
	}
	return 1
}

// ReLU clamps negative input at zero.
type ReLU struct{}

func (ReLU) Name() string   { return "rtlu" }
func (ReLU) StateSize() int { return 0 }
func (ReLU) Min() float32   { return 0 }
func (ReLU) Max() float32   { return math.MaxFloat32 }
func (ReLU) Apply(u float32, _ []float32) float32 {
	if u < 0 {
		return 0
	}
	return u
}

// Tanh is the hyperbolic tangent, bipolar in [-1,1] or rescaled to [0,1].
type Tanh struct {
	Bipolar bool
}

func (t Tanh) Name() string {
	if t.Bipolar {
		return "tanh_bipolar"
	}
	return "tanh_unipolar"
}
func (Tanh) StateSize() int { return 0 }
func (t Tanh) Min() float32 {
	if t.Bipolar {
		return -1
	}
	return 0
}
func (Tanh) Max() float32 { return 1 }
func (t Tanh) Apply(u float32, _ []float32) float32 {
	v := float32(math.Tanh(float64(u)))
	if t.Bipolar {
		return v
	}
	return 0.5 * (v + 1)
}

// Sigmoid is a logistic activation with slope fixed at construction as the
// rational Num/Den. The bipolar form spans [-1,1], the unipolar form [0,1];
// both output the exact midpoint of their range at u=0.
type Sigmoid struct {
	Num, Den int
	Bipolar  bool
}

func (s Sigmoid) Name() string {
	if s.Bipolar {
		return "sig_bipolar"
	}
	return "sig_unipolar"
}
func (Sigmoid) StateSize() int { return 0 }
func (s Sigmoid) Min() float32 {
	if s.Bipolar {
		return -1
	}
	return 0
}
func (Sigmoid) Max() float32 { return 1 }
func (s Sigmoid) Apply(u float32, _ []float32) float32 {
	a := -float64(s.Num) / float64(s.Den)
	e := math.Exp(a * float64(u))
	if s.Bipolar {
		return float32((1 - e) / (1 + e))
	}
	return float32(1 / (1 + e))
}

// VarSigmoid is a logistic activation whose slope is an evolvable parameter
// stored as the single extra-state entry of each neuron carrying it.
type VarSigmoid struct {
	Bipolar bool
}

func (v VarSigmoid) Name() string {
	if v.Bipolar {
		return "varsig_bipolar"
	}
	return "varsig_unipolar"
}
func (VarSigmoid) StateSize() int { return 1 }
func (v VarSigmoid) Min() float32 {
	if v.Bipolar {
		return -1
	}
	return 0
}
func (VarSigmoid) Max() float32 { return 1 }
func (v VarSigmoid) Apply(u float32, ps []float32) float32 {
	e := math.Exp(float64(-ps[0] * u))
	if v.Bipolar {
		return float32((1 - e) / (1 + e))
	}
	return float32(1 / (1 + e))
}
