package neural

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/klepto/config"
)

func TestCollectionLayout(t *testing.T) {
	topo, err := New("sigmoid")
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollection(topo, 10)

	if c.N() != 10 {
		t.Errorf("N() = %d, want 10", c.N())
	}
	if c.Stride() != topo.StateSize() {
		t.Errorf("Stride() = %d, want %d", c.Stride(), topo.StateSize())
	}
	if len(c.Data()) != 10*topo.StateSize() {
		t.Errorf("len(Data()) = %d, want %d", len(c.Data()), 10*topo.StateSize())
	}

	// State blocks are disjoint and tile the arena
	c.State(3)[0] = 42
	if c.Data()[3*c.Stride()] != 42 {
		t.Error("State(3) does not alias its arena block")
	}
	if c.State(2)[c.Stride()-1] == 42 || c.State(4)[0] == 42 {
		t.Error("State blocks overlap")
	}
}

func TestAssignThenFeedMatches(t *testing.T) {
	topo, err := New("sigmoid")
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollection(topo, 3)
	rng := rand.New(rand.NewSource(7))
	c.Randomize(rng, 0.5)

	in := []float32{1.5, 0.2, 0, 3}
	s := topo.NewScratch()

	want := make([]float32, topo.OutputSize())
	copy(want, c.Evaluate(0, in, s))

	c.Assign(c, 0, 2)
	got := c.Evaluate(2, in, s)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("output[%d] = %v, want %v after Assign", i, got[i], want[i])
		}
	}
}

func TestMutatePreservesScratch(t *testing.T) {
	topo, err := New("recurrent")
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollection(topo, 1)
	state := c.State(0)
	for i := range state {
		state[i] = 1
	}

	mcfg := config.MutationConfig{Rate: 1, Sigma: 0.5, BigRate: 0.1, BigSigma: 2}
	c.MutateOne(0, mcfg, false, rand.New(rand.NewSource(1)))

	hidden := topo.Layers()[0]
	sb := hidden.Neuron.ScratchBegin()
	ns := hidden.Neuron.StateSize()
	for i := 0; i < hidden.N; i++ {
		slice := topo.NeuronState(c.State(0), 0, i)
		for w := sb; w < ns; w++ {
			if slice[w] != 1 {
				t.Errorf("neuron %d scratch slot %d mutated to %v", i, w, slice[w])
			}
		}
	}

	// With rate 1 the evolvable region must actually have moved
	changed := false
	for i := 0; i < hidden.N; i++ {
		slice := topo.NeuronState(c.State(0), 0, i)
		for w := 0; w < sb; w++ {
			if slice[w] != 1 {
				changed = true
			}
		}
	}
	if !changed {
		t.Error("no evolvable weight changed at mutation rate 1")
	}
}

func TestMutateFixedSkipsPruning(t *testing.T) {
	topo, err := New("identity")
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollection(topo, 1)
	state := c.State(0)
	for i := range state {
		state[i] = 1
	}

	// Pure structural mutation: prune everything unless fixed.
	mcfg := config.MutationConfig{PruneRate: 1}

	c.MutateOne(0, mcfg, true, rand.New(rand.NewSource(1)))
	for i, w := range state {
		if w != 1 {
			t.Fatalf("fixed mode pruned weight %d", i)
		}
	}

	c.MutateOne(0, mcfg, false, rand.New(rand.NewSource(1)))
	for i, w := range state {
		if w != 0 {
			t.Fatalf("weight %d = %v, want pruned to 0", i, w)
		}
	}
}

func TestZeroMutationIsIdentity(t *testing.T) {
	topo, err := New("deep")
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollection(topo, 2)
	rng := rand.New(rand.NewSource(3))
	c.Randomize(rng, 1)

	before := make([]float32, len(c.Data()))
	copy(before, c.Data())

	c.Mutate(config.MutationConfig{}, false, rng)

	for i := range before {
		if c.Data()[i] != before[i] {
			t.Fatalf("zero-rate mutation changed element %d", i)
		}
	}
}

func TestRandomizeLeavesScratchZero(t *testing.T) {
	topo, err := New("recurrent")
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollection(topo, 4)
	c.Randomize(rand.New(rand.NewSource(9)), 1)

	hidden := topo.Layers()[0]
	sb := hidden.Neuron.ScratchBegin()
	ns := hidden.Neuron.StateSize()
	for i := 0; i < c.N(); i++ {
		for n := 0; n < hidden.N; n++ {
			slice := topo.NeuronState(c.State(i), 0, n)
			for w := sb; w < ns; w++ {
				if slice[w] != 0 {
					t.Fatalf("individual %d neuron %d scratch = %v, want 0", i, n, slice[w])
				}
			}
		}
	}
}

func TestRegistryUnknownSelector(t *testing.T) {
	if _, err := New("no-such-topology"); err == nil {
		t.Error("New with unknown selector: want error")
	}
}
