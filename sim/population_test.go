package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/klepto/config"
	"github.com/pthm-cable/klepto/landscape"
	"github.com/pthm-cable/klepto/neural"
)

func newTestPopulation(t *testing.T, n int) *Population {
	t.Helper()
	topo, err := neural.New("identity")
	if err != nil {
		t.Fatal(err)
	}
	return NewPopulation(topo, n)
}

func TestSelectionFollowsFitness(t *testing.T) {
	p := newTestPopulation(t, 3)
	copy(p.Fitness, []float64{1, 1, 2})
	p.RebuildSelection(7, 13)

	counts := make([]int, 3)
	const rounds = 7000
	for r := 0; r < rounds; r++ {
		for _, a := range p.SampleAncestors() {
			counts[a]++
		}
	}

	total := float64(3 * rounds)
	for i, want := range []float64{0.25, 0.25, 0.5} {
		got := float64(counts[i]) / total
		if math.Abs(got-want) > 0.03 {
			t.Errorf("ancestor %d sampled with frequency %.3f, want ~%.2f", i, got, want)
		}
	}
}

func TestSelectionUniformWhenAllFitnessZero(t *testing.T) {
	p := newTestPopulation(t, 4)
	p.RebuildSelection(3, 5)

	counts := make([]int, 4)
	const rounds = 5000
	for r := 0; r < rounds; r++ {
		for _, a := range p.SampleAncestors() {
			if a < 0 || a >= 4 {
				t.Fatalf("sampled ancestor %d out of range", a)
			}
			counts[a]++
		}
	}
	total := float64(4 * rounds)
	for i, c := range counts {
		if got := float64(c) / total; math.Abs(got-0.25) > 0.03 {
			t.Errorf("ancestor %d sampled with frequency %.3f, want ~0.25", i, got)
		}
	}
}

func TestSampleAncestorsRequiresSelection(t *testing.T) {
	p := newTestPopulation(t, 2)
	defer func() {
		if recover() == nil {
			t.Error("SampleAncestors without RebuildSelection did not panic")
		}
	}()
	p.SampleAncestors()
}

func TestAssessFitnessFloorsAtZero(t *testing.T) {
	p := newTestPopulation(t, 2)
	rng := rand.New(rand.NewSource(5))
	p.Nets.Randomize(rng, 0.5) // all weights active with high probability
	p.Agents[0].Food = 3
	p.Agents[1].Food = 0

	p.AssessFitness(10, 1) // penalty dwarfs any food intake
	if p.Fitness[0] != 0 || p.Fitness[1] != 0 {
		t.Errorf("fitness = %v, want floor at zero under a dominating penalty", p.Fitness)
	}

	p.AssessFitness(0, 1)
	if p.Fitness[0] != 3 || p.Fitness[1] != 0 {
		t.Errorf("fitness = %v, want raw food with zero penalty", p.Fitness)
	}
}

func reproduceOnce(t *testing.T, n, workers int) *Population {
	t.Helper()
	l, err := landscape.New(32)
	if err != nil {
		t.Fatal(err)
	}
	p := newTestPopulation(t, n)
	rng := rand.New(rand.NewSource(21))
	p.Nets.Randomize(rng, 0.5)
	for i := range p.Agents {
		p.Agents[i].Pos = landscape.Coord{X: rng.Intn(32), Y: rng.Intn(32)}
		p.Fitness[i] = float64(i % 5)
	}
	p.RebuildSelection(17, 19)

	acfg := config.AgentsConfig{SproutRadius: 2}
	mcfg := config.MutationConfig{Rate: 0.1, Sigma: 0.05, BigRate: 0.01, BigSigma: 0.3, PruneRate: 0.01}
	p.Reproduce(l, acfg, mcfg, false, 42, 0, workers)
	return p
}

func TestReproduceDeterministicAcrossWorkerCounts(t *testing.T) {
	const n = 100
	a := reproduceOnce(t, n, 1)
	b := reproduceOnce(t, n, 4)

	for i := range a.Agents {
		if a.Agents[i] != b.Agents[i] {
			t.Fatalf("agent %d differs across worker counts: %+v vs %+v", i, a.Agents[i], b.Agents[i])
		}
	}
	ad, bd := a.Nets.Data(), b.Nets.Data()
	for i := range ad {
		if ad[i] != bd[i] {
			t.Fatalf("network arena differs at float %d: %v vs %v", i, ad[i], bd[i])
		}
	}
}

func TestReproduceSproutsNearAncestor(t *testing.T) {
	l, err := landscape.New(32)
	if err != nil {
		t.Fatal(err)
	}
	p := newTestPopulation(t, 80)
	rng := rand.New(rand.NewSource(9))
	for i := range p.Agents {
		p.Agents[i].Pos = landscape.Coord{X: rng.Intn(32), Y: rng.Intn(32)}
		p.Agents[i].Food = 2
		p.Agents[i].Handling = true
		p.Fitness[i] = 1
	}
	parents := make([]landscape.Coord, len(p.Agents))
	for i := range p.Agents {
		parents[i] = p.Agents[i].Pos
	}
	p.RebuildSelection(1, 2)

	const radius = 2
	p.Reproduce(l, config.AgentsConfig{SproutRadius: radius}, config.MutationConfig{}, false, 7, 0, 2)

	for i := range p.Agents {
		ind := p.Agents[i]
		if ind.Ancestor < 0 || ind.Ancestor >= len(parents) {
			t.Fatalf("agent %d has ancestor %d out of range", i, ind.Ancestor)
		}
		if ind.Food != 0 || ind.Handling || ind.Foraging || ind.HandleTime != 0 {
			t.Fatalf("agent %d not reset at birth: %+v", i, ind)
		}
		home := parents[ind.Ancestor]
		dx := landscape.WrapDelta(home.X, ind.Pos.X, 32)
		dy := landscape.WrapDelta(home.Y, ind.Pos.Y, 32)
		if dx < -radius || dx > radius || dy < -radius || dy > radius {
			t.Fatalf("agent %d sprouted at %v, displacement (%d,%d) from ancestor %v exceeds radius %d",
				i, ind.Pos, dx, dy, home, radius)
		}
	}
}

func TestRoleCounts(t *testing.T) {
	p := newTestPopulation(t, 5)
	p.Agents[0].Foraging = true
	p.Agents[1].Foraging = true
	p.Agents[2].Handling = true

	f, k, h := p.RoleCounts()
	if f != 2 || k != 2 || h != 1 {
		t.Errorf("RoleCounts() = (%d, %d, %d), want (2, 2, 1)", f, k, h)
	}
}
