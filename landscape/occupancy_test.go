package landscape

import (
	"math"
	"math/rand"
	"testing"
)

func TestKernelWeightsNormalized(t *testing.T) {
	for radius := 0; radius <= 3; radius++ {
		k := NewKernel(radius)
		var sum float32
		for _, w := range k.weights {
			sum += w
		}
		if math.Abs(float64(sum-1)) > 1e-6 {
			t.Errorf("radius %d: weight sum = %v, want 1", radius, sum)
		}
	}
}

func TestKernelRadiusZeroIsIdentity(t *testing.T) {
	l, err := New(32)
	if err != nil {
		t.Fatal(err)
	}
	src := l.Data(Temp)
	rng := rand.New(rand.NewSource(5))
	for i := range src {
		src[i] = rng.Float32()
	}

	dst := make([]float32, len(src))
	NewKernel(0).Convolve(src, dst, l.Dim())

	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("cell %d: %v != %v", i, dst[i], src[i])
		}
	}
}

func TestKernelConservesMass(t *testing.T) {
	l, err := New(32)
	if err != nil {
		t.Fatal(err)
	}
	src := l.Data(Temp)
	src[5*32+7] = 3
	src[0] = 1 // corner exercises the toroidal wrap

	dst := make([]float32, len(src))
	NewKernel(2).Convolve(src, dst, l.Dim())

	var sum float32
	for _, v := range dst {
		if v < 0 {
			t.Fatalf("negative density %v", v)
		}
		sum += v
	}
	if math.Abs(float64(sum-4)) > 1e-4 {
		t.Errorf("density mass = %v, want 4", sum)
	}
}

func TestUpdateOccupancyCounts(t *testing.T) {
	l, err := New(32)
	if err != nil {
		t.Fatal(err)
	}

	agents := []Presence{
		{Coord{1, 1}, RoleForager},
		{Coord{1, 1}, RoleForager},
		{Coord{2, 3}, RoleKlept},
		{Coord{31, 31}, RoleHandler},
		{Coord{31, 31}, RoleHandler},
		{Coord{0, 0}, RoleHandler},
	}
	l.UpdateOccupancy(NewKernel(1), agents)

	// Sum over every role's raw count layer equals the number of agents
	// currently in that role.
	wantCounts := map[Layer]float32{
		ForagersCount: 2,
		KleptsCount:   1,
		HandlersCount: 3,
	}
	for layer, want := range wantCounts {
		var sum float32
		for _, v := range l.Data(layer) {
			sum += v
		}
		if sum != want {
			t.Errorf("layer %d count sum = %v, want %v", layer, sum, want)
		}
	}

	// Raw counts land at the right cells
	if got := l.At(ForagersCount, Coord{1, 1}); got != 2 {
		t.Errorf("foragers count at (1,1) = %v, want 2", got)
	}
	if got := l.At(HandlersCount, Coord{31, 31}); got != 2 {
		t.Errorf("handlers count at (31,31) = %v, want 2", got)
	}

	// Normalized kernel: density mass matches the counts
	for _, pair := range [][2]Layer{{ForagersCount, Foragers}, {KleptsCount, Klepts}, {HandlersCount, Handlers}} {
		var counts, density float32
		for i := range l.Data(pair[0]) {
			counts += l.Data(pair[0])[i]
			density += l.Data(pair[1])[i]
		}
		if math.Abs(float64(counts-density)) > 1e-4 {
			t.Errorf("layer %d density mass %v != count mass %v", pair[1], density, counts)
		}
	}
}

func TestUpdateOccupancyResetsCounts(t *testing.T) {
	l, err := New(32)
	if err != nil {
		t.Fatal(err)
	}
	k := NewKernel(1)

	l.UpdateOccupancy(k, []Presence{{Coord{4, 4}, RoleForager}})
	l.UpdateOccupancy(k, []Presence{{Coord{9, 9}, RoleForager}})

	if got := l.At(ForagersCount, Coord{4, 4}); got != 0 {
		t.Errorf("stale count at (4,4) = %v, want 0", got)
	}
	if got := l.At(ForagersCount, Coord{9, 9}); got != 1 {
		t.Errorf("count at (9,9) = %v, want 1", got)
	}
}
