package landscape

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/klepto/config"
)

// GenerateCapacity fills the Capacity layer procedurally with contrast-
// shaped FBM over simplex noise, used when no capacity image is configured.
// Higher contrast pushes mid-values down, leaving sparser high-capacity
// patches.
func (l *Landscape) GenerateCapacity(seed int64, p config.NoiseConfig) {
	noise := opensimplex.NewNormalized(seed)
	data := l.layers[Capacity]

	for y := 0; y < l.dim; y++ {
		v := (float64(y) + 0.5) / float64(l.dim)
		for x := 0; x < l.dim; x++ {
			u := (float64(x) + 0.5) / float64(l.dim)

			sum := 0.0
			amp := 0.5
			freq := p.Scale
			for o := 0; o < p.Octaves; o++ {
				sum += amp * noise.Eval2(u*freq, v*freq)
				freq *= p.Lacunarity
				amp *= p.Gain
			}

			data[y*l.dim+x] = clamp01(float32(math.Pow(sum, p.Contrast)))
		}
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
