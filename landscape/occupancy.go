package landscape

// Role categorizes an agent for occupancy bookkeeping. The density layer an
// agent contributes to depends only on its role at the moment of the
// occupancy refresh.
type Role int

const (
	RoleForager Role = iota
	RoleKlept
	RoleHandler
)

// Presence is one agent's contribution to the occupancy layers.
type Presence struct {
	Pos  Coord
	Role Role
}

// Kernel is a normalized tent-weight smoothing window. Radius 0 degenerates
// to an identity copy; radius 1 is the usual 3x3 window.
type Kernel struct {
	radius  int
	offsets []Coord
	weights []float32
}

// NewKernel builds a tent kernel of the given radius with weights summing
// to one, so convolution preserves total mass (sum of densities equals the
// number of contributing agents).
func NewKernel(radius int) *Kernel {
	k := &Kernel{radius: radius}
	var sum float32
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			w := float32(radius+1) - float32(absInt(dx)+absInt(dy))
			if w <= 0 {
				continue
			}
			k.offsets = append(k.offsets, Coord{dx, dy})
			k.weights = append(k.weights, w)
			sum += w
		}
	}
	for i := range k.weights {
		k.weights[i] /= sum
	}
	return k
}

// Radius returns the kernel radius.
func (k *Kernel) Radius() int { return k.radius }

// Convolve smooths src into dst on the torus. src and dst must be distinct
// dim*dim slices.
func (k *Kernel) Convolve(src, dst []float32, dim int) {
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			var acc float32
			for i, off := range k.offsets {
				sx := modInt(x+off.X, dim)
				sy := modInt(y+off.Y, dim)
				acc += k.weights[i] * src[sy*dim+sx]
			}
			dst[y*dim+x] = acc
		}
	}
}

// UpdateOccupancy rebuilds the per-role count layers from the given agent
// presences and convolves each into its density layer. It must run after
// every phase that changes positions or roles so perception stays
// consistent with the latest agent state.
func (l *Landscape) UpdateOccupancy(k *Kernel, agents []Presence) {
	counts := [3]Layer{RoleForager: ForagersCount, RoleKlept: KleptsCount, RoleHandler: HandlersCount}
	densities := [3]Layer{RoleForager: Foragers, RoleKlept: Klepts, RoleHandler: Handlers}

	for _, layer := range counts {
		data := l.layers[layer]
		for i := range data {
			data[i] = 0
		}
	}
	for _, a := range agents {
		l.Add(counts[a.Role], a.Pos, 1)
	}
	for role := range counts {
		k.Convolve(l.layers[counts[role]], l.layers[densities[role]], l.dim)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
