// Package landscape maintains the spatial substrate of the simulation: a
// square toroidal grid of named float layers for resource capacity, food
// items and per-role agent occupancy, plus the kernel smoothing that turns
// raw occupancy counts into the densities agents perceive.
package landscape

import (
	"fmt"
	"math"
	"math/rand"
)

// MinDim is the smallest supported grid side.
const MinDim = 32

// Coord is a cell position on the toroidal grid.
type Coord struct {
	X, Y int
}

// Add returns the component-wise sum; the result is not wrapped.
func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y}
}

// Layer names one grid layer.
type Layer int

// Named layers. The *Count layers hold raw per-cell agent counts; their
// unsuffixed partners hold the kernel-smoothed densities built from them.
const (
	Capacity Layer = iota
	Items
	ForagersCount
	Foragers
	KleptsCount
	Klepts
	HandlersCount
	Handlers
	Temp
	NumLayers
)

// Landscape is a dim x dim toroidal grid of NumLayers float layers.
type Landscape struct {
	dim    int
	layers [NumLayers][]float32
}

// New creates a landscape with all layers zeroed. The side must be at
// least MinDim.
func New(dim int) (*Landscape, error) {
	if dim < MinDim {
		return nil, fmt.Errorf("landscape: size %d is below the minimum %d", dim, MinDim)
	}
	l := &Landscape{dim: dim}
	for i := range l.layers {
		l.layers[i] = make([]float32, dim*dim)
	}
	return l, nil
}

// Dim returns the grid side.
func (l *Landscape) Dim() int { return l.dim }

// Wrap maps a coordinate onto the torus.
func (l *Landscape) Wrap(c Coord) Coord {
	return Coord{modInt(c.X, l.dim), modInt(c.Y, l.dim)}
}

// Data returns a layer's backing slice in row-major order.
func (l *Landscape) Data(layer Layer) []float32 { return l.layers[layer] }

// At reads a layer cell. The coordinate must already be wrapped.
func (l *Landscape) At(layer Layer, c Coord) float32 {
	return l.layers[layer][c.Y*l.dim+c.X]
}

// Set writes a layer cell. The coordinate must already be wrapped.
func (l *Landscape) Set(layer Layer, c Coord, v float32) {
	l.layers[layer][c.Y*l.dim+c.X] = v
}

// Add accumulates into a layer cell. The coordinate must already be wrapped.
func (l *Landscape) Add(layer Layer, c Coord, v float32) {
	l.layers[layer][c.Y*l.dim+c.X] += v
}

// ItemCap returns the item ceiling for cell c: floor(capacity * maxItemCap).
func (l *Landscape) ItemCap(c Coord, maxItemCap float32) float32 {
	return float32(math.Floor(float64(l.At(Capacity, c) * maxItemCap)))
}

// GrowItems advances the resource layer by one timestep: each cell
// independently gains at most one item with probability itemGrowth, capped
// at floor(capacity * maxItemCap).
func (l *Landscape) GrowItems(maxItemCap, itemGrowth float32, rng *rand.Rand) {
	items := l.layers[Items]
	capacity := l.layers[Capacity]
	p := float64(itemGrowth)
	for i := range items {
		if rng.Float64() < p {
			ceil := float32(math.Floor(float64(capacity[i] * maxItemCap)))
			grown := float32(math.Floor(float64(items[i] + 1)))
			if grown > ceil {
				grown = ceil
			}
			items[i] = grown
		}
	}
}

// FillItemsToCap sets every cell's item count to its ceiling. Used for the
// full initial cover at simulation start.
func (l *Landscape) FillItemsToCap(maxItemCap float32) {
	items := l.layers[Items]
	capacity := l.layers[Capacity]
	for i := range items {
		items[i] = float32(math.Floor(float64(capacity[i] * maxItemCap)))
	}
}

// WrapDelta returns the signed minimal displacement from a to b along one
// axis of a torus of the given size.
func WrapDelta(a, b, dim int) int {
	d := modInt(b-a, dim)
	if d > dim/2 {
		d -= dim
	}
	return d
}

// modInt is the non-negative remainder.
func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
