// Package sim drives the evolutionary simulation: the per-timestep
// ecological update (resource growth, foraging, movement, conflict
// resolution) and the per-generation loop (fitness assessment, selection,
// reproduction, double-buffered population replacement).
package sim

import (
	"math/rand"

	"github.com/pthm-cable/klepto/landscape"
)

// Individual is one agent: a grid position, its behavioral state, its
// accumulated food, and the index of the ancestor it sprouted from. The
// individual does not own its network; slot i of the population's network
// collection is its controller.
type Individual struct {
	Pos        landscape.Coord
	Foraging   bool // posture chosen by the network each timestep
	Handling   bool // consuming a captured item
	HandleTime int  // remaining handling timesteps
	Food       float32
	Ancestor   int
}

// DoHandle advances the handling countdown. Finishing banks the item as
// food and frees the agent.
func (ind *Individual) DoHandle() {
	if !ind.Handling {
		return
	}
	ind.HandleTime--
	if ind.HandleTime <= 0 {
		ind.Handling = false
		ind.HandleTime = 0
		ind.Food++
	}
}

// PickItem transitions the agent into handling a freshly detected item.
func (ind *Individual) PickItem(handlingTime int) {
	ind.Handling = true
	ind.HandleTime = handlingTime
}

// Flee relocates the agent to a random cell within radius of its position
// (wrapped toroidally). A held item is lost in the scramble.
func (ind *Individual) Flee(l *landscape.Landscape, radius int, rng *rand.Rand) {
	off := landscape.Coord{
		X: rng.Intn(2*radius+1) - radius,
		Y: rng.Intn(2*radius+1) - radius,
	}
	ind.Pos = l.Wrap(ind.Pos.Add(off))
	ind.Handling = false
	ind.HandleTime = 0
}

// Sprout resets the slot for a newborn at pos, descending from ancestor.
func (ind *Individual) Sprout(pos landscape.Coord, ancestor int) {
	*ind = Individual{Pos: pos, Ancestor: ancestor}
}

// Role categorizes the agent for occupancy bookkeeping. Handling dominates;
// otherwise the network-chosen posture decides.
func (ind *Individual) Role() landscape.Role {
	switch {
	case ind.Handling:
		return landscape.RoleHandler
	case ind.Foraging:
		return landscape.RoleForager
	default:
		return landscape.RoleKlept
	}
}
