package sim

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/klepto/landscape"
)

func TestDoHandleBanksFood(t *testing.T) {
	var ind Individual
	ind.PickItem(2)

	ind.DoHandle()
	if !ind.Handling || ind.HandleTime != 1 || ind.Food != 0 {
		t.Fatalf("after 1 tick: %+v, want handling with 1 tick left", ind)
	}
	ind.DoHandle()
	if ind.Handling || ind.HandleTime != 0 || ind.Food != 1 {
		t.Fatalf("after 2 ticks: %+v, want item banked", ind)
	}

	// Idle agents are unaffected
	ind.DoHandle()
	if ind.Food != 1 {
		t.Errorf("DoHandle on idle agent banked food: %+v", ind)
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		name string
		ind  Individual
		want landscape.Role
	}{
		{"idle klept", Individual{}, landscape.RoleKlept},
		{"foraging", Individual{Foraging: true}, landscape.RoleForager},
		{"handling", Individual{Handling: true}, landscape.RoleHandler},
		{"handling dominates posture", Individual{Handling: true, Foraging: true}, landscape.RoleHandler},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ind.Role(); got != tt.want {
				t.Errorf("Role() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFleeStaysWithinRadius(t *testing.T) {
	l, err := landscape.New(32)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(11))
	home := landscape.Coord{X: 5, Y: 5}
	const radius = 3

	for trial := 0; trial < 200; trial++ {
		ind := Individual{Pos: home}
		ind.PickItem(4)
		ind.Flee(l, radius, rng)

		if ind.Handling || ind.HandleTime != 0 {
			t.Fatalf("flee kept the item: %+v", ind)
		}
		dx := landscape.WrapDelta(home.X, ind.Pos.X, 32)
		dy := landscape.WrapDelta(home.Y, ind.Pos.Y, 32)
		if dx < -radius || dx > radius || dy < -radius || dy > radius {
			t.Fatalf("fled to %v, displacement (%d,%d) exceeds radius %d", ind.Pos, dx, dy, radius)
		}
	}
}

func TestFleeZeroRadiusStaysPut(t *testing.T) {
	l, err := landscape.New(32)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	ind := Individual{Pos: landscape.Coord{X: 7, Y: 9}}
	ind.PickItem(2)
	ind.Flee(l, 0, rng)

	if ind.Pos != (landscape.Coord{X: 7, Y: 9}) {
		t.Errorf("zero-radius flee moved to %v", ind.Pos)
	}
	if ind.Handling {
		t.Error("zero-radius flee kept the item")
	}
}
