// Package units holds the static unit type table: movement type, movement
// radius, fuel, weapons and transport capacity.
package units

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/tactics/game/terrain"
)

// Weapon is a single weapon with an inclusive Manhattan range band.
type Weapon struct {
	Name     string `json:"name"`
	MinRange int    `json:"min_range"`
	MaxRange int    `json:"max_range"`
	// Stationary weapons fire only from the unit's current position.
	Stationary bool `json:"stationary,omitempty"`
}

// Type is a unit type.
type Type struct {
	Name         string                 `json:"name"`
	MovementType terrain.MovementType   `json:"movement_type"`
	Radius       int                    `json:"radius"`
	Fuel         int                    `json:"fuel"`
	Weapons      []Weapon               `json:"weapons,omitempty"`
	Carries      []terrain.MovementType `json:"carries,omitempty"`
	Capacity     int                    `json:"capacity,omitempty"`
}

// CanAttack reports whether the type has at least one weapon.
func (t *Type) CanAttack() bool {
	return len(t.Weapons) > 0
}

// CanCarry reports whether t can load a unit of type other.
func (t *Type) CanCarry(other *Type) bool {
	if t.Capacity == 0 || other == nil {
		return false
	}
	for _, mt := range t.Carries {
		if mt == other.MovementType {
			return true
		}
	}
	return false
}

func (t *Type) String() string {
	return t.Name
}

var (
	machineGun = Weapon{Name: "MachineGun", MinRange: 1, MaxRange: 1}
	cannon     = Weapon{Name: "Cannon", MinRange: 1, MaxRange: 1}
)

var (
	Infantry = &Type{
		Name: "Infantry", MovementType: terrain.Soldier, Radius: 3, Fuel: 50,
		Weapons: []Weapon{machineGun},
	}
	RocketLauncher = &Type{
		Name: "RocketLauncher", MovementType: terrain.HeavySoldier, Radius: 2, Fuel: 40,
		Weapons: []Weapon{{Name: "Bazooka", MinRange: 1, MaxRange: 1}, machineGun},
	}
	Jeep = &Type{
		Name: "Jeep", MovementType: terrain.Tires, Radius: 6, Fuel: 60,
		Weapons: []Weapon{machineGun},
	}
	SmallTank = &Type{
		Name: "SmallTank", MovementType: terrain.Tread, Radius: 5, Fuel: 50,
		Weapons: []Weapon{cannon, machineGun},
	}
	Artillery = &Type{
		Name: "Artillery", MovementType: terrain.Tread, Radius: 4, Fuel: 40,
		Weapons: []Weapon{{Name: "Howitzer", MinRange: 2, MaxRange: 3, Stationary: true}},
	}
	HeavyArtillery = &Type{
		Name: "HeavyArtillery", MovementType: terrain.Tread, Radius: 3, Fuel: 30,
		Weapons: []Weapon{{Name: "HeavyHowitzer", MinRange: 3, MaxRange: 5, Stationary: true}},
	}
	Transporter = &Type{
		Name: "Transporter", MovementType: terrain.Tires, Radius: 6, Fuel: 60,
		Carries: []terrain.MovementType{terrain.Soldier, terrain.HeavySoldier}, Capacity: 2,
	}
	PatrolShip = &Type{
		Name: "PatrolShip", MovementType: terrain.Ship, Radius: 6, Fuel: 50,
		Weapons: []Weapon{{Name: "Torpedo", MinRange: 1, MaxRange: 1}, {Name: "DeckGun", MinRange: 2, MaxRange: 2}},
	}
	TransportShip = &Type{
		Name: "TransportShip", MovementType: terrain.Ship, Radius: 6, Fuel: 60,
		Carries:  []terrain.MovementType{terrain.Soldier, terrain.HeavySoldier, terrain.Tread, terrain.Tires},
		Capacity: 2,
	}
	Hovercraft = &Type{
		Name: "Hovercraft", MovementType: terrain.Amphibious, Radius: 5, Fuel: 50,
		Weapons: []Weapon{machineGun},
	}
	Helicopter = &Type{
		Name: "Helicopter", MovementType: terrain.LowAltitude, Radius: 6, Fuel: 40,
		Weapons: []Weapon{{Name: "Missile", MinRange: 1, MaxRange: 1}},
	}
	Jet = &Type{
		Name: "Jet", MovementType: terrain.Air, Radius: 8, Fuel: 40,
		Weapons: []Weapon{{Name: "AirToAir", MinRange: 1, MaxRange: 1}},
	}
	TransportTrain = &Type{
		Name: "TransportTrain", MovementType: terrain.Rail, Radius: 8, Fuel: 80,
		Carries:  []terrain.MovementType{terrain.Soldier, terrain.HeavySoldier, terrain.Tread, terrain.Tires},
		Capacity: 3,
	}
	Jetpack = &Type{
		Name: "Jetpack", MovementType: terrain.AirInfantry, Radius: 4, Fuel: 30,
		Weapons: []Weapon{machineGun},
	}
	Zeppelin = &Type{
		Name: "Zeppelin", MovementType: terrain.Air, Radius: 3, Fuel: 70,
		Weapons:  []Weapon{{Name: "Bombs", MinRange: 1, MaxRange: 2, Stationary: true}},
		Carries:  []terrain.MovementType{terrain.Soldier, terrain.HeavySoldier},
		Capacity: 1,
	}
)

var all = []*Type{
	Infantry, RocketLauncher, Jeep, SmallTank, Artillery, HeavyArtillery,
	Transporter, PatrolShip, TransportShip, Hovercraft, Helicopter, Jet,
	TransportTrain, Jetpack, Zeppelin,
}

// All returns every unit type in table order.
func All() []*Type {
	out := make([]*Type, len(all))
	copy(out, all)
	return out
}

// ByName returns the unit type with the given name (case-insensitive).
func ByName(name string) (*Type, error) {
	for _, t := range all {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown unit type %q", name)
}
