package board

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/tactics/game/terrain"
	"github.com/wricardo/mcp-training/tactics/game/units"
)

// Neutral is the player id owning nothing.
const Neutral = 0

// Entity is anything owned by a player.
type Entity interface {
	Owner() int
}

// Unit is a unit placed on the map. The engine only reads it.
type Unit struct {
	ID         string
	Type       *units.Type
	Player     int
	Fuel       int
	Transports []*Unit
}

// NewUnit returns a unit of type t with full fuel.
func NewUnit(id string, t *units.Type, player int) *Unit {
	return &Unit{ID: id, Type: t, Player: player, Fuel: t.Fuel}
}

func (u *Unit) Owner() int {
	return u.Player
}

// MovementType returns the unit type's movement type.
func (u *Unit) MovementType() terrain.MovementType {
	return u.Type.MovementType
}

// CanLoad reports whether u can take other on board right now.
func (u *Unit) CanLoad(other *Unit) bool {
	return other != nil && u.Type.CanCarry(other.Type) && len(u.Transports) < u.Type.Capacity
}

// IsTransporting reports whether other is one of u's passengers.
func (u *Unit) IsTransporting(other *Unit) bool {
	for _, t := range u.Transports {
		if t == other {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of u.
func (u *Unit) Clone() *Unit {
	clone := *u
	if len(u.Transports) > 0 {
		clone.Transports = make([]*Unit, len(u.Transports))
		for i, t := range u.Transports {
			clone.Transports[i] = t.Clone()
		}
	}
	return &clone
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s(%s, player %d)", u.Type.Name, u.ID, u.Player)
}

// BuildingKind enumerates building types.
type BuildingKind uint8

const (
	HQ BuildingKind = iota + 1
	Factory
	House
	Barracks
	Airbase
	Shipyard
	Barrier
)

var buildingNames = map[BuildingKind]string{
	HQ:       "hq",
	Factory:  "factory",
	House:    "house",
	Barracks: "barracks",
	Airbase:  "airbase",
	Shipyard: "shipyard",
	Barrier:  "barrier",
}

func (k BuildingKind) String() string {
	if name, ok := buildingNames[k]; ok {
		return name
	}
	return fmt.Sprintf("building(%d)", uint8(k))
}

// ParseBuildingKind parses the name produced by String.
func ParseBuildingKind(s string) (BuildingKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range buildingNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown building kind %q", s)
}

// Admits reports whether units of movement type mt may stand on the building.
func (k BuildingKind) Admits(mt terrain.MovementType) bool {
	switch k {
	case Barrier:
		return mt.IsAirborne()
	case Shipyard:
		return true
	}
	return !mt.IsNaval()
}

// CostOverride returns the cost replacing the terrain cost for mt, if any.
// Shipyards let ships dock on land.
func (k BuildingKind) CostOverride(mt terrain.MovementType) (float64, bool) {
	if k == Shipyard && mt.IsNaval() {
		return 1, true
	}
	return 0, false
}

// Building is a building placed on the map.
type Building struct {
	Kind   BuildingKind
	Player int
}

func (b *Building) Owner() int {
	return b.Player
}
