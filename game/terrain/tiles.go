package terrain

import (
	"errors"
	"fmt"
	"strings"
)

// Impassable is the cost sentinel for a movement type that cannot enter a tile.
const Impassable = -1.0

var ErrUnknownTile = errors.New("unknown tile")

// TileID identifies a tile in the table. The zero value is "no tile".
type TileID uint8

const (
	NoTile TileID = iota
	Plain
	Street
	Forest
	Mountain
	River
	Sea
	DeepSea
	Beach
	Reef
	Bridge
	Pier
	Trench
	RailTrack
	Ruins
	Campsite
	Barrel
)

// Transition is a one-time surcharge or discount applied on a step that
// enters, stays within or leaves a zone of tiles sharing the same Zone name.
type Transition struct {
	Zone     string
	Cost     float64
	Entering bool
	Within   bool
	Leaving  bool
}

// Tile describes one terrain type.
type Tile struct {
	ID        TileID
	Name      string
	Character rune
	// Sea marks open-water tiles a ship can pass a bridge over.
	Sea bool
	// Overlay tiles are stacked on top of a base tile (bridges, piers).
	Overlay     bool
	costs       map[MovementType]float64
	transitions map[MovementType]Transition
}

// Cost returns the base cost for mt, or Impassable.
func (t *Tile) Cost(mt MovementType) float64 {
	if cost, ok := t.costs[mt]; ok {
		return cost
	}
	return Impassable
}

// Passable reports whether mt may enter the tile at all.
func (t *Tile) Passable(mt MovementType) bool {
	_, ok := t.costs[mt]
	return ok
}

func (t *Tile) transition(mt MovementType) (Transition, bool) {
	tr, ok := t.transitions[mt]
	return tr, ok
}

func (t *Tile) String() string {
	return t.Name
}

func (t *Tile) MarshalText() ([]byte, error) {
	return []byte(t.Name), nil
}

// ground is the cost row shared by walkable land.
func ground(soldier, heavy, tread, tires float64) map[MovementType]float64 {
	return map[MovementType]float64{
		Soldier:      soldier,
		HeavySoldier: heavy,
		Tread:        tread,
		Tires:        tires,
		Amphibious:   tread,
		LowAltitude:  1,
		Air:          1,
		AirInfantry:  1,
	}
}

var trenchDiscount = Transition{Zone: "trench", Cost: -0.5, Entering: true, Within: true, Leaving: true}

var amphibiousWaterEntry = Transition{Zone: "water", Cost: 1, Entering: true}

var tiles = [...]*Tile{
	Plain: {
		ID: Plain, Name: "Plain", Character: '.',
		costs: ground(1, 1, 1, 2),
	},
	Street: {
		ID: Street, Name: "Street", Character: '#',
		costs: ground(1, 1, 1, 1),
	},
	Forest: {
		ID: Forest, Name: "Forest", Character: 'F',
		costs: ground(1, 1, 2, 3),
	},
	Mountain: {
		ID: Mountain, Name: "Mountain", Character: 'M',
		costs: map[MovementType]float64{
			Soldier:      2,
			HeavySoldier: 1,
			LowAltitude:  1,
			Air:          1,
			AirInfantry:  1,
		},
	},
	River: {
		ID: River, Name: "River", Character: '~',
		costs: map[MovementType]float64{
			Soldier:      2,
			HeavySoldier: 2,
			Amphibious:   1,
			LowAltitude:  1,
			Air:          1,
			AirInfantry:  1,
		},
		transitions: map[MovementType]Transition{Amphibious: amphibiousWaterEntry},
	},
	Sea: {
		ID: Sea, Name: "Sea", Character: 'S', Sea: true,
		costs: map[MovementType]float64{
			Ship:        1,
			Amphibious:  1,
			LowAltitude: 1,
			Air:         1,
			AirInfantry: 1,
		},
		transitions: map[MovementType]Transition{Amphibious: amphibiousWaterEntry},
	},
	DeepSea: {
		ID: DeepSea, Name: "DeepSea", Character: 'D', Sea: true,
		costs: map[MovementType]float64{
			Ship: 1,
			Air:  1,
		},
	},
	Beach: {
		ID: Beach, Name: "Beach", Character: 'b',
		costs: map[MovementType]float64{
			Soldier:      1,
			HeavySoldier: 1,
			Tread:        1,
			Tires:        2,
			Ship:         1,
			Amphibious:   1,
			LowAltitude:  1,
			Air:          1,
			AirInfantry:  1,
		},
	},
	Reef: {
		ID: Reef, Name: "Reef", Character: 'R', Sea: true,
		costs: map[MovementType]float64{
			Ship:        2,
			Amphibious:  2,
			LowAltitude: 1,
			Air:         1,
			AirInfantry: 1,
		},
		transitions: map[MovementType]Transition{Amphibious: amphibiousWaterEntry},
	},
	Bridge: {
		ID: Bridge, Name: "Bridge", Character: '=', Overlay: true,
		costs: map[MovementType]float64{
			Soldier:      1,
			HeavySoldier: 1,
			Tread:        1,
			Tires:        1,
			Ship:         1,
			Amphibious:   1,
			LowAltitude:  1,
			Air:          1,
			AirInfantry:  1,
		},
	},
	Pier: {
		ID: Pier, Name: "Pier", Character: 'p', Overlay: true,
		costs: map[MovementType]float64{
			Soldier:      1,
			HeavySoldier: 1,
			Tread:        1,
			Tires:        1,
			Ship:         1,
			Amphibious:   1,
			LowAltitude:  1,
			Air:          1,
			AirInfantry:  1,
		},
	},
	Trench: {
		ID: Trench, Name: "Trench", Character: 'T',
		costs: map[MovementType]float64{
			Soldier:      1,
			HeavySoldier: 1,
			Tread:        2,
			LowAltitude:  1,
			Air:          1,
			AirInfantry:  1,
		},
		transitions: map[MovementType]Transition{
			Soldier:      trenchDiscount,
			HeavySoldier: trenchDiscount,
		},
	},
	RailTrack: {
		ID: RailTrack, Name: "RailTrack", Character: '+',
		costs: map[MovementType]float64{
			Soldier:      1,
			HeavySoldier: 1,
			Tread:        1,
			Tires:        2,
			Rail:         1,
			Amphibious:   1,
			LowAltitude:  1,
			Air:          1,
			AirInfantry:  1,
		},
	},
	Ruins: {
		ID: Ruins, Name: "Ruins", Character: 'r',
		costs: ground(1, 1, 2, 2),
	},
	Campsite: {
		ID: Campsite, Name: "Campsite", Character: 'c',
		costs: ground(1, 1, 1, 2),
	},
	Barrel: {
		ID: Barrel, Name: "Barrel", Character: 'o',
		costs: map[MovementType]float64{
			LowAltitude: 1,
			Air:         1,
			AirInfantry: 1,
		},
	},
}

// Lookup returns the tile for id.
func Lookup(id TileID) (*Tile, error) {
	if id == NoTile || int(id) >= len(tiles) || tiles[id] == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTile, id)
	}
	return tiles[id], nil
}

// MustLookup is Lookup for table constants known to exist.
func MustLookup(id TileID) *Tile {
	t, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return t
}

// ByCharacter returns the tile whose legend character is c.
func ByCharacter(c rune) (*Tile, error) {
	for _, t := range tiles {
		if t != nil && t.Character == c {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: character %q", ErrUnknownTile, c)
}

// ByName returns the tile with the given name (case-insensitive).
func ByName(name string) (*Tile, error) {
	for _, t := range tiles {
		if t != nil && strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTile, name)
}

// All returns every defined tile in id order.
func All() []*Tile {
	out := make([]*Tile, 0, len(tiles))
	for _, t := range tiles {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// TransitionCost returns the one-time cost of stepping from one tile to
// another for mt. A step into a zone is charged the destination's
// Entering cost, a step between two tiles of the same zone the Within cost,
// and a step out of a zone the origin's Leaving cost. At most one rule
// applies per step.
func TransitionCost(from, to *Tile, mt MovementType) float64 {
	toRule, toOK := to.transition(mt)
	fromRule, fromOK := from.transition(mt)

	if toOK && fromOK && toRule.Zone == fromRule.Zone {
		if toRule.Within {
			return toRule.Cost
		}
		return 0
	}
	if toOK && toRule.Entering {
		return toRule.Cost
	}
	if fromOK && fromRule.Leaving {
		return fromRule.Cost
	}
	return 0
}
