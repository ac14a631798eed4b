// Package terrain holds the static terrain data: movement types, the tile
// cost table, transition rules and biomes.
//
// The table is read-only lookup data consumed by the radius engine. Special
// cases (trench discounts, amphibious water entry, biome cancellation) are
// enumerated per tile rather than derived from a general formula.
package terrain

import (
	"fmt"
	"strings"
)

// MovementType selects the cost row that applies to a unit.
type MovementType uint8

const (
	Soldier MovementType = iota + 1
	HeavySoldier
	Tread
	Tires
	Ship
	Amphibious
	LowAltitude
	Air
	Rail
	AirInfantry
)

var movementTypeNames = map[MovementType]string{
	Soldier:      "soldier",
	HeavySoldier: "heavy-soldier",
	Tread:        "tread",
	Tires:        "tires",
	Ship:         "ship",
	Amphibious:   "amphibious",
	LowAltitude:  "low-altitude",
	Air:          "air",
	Rail:         "rail",
	AirInfantry:  "air-infantry",
}

// MovementTypes lists every movement type in declaration order.
func MovementTypes() []MovementType {
	return []MovementType{Soldier, HeavySoldier, Tread, Tires, Ship, Amphibious, LowAltitude, Air, Rail, AirInfantry}
}

func (mt MovementType) String() string {
	if name, ok := movementTypeNames[mt]; ok {
		return name
	}
	return fmt.Sprintf("movement(%d)", uint8(mt))
}

// IsNaval reports whether mt moves on water only.
func (mt MovementType) IsNaval() bool {
	return mt == Ship
}

// IsSoldier reports whether mt is a foot-soldier class.
func (mt MovementType) IsSoldier() bool {
	return mt == Soldier || mt == HeavySoldier
}

// IsAirborne reports whether mt ignores ground occupancy rules for bridges.
func (mt MovementType) IsAirborne() bool {
	return mt == LowAltitude || mt == Air || mt == AirInfantry
}

// ParseMovementType parses the name produced by String.
func ParseMovementType(s string) (MovementType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mt, name := range movementTypeNames {
		if name == s {
			return mt, nil
		}
	}
	return 0, fmt.Errorf("unknown movement type %q", s)
}

func (mt MovementType) MarshalText() ([]byte, error) {
	return []byte(mt.String()), nil
}

func (mt *MovementType) UnmarshalText(text []byte) error {
	parsed, err := ParseMovementType(string(text))
	if err != nil {
		return err
	}
	*mt = parsed
	return nil
}
