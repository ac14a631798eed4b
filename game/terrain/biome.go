package terrain

import (
	"fmt"
	"strings"
)

// Biome is the map-wide setting.
type Biome uint8

const (
	Grassland Biome = iota
	Desert
	Snow
	Swamp
	Volcano
	Space
)

var biomeNames = [...]string{
	Grassland: "grassland",
	Desert:    "desert",
	Snow:      "snow",
	Swamp:     "swamp",
	Volcano:   "volcano",
	Space:     "space",
}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return fmt.Sprintf("biome(%d)", uint8(b))
}

// CancelsTransitions reports whether every transition cost is ignored in b.
func (b Biome) CancelsTransitions() bool {
	return b == Space
}

// ParseBiome parses a biome name. The empty string is Grassland.
func ParseBiome(s string) (Biome, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Grassland, nil
	}
	for i, name := range biomeNames {
		if name == s {
			return Biome(i), nil
		}
	}
	return 0, fmt.Errorf("unknown biome %q", s)
}

func (b Biome) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Biome) UnmarshalText(text []byte) error {
	parsed, err := ParseBiome(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
