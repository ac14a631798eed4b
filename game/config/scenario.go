package config

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/terrain"
	"github.com/wricardo/mcp-training/tactics/game/units"
)

// Map size limits
const (
	MinMapSize = 1
	MaxMapSize = 100
)

// Scenario is a map fixture: terrain layout, teams, units and buildings.
type Scenario struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Biome       string         `json:"biome,omitempty"`
	Layout      []string       `json:"layout"`
	Overlays    []string       `json:"overlays,omitempty"`
	Teams       map[int]int    `json:"teams,omitempty"`
	Units       []UnitSpec     `json:"units,omitempty"`
	Buildings   []BuildingSpec `json:"buildings,omitempty"`
}

// UnitSpec places a unit. A missing ID gets a generated one and a missing
// Fuel means a full tank.
type UnitSpec struct {
	ID         string     `json:"id,omitempty"`
	Type       string     `json:"type"`
	Player     int        `json:"player"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Fuel       *int       `json:"fuel,omitempty"`
	Transports []UnitSpec `json:"transports,omitempty"`
}

// BuildingSpec places a building.
type BuildingSpec struct {
	Kind   string `json:"kind"`
	Player int    `json:"player"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// ScenarioInfo provides information about a scenario file
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Units       int    `json:"units"`
}

// ParseScenario decodes and validates a scenario file. Errors wrap
// ErrInvalidScenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse: %v", ErrInvalidScenario, err)
	}
	if err := ValidateScenario(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return &s, nil
}

// ValidateScenario validates a scenario for correctness
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if _, err := terrain.ParseBiome(s.Biome); err != nil {
		return fmt.Errorf("config validation: %v", err)
	}

	extent, cells, err := board.ParseLayout(s.Layout, overlaysOrNil(s.Overlays))
	if err != nil {
		return fmt.Errorf("config validation: %v", err)
	}
	if _, err := board.New(board.Config{Extent: extent, Cells: cells}); err != nil {
		return fmt.Errorf("config validation: %v", err)
	}
	if extent.Width < MinMapSize || extent.Width > MaxMapSize || extent.Height > MaxMapSize {
		return fmt.Errorf("config validation: map must be between %d and %d tiles wide and high, got %dx%d",
			MinMapSize, MaxMapSize, extent.Width, extent.Height)
	}

	occupied := make(map[grid.Vector]bool)
	ids := make(map[string]bool)
	for i, spec := range s.Units {
		v := grid.Vec(spec.X, spec.Y)
		if !extent.Contains(v) {
			return fmt.Errorf("config validation: unit %d at %s is outside the %dx%d map", i+1, v, extent.Width, extent.Height)
		}
		if occupied[v] {
			return fmt.Errorf("config validation: unit %d at %s: tile already holds a unit", i+1, v)
		}
		occupied[v] = true
		if err := validateUnit(spec, ids); err != nil {
			return fmt.Errorf("config validation: unit %d at %s: %v", i+1, v, err)
		}
	}

	built := make(map[grid.Vector]bool)
	for i, spec := range s.Buildings {
		v := grid.Vec(spec.X, spec.Y)
		if !extent.Contains(v) {
			return fmt.Errorf("config validation: building %d at %s is outside the map", i+1, v)
		}
		if built[v] {
			return fmt.Errorf("config validation: building %d at %s: tile already holds a building", i+1, v)
		}
		built[v] = true
		if _, err := board.ParseBuildingKind(spec.Kind); err != nil {
			return fmt.Errorf("config validation: building %d: %v", i+1, err)
		}
		if spec.Player < board.Neutral {
			return fmt.Errorf("config validation: building %d: player must not be negative", i+1)
		}
	}

	for player := range s.Teams {
		if player <= board.Neutral {
			return fmt.Errorf("config validation: teams: player %d cannot join a team", player)
		}
	}
	return nil
}

func validateUnit(spec UnitSpec, ids map[string]bool) error {
	t, err := units.ByName(spec.Type)
	if err != nil {
		return err
	}
	if spec.Player <= board.Neutral {
		return fmt.Errorf("player must be positive, got %d", spec.Player)
	}
	if spec.ID != "" {
		if ids[spec.ID] {
			return fmt.Errorf("duplicate unit id %q", spec.ID)
		}
		ids[spec.ID] = true
	}
	if spec.Fuel != nil && (*spec.Fuel < 0 || *spec.Fuel > t.Fuel) {
		return fmt.Errorf("fuel must be between 0 and %d, got %d", t.Fuel, *spec.Fuel)
	}
	if len(spec.Transports) > t.Capacity {
		return fmt.Errorf("%s carries at most %d units, got %d", t.Name, t.Capacity, len(spec.Transports))
	}
	for _, p := range spec.Transports {
		if err := validateUnit(p, ids); err != nil {
			return fmt.Errorf("passenger: %v", err)
		}
		passenger, _ := units.ByName(p.Type)
		if !t.CanCarry(passenger) {
			return fmt.Errorf("%s cannot carry %s", t.Name, passenger.Name)
		}
		if p.Player != spec.Player {
			return fmt.Errorf("passenger %s belongs to player %d, carrier to %d", passenger.Name, p.Player, spec.Player)
		}
	}
	return nil
}

// Build validates s and returns its map snapshot.
func (s *Scenario) Build() (*board.Map, error) {
	if err := ValidateScenario(s); err != nil {
		return nil, err
	}
	biome, _ := terrain.ParseBiome(s.Biome)
	extent, cells, _ := board.ParseLayout(s.Layout, overlaysOrNil(s.Overlays))

	cfg := board.Config{
		Biome:     biome,
		Extent:    extent,
		Cells:     cells,
		Units:     make(map[grid.Vector]*board.Unit, len(s.Units)),
		Buildings: make(map[grid.Vector]*board.Building, len(s.Buildings)),
		Teams:     s.Teams,
	}
	for _, spec := range s.Units {
		cfg.Units[grid.Vec(spec.X, spec.Y)] = buildUnit(spec)
	}
	for _, spec := range s.Buildings {
		kind, _ := board.ParseBuildingKind(spec.Kind)
		cfg.Buildings[grid.Vec(spec.X, spec.Y)] = &board.Building{Kind: kind, Player: spec.Player}
	}
	return board.New(cfg)
}

func buildUnit(spec UnitSpec) *board.Unit {
	t, _ := units.ByName(spec.Type)
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	u := board.NewUnit(id, t, spec.Player)
	if spec.Fuel != nil {
		u.Fuel = *spec.Fuel
	}
	for _, p := range spec.Transports {
		u.Transports = append(u.Transports, buildUnit(p))
	}
	return u
}

// Info summarizes s for listings.
func (s *Scenario) Info(id, filename string) *ScenarioInfo {
	info := &ScenarioInfo{
		Filename:    filename,
		ScenarioID:  id,
		Name:        s.Name,
		Description: s.Description,
		Height:      len(s.Layout),
		Units:       len(s.Units),
	}
	if len(s.Layout) > 0 {
		info.Width = len([]rune(s.Layout[0]))
	}
	return info
}

func overlaysOrNil(rows []string) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows
}
