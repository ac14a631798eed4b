// Package board is the map model consumed by the radius engine: cells,
// units, buildings and teams behind read accessors.
//
// A Map is an immutable snapshot. The With* helpers return a new snapshot
// and never modify the receiver, so a Map can be shared between goroutines.
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/terrain"
)

var (
	ErrOutOfBounds = errors.New("vector out of bounds")
	ErrNoLayer     = errors.New("layer not defined")
	ErrInvalidMap  = errors.New("invalid map")
	ErrNoUnit      = errors.New("no unit at vector")
	ErrOccupied    = errors.New("vector is occupied")
)

// Config is the input of New.
type Config struct {
	Biome     terrain.Biome
	Extent    grid.Extent
	Cells     []Cell // row-major
	Units     map[grid.Vector]*Unit
	Buildings map[grid.Vector]*Building
	// Teams maps player ids to team ids. Players without an entry form
	// their own team.
	Teams map[int]int
}

// Map is a map snapshot.
type Map struct {
	biome     terrain.Biome
	extent    grid.Extent
	cells     []Cell
	units     map[grid.Vector]*Unit
	buildings map[grid.Vector]*Building
	teams     map[int]int
}

// UnitEntry pairs a unit with its position.
type UnitEntry struct {
	Vector grid.Vector
	Unit   *Unit
}

// New validates cfg and returns the map. Undefined tiles and malformed
// layers are rejected here so that lookups on a built map cannot hit
// corrupt data.
func New(cfg Config) (*Map, error) {
	if cfg.Extent.Width < 1 || cfg.Extent.Height < 1 {
		return nil, fmt.Errorf("%w: extent %dx%d", ErrInvalidMap, cfg.Extent.Width, cfg.Extent.Height)
	}
	if len(cfg.Cells) != cfg.Extent.Size() {
		return nil, fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidMap, cfg.Extent.Size(), len(cfg.Cells))
	}
	for i, c := range cfg.Cells {
		v := cfg.Extent.At(i)
		if c.IsZero() {
			return nil, fmt.Errorf("%w: no tile at %s", ErrInvalidMap, v)
		}
		if _, err := terrain.Lookup(c.base.ID); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMap, v, err)
		}
		if c.base.Overlay {
			return nil, fmt.Errorf("%w: %s: overlay %s used as base layer", ErrInvalidMap, v, c.base.Name)
		}
		if c.overlay != nil && !c.overlay.Overlay {
			return nil, fmt.Errorf("%w: %s: %s cannot be stacked", ErrInvalidMap, v, c.overlay.Name)
		}
	}

	m := &Map{
		biome:     cfg.Biome,
		extent:    cfg.Extent,
		cells:     append([]Cell(nil), cfg.Cells...),
		units:     make(map[grid.Vector]*Unit, len(cfg.Units)),
		buildings: make(map[grid.Vector]*Building, len(cfg.Buildings)),
		teams:     make(map[int]int, len(cfg.Teams)),
	}
	for v, u := range cfg.Units {
		if !m.extent.Contains(v) {
			return nil, fmt.Errorf("%w: unit at %s", ErrOutOfBounds, v)
		}
		if u == nil || u.Type == nil {
			return nil, fmt.Errorf("%w: unit at %s has no type", ErrInvalidMap, v)
		}
		m.units[v] = u
	}
	for v, b := range cfg.Buildings {
		if !m.extent.Contains(v) {
			return nil, fmt.Errorf("%w: building at %s", ErrOutOfBounds, v)
		}
		m.buildings[v] = b
	}
	for player, team := range cfg.Teams {
		m.teams[player] = team
	}
	return m, nil
}

// Fill returns a row-major cell slice of size e with every cell set to c.
func Fill(e grid.Extent, c Cell) []Cell {
	cells := make([]Cell, e.Size())
	for i := range cells {
		cells[i] = c
	}
	return cells
}

func (m *Map) Extent() grid.Extent {
	return m.extent
}

func (m *Map) Biome() terrain.Biome {
	return m.biome
}

// Contains reports whether v lies within the map bounds.
func (m *Map) Contains(v grid.Vector) bool {
	return m.extent.Contains(v)
}

// CellAt returns the cell at v.
func (m *Map) CellAt(v grid.Vector) (Cell, error) {
	i := m.extent.Index(v)
	if i < 0 {
		return Cell{}, fmt.Errorf("%w: %s", ErrOutOfBounds, v)
	}
	return m.cells[i], nil
}

// TileAt returns the top tile at v.
func (m *Map) TileAt(v grid.Vector) (*terrain.Tile, error) {
	c, err := m.CellAt(v)
	if err != nil {
		return nil, err
	}
	return c.Top(), nil
}

// LayerAt returns layer i (0 base, 1 overlay) at v.
func (m *Map) LayerAt(v grid.Vector, layer int) (*terrain.Tile, error) {
	c, err := m.CellAt(v)
	if err != nil {
		return nil, err
	}
	tile, ok := c.Layer(layer)
	if !ok {
		return nil, fmt.Errorf("%w: layer %d at %s", ErrNoLayer, layer, v)
	}
	return tile, nil
}

// MustCellAt is CellAt for vectors the caller already checked. An out of
// bounds vector is a programming error and panics.
func (m *Map) MustCellAt(v grid.Vector) Cell {
	c, err := m.CellAt(v)
	if err != nil {
		panic(err)
	}
	return c
}

// UnitAt returns the unit at v, or nil.
func (m *Map) UnitAt(v grid.Vector) *Unit {
	return m.units[v]
}

// BuildingAt returns the building at v, or nil.
func (m *Map) BuildingAt(v grid.Vector) *Building {
	return m.buildings[v]
}

// Units returns every unit in row-major order of position.
func (m *Map) Units() []UnitEntry {
	entries := make([]UnitEntry, 0, len(m.units))
	for v, u := range m.units {
		entries = append(entries, UnitEntry{Vector: v, Unit: u})
	}
	sort.Slice(entries, func(i, j int) bool {
		return m.extent.Index(entries[i].Vector) < m.extent.Index(entries[j].Vector)
	})
	return entries
}

// FindUnit returns the position of the unit with the given id.
func (m *Map) FindUnit(id string) (grid.Vector, *Unit, bool) {
	for v, u := range m.units {
		if u.ID == id {
			return v, u, true
		}
	}
	return grid.Vector{}, nil, false
}

// Team returns the team of player.
func (m *Map) Team(player int) int {
	if team, ok := m.teams[player]; ok {
		return team
	}
	return player
}

// IsOpponent reports whether players a and b are hostile. The neutral
// player is nobody's opponent.
func (m *Map) IsOpponent(a, b int) bool {
	if a == Neutral || b == Neutral {
		return false
	}
	return m.Team(a) != m.Team(b)
}

// IsOpponentEntity is IsOpponent on the owners of two entities.
func (m *Map) IsOpponentEntity(a, b Entity) bool {
	return m.IsOpponent(a.Owner(), b.Owner())
}

// MatchesPlayer reports whether e belongs to player.
func (m *Map) MatchesPlayer(e Entity, player int) bool {
	return e.Owner() == player
}

func (m *Map) clone() *Map {
	c := &Map{
		biome:     m.biome,
		extent:    m.extent,
		cells:     m.cells,
		units:     make(map[grid.Vector]*Unit, len(m.units)),
		buildings: m.buildings,
		teams:     m.teams,
	}
	for v, u := range m.units {
		c.units[v] = u
	}
	return c
}

// WithUnit returns a snapshot with u placed at v.
func (m *Map) WithUnit(v grid.Vector, u *Unit) (*Map, error) {
	if !m.Contains(v) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, v)
	}
	c := m.clone()
	c.units[v] = u
	return c, nil
}

// WithoutUnit returns a snapshot with the unit at v removed.
func (m *Map) WithoutUnit(v grid.Vector) *Map {
	c := m.clone()
	delete(c.units, v)
	return c
}

// WithUnitMoved returns a snapshot where the unit at from stands at to and
// has spent fuel.
func (m *Map) WithUnitMoved(from, to grid.Vector, fuel int) (*Map, error) {
	u := m.UnitAt(from)
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoUnit, from)
	}
	if !m.Contains(to) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, to)
	}
	if from != to && m.UnitAt(to) != nil {
		return nil, fmt.Errorf("%w: %s", ErrOccupied, to)
	}
	moved := u.Clone()
	moved.Fuel -= fuel
	if moved.Fuel < 0 {
		moved.Fuel = 0
	}
	c := m.clone()
	delete(c.units, from)
	c.units[to] = moved
	return c, nil
}

// WithCell returns a snapshot with the cell at v replaced.
func (m *Map) WithCell(v grid.Vector, cell Cell) (*Map, error) {
	i := m.extent.Index(v)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, v)
	}
	if cell.IsZero() {
		return nil, fmt.Errorf("%w: empty cell at %s", ErrInvalidMap, v)
	}
	c := m.clone()
	c.cells = append([]Cell(nil), m.cells...)
	c.cells[i] = cell
	return c, nil
}

// Render draws the map as text, one row per line. Units are drawn as their
// player digit, marks override tiles.
func (m *Map) Render(marks map[grid.Vector]rune) string {
	var sb strings.Builder
	for y := 1; y <= m.extent.Height; y++ {
		for x := 1; x <= m.extent.Width; x++ {
			v := grid.Vec(x, y)
			if u := m.units[v]; u != nil {
				sb.WriteRune(rune('0' + u.Player%10))
				continue
			}
			if r, ok := marks[v]; ok {
				sb.WriteRune(r)
				continue
			}
			sb.WriteRune(m.cells[m.extent.Index(v)].Top().Character)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
