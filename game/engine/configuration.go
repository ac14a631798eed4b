package engine

import (
	"math"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/terrain"
)

// MoveConfiguration is the cost model used by Moveable and Attackable.
type MoveConfiguration interface {
	// GetCost returns the cost of entering v, or terrain.Impassable.
	GetCost(m *board.Map, u *board.Unit, v grid.Vector) float64
	// GetTransitionCost returns the one-time cost of the step from -> to.
	GetTransitionCost(m *board.Map, u *board.Unit, from, to grid.Vector) float64
	// GetResourceValue returns the movement budget.
	GetResourceValue(m *board.Map, u *board.Unit) float64
	// IsAccessible reports whether the search may step onto v.
	IsAccessible(m *board.Map, u *board.Unit, v grid.Vector) bool
}

// DefaultConfiguration applies the terrain table, buildings, occupancy and
// transport rules.
type DefaultConfiguration struct{}

var _ MoveConfiguration = DefaultConfiguration{}

// GetCost returns the top layer's cost for the unit's movement type.
// Naval units additionally need the base layer to be passable, so a ship
// cannot pass under a bridge spanning a river. Hostile units block;
// a friendly transporter with room lets a unit board on terrain it could
// not stand on otherwise.
func (DefaultConfiguration) GetCost(m *board.Map, u *board.Unit, v grid.Vector) float64 {
	mt := u.MovementType()
	if b := m.BuildingAt(v); b != nil {
		if !b.Kind.Admits(mt) {
			return terrain.Impassable
		}
		if cost, ok := b.Kind.CostOverride(mt); ok {
			return cost
		}
	}

	occupant := m.UnitAt(v)
	if occupant != nil && occupant != u && m.IsOpponentEntity(u, occupant) {
		return terrain.Impassable
	}

	cost := CellCost(m.MustCellAt(v), mt)
	if cost == terrain.Impassable && canBoard(m, u, occupant) {
		return 1
	}
	return cost
}

// GetTransitionCost returns the terrain transition for the step, or 0 in
// biomes that cancel transitions.
func (DefaultConfiguration) GetTransitionCost(m *board.Map, u *board.Unit, from, to grid.Vector) float64 {
	if m.Biome().CancelsTransitions() || !m.Contains(from) || !m.Contains(to) {
		return 0
	}
	return terrain.TransitionCost(m.MustCellAt(from).Top(), m.MustCellAt(to).Top(), u.MovementType())
}

// GetResourceValue returns the unit's fuel.
func (DefaultConfiguration) GetResourceValue(m *board.Map, u *board.Unit) float64 {
	return float64(u.Fuel)
}

// IsAccessible checks bounds, passability, hostile occupancy, buildings and
// the naval bridge rule: ships may only pass a bridge spanning open sea.
func (DefaultConfiguration) IsAccessible(m *board.Map, u *board.Unit, v grid.Vector) bool {
	if !m.Contains(v) {
		return false
	}
	mt := u.MovementType()
	cell := m.MustCellAt(v)

	occupant := m.UnitAt(v)
	if occupant != nil && occupant != u && m.IsOpponentEntity(u, occupant) {
		return false
	}
	if mt.IsNaval() && cell.Top().ID == terrain.Bridge && !cell.Base().Sea {
		return false
	}
	if b := m.BuildingAt(v); b != nil {
		if !b.Kind.Admits(mt) {
			return false
		}
		if _, ok := b.Kind.CostOverride(mt); ok {
			return true
		}
	}
	return CellCost(cell, mt) != terrain.Impassable || canBoard(m, u, occupant)
}

// CellCost is the terrain cost of cell for mt, ignoring units and buildings.
func CellCost(cell board.Cell, mt terrain.MovementType) float64 {
	cost := cell.Top().Cost(mt)
	if cost == terrain.Impassable {
		return terrain.Impassable
	}
	if cell.IsLayered() && mt.IsNaval() && !cell.Base().Passable(mt) {
		return terrain.Impassable
	}
	return cost
}

// EndsMove reports whether entering v only works by boarding a friendly
// transporter. The search records such a vector but does not step on from
// it: a passenger leaves the transporter on a later move.
func (DefaultConfiguration) EndsMove(m *board.Map, u *board.Unit, v grid.Vector) bool {
	if !m.Contains(v) || !canBoard(m, u, m.UnitAt(v)) {
		return false
	}
	mt := u.MovementType()
	if b := m.BuildingAt(v); b != nil {
		if _, ok := b.Kind.CostOverride(mt); ok {
			return false
		}
	}
	return CellCost(m.MustCellAt(v), mt) == terrain.Impassable
}

// MoveEnder is implemented by configurations in which some vectors can be
// entered but not left within the same move.
type MoveEnder interface {
	EndsMove(m *board.Map, u *board.Unit, v grid.Vector) bool
}

var _ MoveEnder = DefaultConfiguration{}

func canBoard(m *board.Map, u, occupant *board.Unit) bool {
	return occupant != nil && occupant != u && !m.IsOpponentEntity(u, occupant) && occupant.CanLoad(u)
}

// UniformConfiguration costs 1 per tile with no transitions and no budget.
// Every in-bounds vector is accessible; units and buildings are ignored.
type UniformConfiguration struct{}

var _ MoveConfiguration = UniformConfiguration{}

func (UniformConfiguration) GetCost(*board.Map, *board.Unit, grid.Vector) float64 {
	return 1
}

func (UniformConfiguration) GetTransitionCost(*board.Map, *board.Unit, grid.Vector, grid.Vector) float64 {
	return 0
}

func (UniformConfiguration) GetResourceValue(*board.Map, *board.Unit) float64 {
	return math.Inf(1)
}

func (UniformConfiguration) IsAccessible(m *board.Map, _ *board.Unit, v grid.Vector) bool {
	return m.Contains(v)
}

// distanceConfiguration keeps the accessibility and budget of the wrapped
// configuration but prices every passable step at 1 with no transitions.
type distanceConfiguration struct {
	MoveConfiguration
}

func (c distanceConfiguration) GetCost(m *board.Map, u *board.Unit, v grid.Vector) float64 {
	if c.MoveConfiguration.GetCost(m, u, v) < 0 {
		return terrain.Impassable
	}
	return 1
}

func (distanceConfiguration) GetTransitionCost(*board.Map, *board.Unit, grid.Vector, grid.Vector) float64 {
	return 0
}

func (c distanceConfiguration) EndsMove(m *board.Map, u *board.Unit, v grid.Vector) bool {
	ender, ok := c.MoveConfiguration.(MoveEnder)
	return ok && ender.EndsMove(m, u, v)
}
