package engine

import (
	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/grid"
)

// MovementPath is the ordered list of steps from a search origin to a
// target. The origin is not part of the path; the target is its last step.
type MovementPath struct {
	Path []grid.Vector `json:"path"`
}

// Len returns the number of steps.
func (p MovementPath) Len() int {
	return len(p.Path)
}

// Target returns the last step.
func (p MovementPath) Target() (grid.Vector, bool) {
	if len(p.Path) == 0 {
		return grid.Vector{}, false
	}
	return p.Path[len(p.Path)-1], true
}

// Approach returns the path without its last step, used to move next to a
// target rather than onto it.
func (p MovementPath) Approach() MovementPath {
	if len(p.Path) == 0 {
		return p
	}
	return MovementPath{Path: append([]grid.Vector(nil), p.Path[:len(p.Path)-1]...)}
}

// GetMovementPath follows parent links from target back to the search
// origin. When target is out of bounds or was not reached, fallback is
// returned unchanged.
func GetMovementPath(m *board.Map, target grid.Vector, result SearchResult, fallback []grid.Vector) MovementPath {
	if !m.Contains(target) {
		return MovementPath{Path: fallback}
	}
	item, ok := result.Get(target)
	if !ok {
		return MovementPath{Path: fallback}
	}

	var reversed []grid.Vector
	for item.HasParent() {
		reversed = append(reversed, item.Vector)
		next, ok := result.Get(item.Parent)
		if !ok {
			return MovementPath{Path: fallback}
		}
		item = next
	}

	path := make([]grid.Vector, len(reversed))
	for i, v := range reversed {
		path[len(reversed)-1-i] = v
	}
	return MovementPath{Path: path}
}

// PathCost sums the cost of walking path from origin under cfg. It returns
// false when a step is inaccessible, impassable or not orthogonal.
func PathCost(m *board.Map, u *board.Unit, origin grid.Vector, path []grid.Vector, cfg MoveConfiguration) (float64, bool) {
	if cfg == nil {
		cfg = DefaultConfiguration{}
	}
	total := 0.0
	from := origin
	for _, to := range path {
		if from.Distance(to) != 1 || !cfg.IsAccessible(m, u, to) {
			return 0, false
		}
		cost := cfg.GetCost(m, u, to)
		if cost < 0 {
			return 0, false
		}
		step := cost + cfg.GetTransitionCost(m, u, from, to)
		if step < 0 {
			step = 0
		}
		total += step
		from = to
	}
	return total, true
}
