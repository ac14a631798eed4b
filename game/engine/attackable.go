package engine

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/grid"
)

// AttackMode selects how Attackable finds the tiles a unit can fire from.
type AttackMode uint8

const (
	// AttackModeDefault counts every step as 1 against the budget: terrain
	// cost and transitions are ignored, but a firing tile must still be
	// reachable through accessible tiles.
	AttackModeDefault AttackMode = iota
	// AttackModeCost fires from every tile Moveable reaches.
	AttackModeCost
)

func (m AttackMode) String() string {
	switch m {
	case AttackModeCost:
		return "cost"
	default:
		return "default"
	}
}

// ParseAttackMode parses "default", "cost" or the empty string.
func ParseAttackMode(s string) (AttackMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "distance":
		return AttackModeDefault, nil
	case "cost":
		return AttackModeCost, nil
	}
	return AttackModeDefault, fmt.Errorf("unknown attack mode %q", s)
}

// AttackItem is one threatened vector and the tile the unit fires from.
type AttackItem struct {
	Vector grid.Vector `json:"vector"`
	Parent grid.Vector `json:"parent"`
}

// AttackResult maps threatened vectors to the firing tile that first
// reached them. Iteration is in discovery order.
type AttackResult struct {
	origin grid.Vector
	items  map[grid.Vector]AttackItem
	order  []grid.Vector
}

func (r *AttackResult) add(v, from grid.Vector) {
	if _, ok := r.items[v]; ok {
		return
	}
	r.items[v] = AttackItem{Vector: v, Parent: from}
	r.order = append(r.order, v)
}

// Origin returns the vector the unit attacks from before moving.
func (r AttackResult) Origin() grid.Vector {
	return r.origin
}

// Get returns the item for v.
func (r AttackResult) Get(v grid.Vector) (AttackItem, bool) {
	item, ok := r.items[v]
	return item, ok
}

// Has reports whether v is threatened.
func (r AttackResult) Has(v grid.Vector) bool {
	_, ok := r.items[v]
	return ok
}

// Len returns the number of threatened vectors.
func (r AttackResult) Len() int {
	return len(r.order)
}

// Vectors returns the threatened vectors in discovery order.
func (r AttackResult) Vectors() []grid.Vector {
	return append([]grid.Vector(nil), r.order...)
}

// Items returns the items in discovery order.
func (r AttackResult) Items() []AttackItem {
	items := make([]AttackItem, len(r.order))
	for i, v := range r.order {
		items[i] = r.items[v]
	}
	return items
}

// SourceFor returns the firing tile for target.
func (r AttackResult) SourceFor(target grid.Vector) (grid.Vector, bool) {
	item, ok := r.items[target]
	return item.Parent, ok
}

// Targets returns the threatened vectors holding an opponent of u.
func (r AttackResult) Targets(m *board.Map, u *board.Unit) []AttackItem {
	var targets []AttackItem
	for _, v := range r.order {
		if other := m.UnitAt(v); other != nil && m.IsOpponentEntity(u, other) {
			targets = append(targets, r.items[v])
		}
	}
	return targets
}

// Attackable returns every vector u can hit this turn from origin.
//
// Firing tiles are the origin plus the tiles u could move to and stand on.
// The mode decides how steps count against the budget. Stationary weapons only fire from the origin. The radius
// defaults to the unit type's movement radius and is capped by the
// configuration's budget.
func Attackable(m *board.Map, u *board.Unit, origin grid.Vector, mode AttackMode, opts ...Option) AttackResult {
	o := buildOptions(append([]Option{WithRadius(float64(u.Type.Radius))}, opts...))
	budget := o.budget(m, u)

	result := AttackResult{origin: origin, items: make(map[grid.Vector]AttackItem)}
	if !m.Contains(origin) || !u.Type.CanAttack() {
		return result
	}

	cfg := o.config
	if mode != AttackModeCost {
		cfg = distanceConfiguration{cfg}
	}
	sources := firingSources(m, u, origin, cfg, budget)

	extent := m.Extent()
	for _, source := range sources {
		for _, w := range u.Type.Weapons {
			if w.Stationary && source != origin {
				continue
			}
			grid.Within(source, w.MinRange, w.MaxRange, func(target grid.Vector) {
				if extent.Contains(target) {
					result.add(target, source)
				}
			})
		}
	}
	return result
}

func firingSources(m *board.Map, u *board.Unit, origin grid.Vector, cfg MoveConfiguration, budget float64) []grid.Vector {
	reach := search(m, u, origin, cfg, budget)
	sources := make([]grid.Vector, 0, reach.Len())
	for _, v := range reach.order {
		if v == origin || standable(m, u, v) {
			sources = append(sources, v)
		}
	}
	return sources
}

// standable reports whether u could end a move on v. Firing from a tile
// held by another unit is not possible.
func standable(m *board.Map, u *board.Unit, v grid.Vector) bool {
	occupant := m.UnitAt(v)
	return occupant == nil || occupant == u
}
