package engine

import (
	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/grid"
)

// RadiusItem is one reachable vector: the minimal cost to reach it and the
// predecessor on that path. The origin has a zero Parent.
type RadiusItem struct {
	Vector grid.Vector `json:"vector"`
	Cost   float64     `json:"cost"`
	Parent grid.Vector `json:"parent"`
}

// HasParent reports whether the item is not the origin.
func (i RadiusItem) HasParent() bool {
	return !i.Parent.IsZero()
}

// SearchResult maps reachable vectors to their RadiusItem. Iteration
// methods return items in the order the search finalized them, which is
// non-decreasing cost.
type SearchResult struct {
	origin grid.Vector
	items  map[grid.Vector]RadiusItem
	order  []grid.Vector
}

func newSearchResult(origin grid.Vector, capacity int) SearchResult {
	return SearchResult{
		origin: origin,
		items:  make(map[grid.Vector]RadiusItem, capacity),
		order:  make([]grid.Vector, 0, capacity),
	}
}

func (r *SearchResult) add(item RadiusItem) {
	r.items[item.Vector] = item
	r.order = append(r.order, item.Vector)
}

// Origin returns the vector the search started from.
func (r SearchResult) Origin() grid.Vector {
	return r.origin
}

// Get returns the item for v.
func (r SearchResult) Get(v grid.Vector) (RadiusItem, bool) {
	item, ok := r.items[v]
	return item, ok
}

// Has reports whether v is reachable.
func (r SearchResult) Has(v grid.Vector) bool {
	_, ok := r.items[v]
	return ok
}

// Len returns the number of reachable vectors, origin included.
func (r SearchResult) Len() int {
	return len(r.order)
}

// Vectors returns the reachable vectors in finalization order.
func (r SearchResult) Vectors() []grid.Vector {
	return append([]grid.Vector(nil), r.order...)
}

// Items returns the items in finalization order.
func (r SearchResult) Items() []RadiusItem {
	items := make([]RadiusItem, len(r.order))
	for i, v := range r.order {
		items[i] = r.items[v]
	}
	return items
}

// Destinations returns the items u may end its move on: empty tiles, its
// own tile and friendly transporters with room for it. Tiles holding other
// units are traversable but are not destinations.
func (r SearchResult) Destinations(m *board.Map, u *board.Unit) []RadiusItem {
	items := make([]RadiusItem, 0, len(r.order))
	for _, v := range r.order {
		if canStop(m, u, v) {
			items = append(items, r.items[v])
		}
	}
	return items
}

func canStop(m *board.Map, u *board.Unit, v grid.Vector) bool {
	occupant := m.UnitAt(v)
	return occupant == nil || occupant == u || canBoard(m, u, occupant)
}

// Option configures a search.
type Option func(*searchOptions)

type searchOptions struct {
	radius    float64
	hasRadius bool
	config    MoveConfiguration
}

// WithRadius caps the budget at r. The budget never exceeds the
// configuration's resource value.
func WithRadius(r float64) Option {
	return func(o *searchOptions) {
		o.radius = r
		o.hasRadius = true
	}
}

// WithConfiguration replaces DefaultConfiguration.
func WithConfiguration(c MoveConfiguration) Option {
	return func(o *searchOptions) {
		if c != nil {
			o.config = c
		}
	}
}

func buildOptions(opts []Option) searchOptions {
	o := searchOptions{config: DefaultConfiguration{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o searchOptions) budget(m *board.Map, u *board.Unit) float64 {
	budget := o.config.GetResourceValue(m, u)
	if o.hasRadius && o.radius < budget {
		budget = o.radius
	}
	if budget < 0 {
		budget = 0
	}
	return budget
}

const (
	unseen uint8 = iota
	queued
	finalized
)

// Moveable returns every vector u can reach from origin within its budget.
//
// The search is a uniform-cost search over the 4-connected grid. A step
// costs GetCost plus GetTransitionCost, clamped at zero so costs never
// decrease along a path. Candidates above the budget are dropped. The
// origin is always part of the result at cost 0. A vector the
// configuration marks as ending the move, such as boarding a transporter on
// open water, is reached but never expanded. An empty or tiny result is a
// normal outcome, never an error.
func Moveable(m *board.Map, u *board.Unit, origin grid.Vector, opts ...Option) SearchResult {
	o := buildOptions(opts)
	return search(m, u, origin, o.config, o.budget(m, u))
}

func search(m *board.Map, u *board.Unit, origin grid.Vector, cfg MoveConfiguration, budget float64) SearchResult {
	extent := m.Extent()
	originIndex := extent.Index(origin)
	if originIndex < 0 {
		return newSearchResult(origin, 0)
	}

	size := extent.Size()
	state := make([]uint8, size)
	costs := make([]float64, size)
	result := newSearchResult(origin, 16)
	queue := newFrontier(32)
	ender, _ := cfg.(MoveEnder)

	state[originIndex] = queued
	queue.Push(origin, grid.Vector{}, 0)

	for queue.Len() > 0 {
		current := queue.Pop()
		index := extent.Index(current.vector)
		if state[index] == finalized || current.cost > costs[index] {
			continue
		}
		state[index] = finalized
		result.add(RadiusItem{Vector: current.vector, Cost: current.cost, Parent: current.parent})
		if ender != nil && current.vector != origin && ender.EndsMove(m, u, current.vector) {
			continue
		}

		for _, next := range current.vector.Adjacent() {
			nextIndex := extent.Index(next)
			if nextIndex < 0 || state[nextIndex] == finalized {
				continue
			}
			if !cfg.IsAccessible(m, u, next) {
				continue
			}
			cost := cfg.GetCost(m, u, next)
			if cost < 0 {
				continue
			}
			step := cost + cfg.GetTransitionCost(m, u, current.vector, next)
			if step < 0 {
				step = 0
			}
			nextCost := current.cost + step
			if nextCost > budget {
				continue
			}
			if state[nextIndex] == queued && nextCost >= costs[nextIndex] {
				continue
			}
			state[nextIndex] = queued
			costs[nextIndex] = nextCost
			queue.Push(next, current.vector, nextCost)
		}
	}
	return result
}
