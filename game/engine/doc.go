// Package engine implements the movement and attack radius search.
//
// The engine answers two questions for a unit on a map snapshot: which
// vectors it can move to (Moveable) and which vectors it threatens
// (Attackable). Both are parameterized by a MoveConfiguration, the cost
// model with four capability slots:
//   - GetCost: base tile cost or terrain.Impassable
//   - GetTransitionCost: one-time surcharge or discount for a step
//   - GetResourceValue: the movement budget (normally fuel)
//   - IsAccessible: bounds, passability and occupancy rules
//
// DefaultConfiguration implements the game rules. Callers override any
// subset by embedding it:
//
//	type roads struct{ engine.DefaultConfiguration }
//
//	func (roads) GetCost(*board.Map, *board.Unit, grid.Vector) float64 { return 1 }
//
//	result := engine.Moveable(m, unit, origin, engine.WithConfiguration(roads{}))
//	path := engine.GetMovementPath(m, target, result, nil).Path
//
// Determinism:
//
// Neighbors are visited in the fixed order up, right, down, left and the
// frontier is a stable priority queue (cost, then insertion order). Two
// calls with the same inputs return identical results, including parents.
//
// Concurrency:
//
// Every call is self-contained and only reads the map. Calls may run in
// parallel as long as nobody mutates the snapshot, which board.Map
// guarantees by construction.
package engine
