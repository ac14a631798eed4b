package board

import "github.com/wricardo/mcp-training/tactics/game/terrain"

// Cell is one map position: either a single tile or a base tile with an
// overlay stacked on top (a bridge over a river, a pier over the sea).
type Cell struct {
	base    *terrain.Tile
	overlay *terrain.Tile
}

// Single returns a one-layer cell.
func Single(tile *terrain.Tile) Cell {
	return Cell{base: tile}
}

// Layered returns a two-layer cell.
func Layered(base, overlay *terrain.Tile) Cell {
	return Cell{base: base, overlay: overlay}
}

// IsZero reports whether the cell holds no tile.
func (c Cell) IsZero() bool {
	return c.base == nil
}

// IsLayered reports whether the cell has an overlay.
func (c Cell) IsLayered() bool {
	return c.overlay != nil
}

// Base returns layer 0.
func (c Cell) Base() *terrain.Tile {
	return c.base
}

// Top returns the overlay when present, otherwise the base.
func (c Cell) Top() *terrain.Tile {
	if c.overlay != nil {
		return c.overlay
	}
	return c.base
}

// Layer returns layer i (0 base, 1 overlay).
func (c Cell) Layer(i int) (*terrain.Tile, bool) {
	switch {
	case i == 0 && c.base != nil:
		return c.base, true
	case i == 1 && c.overlay != nil:
		return c.overlay, true
	}
	return nil, false
}

// Has reports whether either layer is the tile id.
func (c Cell) Has(id terrain.TileID) bool {
	return (c.base != nil && c.base.ID == id) || (c.overlay != nil && c.overlay.ID == id)
}

func (c Cell) String() string {
	if c.base == nil {
		return "<empty>"
	}
	if c.overlay != nil {
		return c.overlay.Name + "/" + c.base.Name
	}
	return c.base.Name
}
