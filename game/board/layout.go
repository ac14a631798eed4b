package board

import (
	"fmt"

	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/terrain"
)

// NoOverlay marks a position without an overlay in overlay rows.
const NoOverlay = ' '

// ParseLayout converts legend rows into cells. Each character is a tile
// legend character (see terrain.ByCharacter). overlays is optional; when
// given it must have the same shape, with NoOverlay or '.' meaning no overlay.
func ParseLayout(rows []string, overlays []string) (grid.Extent, []Cell, error) {
	if len(rows) == 0 {
		return grid.Extent{}, nil, fmt.Errorf("%w: empty layout", ErrInvalidMap)
	}
	width := len([]rune(rows[0]))
	extent := grid.Extent{Width: width, Height: len(rows)}
	if overlays != nil && len(overlays) != len(rows) {
		return grid.Extent{}, nil, fmt.Errorf("%w: overlays have %d rows, layout has %d", ErrInvalidMap, len(overlays), len(rows))
	}

	cells := make([]Cell, 0, extent.Size())
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return grid.Extent{}, nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidMap, y+1, len(runes), width)
		}
		var overlayRunes []rune
		if overlays != nil {
			overlayRunes = []rune(overlays[y])
			if len(overlayRunes) != width {
				return grid.Extent{}, nil, fmt.Errorf("%w: overlay row %d has %d columns, expected %d", ErrInvalidMap, y+1, len(overlayRunes), width)
			}
		}
		for x, r := range runes {
			base, err := terrain.ByCharacter(r)
			if err != nil {
				return grid.Extent{}, nil, fmt.Errorf("%w: row %d col %d: %v", ErrInvalidMap, y+1, x+1, err)
			}
			cell := Single(base)
			if overlayRunes != nil && overlayRunes[x] != NoOverlay && overlayRunes[x] != '.' {
				overlay, err := terrain.ByCharacter(overlayRunes[x])
				if err != nil {
					return grid.Extent{}, nil, fmt.Errorf("%w: overlay row %d col %d: %v", ErrInvalidMap, y+1, x+1, err)
				}
				cell = Layered(base, overlay)
			}
			cells = append(cells, cell)
		}
	}
	return extent, cells, nil
}
