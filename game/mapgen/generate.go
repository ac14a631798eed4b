// Package mapgen builds skirmish scenarios from layered simplex noise.
//
// Elevation and moisture noise decide the base terrain, a river is traced
// downhill from the highest land tile, and a road joins the two
// headquarters. The road is laid by the radius engine itself: a search with
// an unbounded budget under roadConfiguration, followed back with
// GetMovementPath. Water on the road gets a bridge overlay, land becomes
// street.
//
// Generation is deterministic for a given seed.
package mapgen

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/engine"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/terrain"
	"github.com/wricardo/mcp-training/tactics/game/units"
)

// Size limits and defaults for generated maps
const (
	MinSize = 5
	MaxSize = config.MaxMapSize

	DefaultSeed   = 1
	DefaultWidth  = 16
	DefaultHeight = 10
)

// Options holds generation parameters.
type Options struct {
	Seed        int64
	Width       int
	Height      int
	SeaLevel    float64 // elevation below which tiles are sea (0.0-1.0)
	MountainLvl float64 // elevation above which tiles are mountains (0.0-1.0)
}

// DefaultOptions returns a mid-sized skirmish map.
func DefaultOptions() Options {
	return Options{
		Seed:        DefaultSeed,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		SeaLevel:    0.36,
		MountainLvl: 0.66,
	}
}

// World is a generated scenario plus the features laid on it.
type World struct {
	Scenario *config.Scenario
	HQs      [2]grid.Vector
	River    []grid.Vector
	// Road holds the tiles between the headquarters, excluding both. It is
	// empty when deep sea separates them.
	Road []grid.Vector
}

// Generate creates a world for opts.
func Generate(opts Options) (*World, error) {
	if opts.Width < MinSize || opts.Width > MaxSize || opts.Height < MinSize || opts.Height > MaxSize {
		return nil, fmt.Errorf("map must be between %d and %d tiles wide and high, got %dx%d",
			MinSize, MaxSize, opts.Width, opts.Height)
	}
	if opts.SeaLevel >= opts.MountainLvl {
		return nil, fmt.Errorf("sea level %.2f must be below mountain level %.2f", opts.SeaLevel, opts.MountainLvl)
	}

	extent := grid.Extent{Width: opts.Width, Height: opts.Height}
	elevation, moisture := sample(extent, opts.Seed)

	ids := make([]terrain.TileID, extent.Size())
	for i := range ids {
		ids[i] = deriveTile(elevation[i], moisture[i], opts)
	}

	w := &World{HQs: headquarters(extent)}
	for _, hq := range w.HQs {
		ids[extent.Index(hq)] = terrain.Plain
	}

	w.River = traceRiver(extent, ids, elevation, w.HQs, opts.Seed)

	overlays := make([]terrain.TileID, extent.Size())
	m, err := buildMap(extent, ids, overlays)
	if err != nil {
		return nil, err
	}
	w.Road = layRoad(m, w.HQs[0], w.HQs[1])
	for _, v := range w.Road {
		i := extent.Index(v)
		if isWater(ids[i]) {
			overlays[i] = terrain.Bridge
		} else {
			ids[i] = terrain.Street
		}
	}

	w.Scenario = scenario(extent, ids, overlays, w.HQs, opts.Seed)
	if err := config.ValidateScenario(w.Scenario); err != nil {
		return nil, fmt.Errorf("generated scenario is invalid: %w", err)
	}
	return w, nil
}

// sample evaluates both noise layers over the extent. Two generators with
// offset seeds keep the layers independent.
func sample(extent grid.Extent, seed int64) (elevation, moisture []float64) {
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	elevation = make([]float64, extent.Size())
	moisture = make([]float64, extent.Size())
	for i := range elevation {
		v := extent.At(i)
		x, y := float64(v.X), float64(v.Y)
		elevation[i] = octaveNoise(elevNoise, x, y, 3, 0.12, 0.5)
		moisture[i] = octaveNoise(moistNoise, x, y, 2, 0.1, 0.5)
	}
	return elevation, moisture
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func deriveTile(elev, moist float64, opts Options) terrain.TileID {
	switch {
	case elev < opts.SeaLevel-0.08:
		return terrain.DeepSea
	case elev < opts.SeaLevel:
		return terrain.Sea
	case elev < opts.SeaLevel+0.03:
		return terrain.Beach
	case elev > opts.MountainLvl:
		return terrain.Mountain
	case moist > 0.58:
		return terrain.Forest
	}
	return terrain.Plain
}

// headquarters places player 1 on the west edge and player 2 on the east
// edge, one column in, on the middle row.
func headquarters(extent grid.Extent) [2]grid.Vector {
	row := (extent.Height + 1) / 2
	return [2]grid.Vector{grid.Vec(2, row), grid.Vec(extent.Width-1, row)}
}

func isWater(id terrain.TileID) bool {
	switch id {
	case terrain.River, terrain.Sea, terrain.DeepSea, terrain.Reef:
		return true
	}
	return false
}

// traceRiver follows the steepest descent from the highest non-mountain land
// tile until it reaches water or runs out of downhill neighbors. Ties between
// equally high sources are broken with a seeded shuffle.
func traceRiver(extent grid.Extent, ids []terrain.TileID, elevation []float64, hqs [2]grid.Vector, seed int64) []grid.Vector {
	rng := rand.New(rand.NewSource(seed + 100))

	var sources []grid.Vector
	best := -1.0
	for i, id := range ids {
		if id == terrain.Mountain || isWater(id) {
			continue
		}
		v := extent.At(i)
		if v == hqs[0] || v == hqs[1] {
			continue
		}
		switch {
		case elevation[i] > best:
			best = elevation[i]
			sources = []grid.Vector{v}
		case elevation[i] == best:
			sources = append(sources, v)
		}
	}
	if len(sources) == 0 {
		return nil
	}
	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})

	var river []grid.Vector
	visited := make(map[grid.Vector]bool)
	current := sources[0]
	for step := 0; step < extent.Size(); step++ {
		visited[current] = true
		index := extent.Index(current)
		if isWater(ids[index]) {
			break
		}
		if ids[index] != terrain.Mountain && current != hqs[0] && current != hqs[1] {
			ids[index] = terrain.River
			river = append(river, current)
		}

		next, lowest := grid.Vector{}, elevation[index]
		for _, n := range current.Adjacent() {
			ni := extent.Index(n)
			if ni < 0 || visited[n] {
				continue
			}
			if elevation[ni] < lowest {
				next, lowest = n, elevation[ni]
			}
		}
		if next.IsZero() {
			break
		}
		current = next
	}
	return river
}

func buildMap(extent grid.Extent, ids, overlays []terrain.TileID) (*board.Map, error) {
	cells := make([]board.Cell, extent.Size())
	for i, id := range ids {
		base, err := terrain.Lookup(id)
		if err != nil {
			return nil, err
		}
		cells[i] = board.Single(base)
		if overlays[i] != terrain.NoTile {
			top, err := terrain.Lookup(overlays[i])
			if err != nil {
				return nil, err
			}
			cells[i] = board.Layered(base, top)
		}
	}
	return board.New(board.Config{Extent: extent, Cells: cells})
}

// layRoad returns the cheapest road from a to b under roadConfiguration,
// without its endpoints.
func layRoad(m *board.Map, a, b grid.Vector) []grid.Vector {
	result := engine.Moveable(m, surveyor(), a, engine.WithConfiguration(roadConfiguration{}))
	return engine.GetMovementPath(m, b, result, nil).Approach().Path
}

func surveyor() *board.Unit {
	return board.NewUnit("surveyor", units.Jeep, board.Neutral)
}

// roadConfiguration prices road building: every tile costs 1 except
// mountains at 3. Units, buildings and transitions are ignored and the
// budget is unbounded. Only deep sea cannot carry a bridge.
type roadConfiguration struct{}

var _ engine.MoveConfiguration = roadConfiguration{}

func (roadConfiguration) GetCost(m *board.Map, _ *board.Unit, v grid.Vector) float64 {
	if m.MustCellAt(v).Base().ID == terrain.Mountain {
		return 3
	}
	return 1
}

func (roadConfiguration) GetTransitionCost(*board.Map, *board.Unit, grid.Vector, grid.Vector) float64 {
	return 0
}

func (roadConfiguration) GetResourceValue(*board.Map, *board.Unit) float64 {
	return math.Inf(1)
}

func (roadConfiguration) IsAccessible(m *board.Map, _ *board.Unit, v grid.Vector) bool {
	return m.Contains(v) && m.MustCellAt(v).Base().ID != terrain.DeepSea
}

func scenario(extent grid.Extent, ids, overlays []terrain.TileID, hqs [2]grid.Vector, seed int64) *config.Scenario {
	s := &config.Scenario{
		Name:        fmt.Sprintf("generated-%d", seed),
		Description: fmt.Sprintf("Generated %dx%d skirmish (seed %d)", extent.Width, extent.Height, seed),
		Biome:       terrain.Grassland.String(),
		Layout:      make([]string, extent.Height),
	}

	hasOverlay := false
	overlayRows := make([]string, extent.Height)
	for y := 1; y <= extent.Height; y++ {
		row := make([]rune, extent.Width)
		overlayRow := make([]rune, extent.Width)
		for x := 1; x <= extent.Width; x++ {
			i := extent.Index(grid.Vec(x, y))
			row[x-1] = character(ids[i])
			overlayRow[x-1] = '.'
			if overlays[i] != terrain.NoTile {
				overlayRow[x-1] = character(overlays[i])
				hasOverlay = true
			}
		}
		s.Layout[y-1] = string(row)
		overlayRows[y-1] = string(overlayRow)
	}
	if hasOverlay {
		s.Overlays = overlayRows
	}

	for i, hq := range hqs {
		player := i + 1
		s.Buildings = append(s.Buildings, config.BuildingSpec{Kind: "hq", Player: player, X: hq.X, Y: hq.Y})
		s.Units = append(s.Units, config.UnitSpec{
			ID: fmt.Sprintf("p%d-inf", player), Type: "Infantry", Player: player, X: hq.X, Y: hq.Y,
		})
	}
	return s
}

func character(id terrain.TileID) rune {
	t, err := terrain.Lookup(id)
	if err != nil {
		return '?'
	}
	return t.Character
}
