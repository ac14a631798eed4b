package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/terrain"
	"github.com/wricardo/mcp-training/tactics/game/units"
)

func TestParseAttackMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AttackMode
		wantErr bool
	}{
		{"", AttackModeDefault, false},
		{"default", AttackModeDefault, false},
		{"Cost", AttackModeCost, false},
		{"bogus", AttackModeDefault, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAttackMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "cost", AttackModeCost.String())
}

func TestAttackableCostModeIsNeighborUnion(t *testing.T) {
	soldier := board.NewUnit("s", units.Infantry, 1)
	m := buildMap(t, terrain.Grassland, []string{
		"......",
		"..F...",
		".~~...",
		"......",
		"...T..",
		"......",
	}, nil, placed{grid.Vec(3, 4), soldier})

	reach := Moveable(m, soldier, grid.Vec(3, 4), WithRadius(2))
	attack := Attackable(m, soldier, grid.Vec(3, 4), AttackModeCost, WithRadius(2))

	want := make(map[grid.Vector]float64)
	for _, item := range reach.Items() {
		for _, n := range item.Vector.Adjacent() {
			if !m.Contains(n) {
				continue
			}
			if cost, ok := want[n]; !ok || item.Cost < cost {
				want[n] = item.Cost
			}
		}
	}

	require.Equal(t, len(want), attack.Len())
	for v, nearest := range want {
		source, ok := attack.SourceFor(v)
		require.True(t, ok, "target %s", v)
		assert.Equal(t, 1, v.Distance(source))
		src, ok := reach.Get(source)
		require.True(t, ok)
		assert.Equal(t, nearest, src.Cost, "target %s is tagged with the nearest source", v)
	}
}

func TestAttackableDefaultMode(t *testing.T) {
	soldier := board.NewUnit("s", units.Infantry, 1)
	enemy := board.NewUnit("e", units.SmallTank, 2)
	m := buildMap(t, terrain.Grassland, []string{
		".....",
		".....",
		"..M..",
		".....",
		".....",
	}, nil,
		placed{grid.Vec(3, 3), soldier},
		placed{grid.Vec(3, 5), enemy},
	)

	result := Attackable(m, soldier, grid.Vec(3, 3), AttackModeDefault, WithRadius(1))
	assert.True(t, result.Has(grid.Vec(1, 3)), "distance two through a neighbor")
	assert.False(t, result.Has(grid.Vec(1, 1)))
	source, ok := result.SourceFor(grid.Vec(3, 5))
	require.True(t, ok)
	assert.Equal(t, grid.Vec(3, 4), source)

	targets := result.Targets(m, soldier)
	require.Len(t, targets, 1)
	assert.Equal(t, grid.Vec(3, 5), targets[0].Vector)
}

func TestAttackableDefaultModeNeedsReachableSources(t *testing.T) {
	soldier := board.NewUnit("s", units.Infantry, 1)
	m := buildMap(t, terrain.Grassland, []string{".S..."}, nil, placed{grid.Vec(1, 1), soldier})

	for _, mode := range []AttackMode{AttackModeDefault, AttackModeCost} {
		t.Run(mode.String(), func(t *testing.T) {
			result := Attackable(m, soldier, grid.Vec(1, 1), mode)
			assert.Equal(t, []grid.Vector{grid.Vec(2, 1)}, result.Vectors())
			source, ok := result.SourceFor(grid.Vec(2, 1))
			require.True(t, ok)
			assert.Equal(t, grid.Vec(1, 1), source)
		})
	}
}

func TestAttackableDefaultModeCountsSteps(t *testing.T) {
	soldier := board.NewUnit("s", units.Infantry, 1)
	m := buildMap(t, terrain.Grassland, []string{".MM..."}, nil, placed{grid.Vec(1, 1), soldier})

	// two steps over mountains reach 3,1 when each step counts as one
	distance := Attackable(m, soldier, grid.Vec(1, 1), AttackModeDefault, WithRadius(2))
	source, ok := distance.SourceFor(grid.Vec(4, 1))
	require.True(t, ok)
	assert.Equal(t, grid.Vec(3, 1), source)
	assert.False(t, distance.Has(grid.Vec(5, 1)))

	cost := Attackable(m, soldier, grid.Vec(1, 1), AttackModeCost, WithRadius(2))
	assert.False(t, cost.Has(grid.Vec(4, 1)))
}

func TestAttackableUnionsWeaponRanges(t *testing.T) {
	ship := board.NewUnit("p", units.PatrolShip, 1)
	m := buildMap(t, terrain.Grassland, []string{
		"SSSSS",
		"SSSSS",
		"SSSSS",
	}, nil, placed{grid.Vec(3, 2), ship})
	origin := grid.Vec(3, 2)

	t.Run("origin only", func(t *testing.T) {
		result := Attackable(m, ship, origin, AttackModeDefault, WithRadius(0))
		var torpedo, deckGun int
		for _, item := range result.Items() {
			assert.Equal(t, origin, item.Parent)
			switch item.Vector.Distance(origin) {
			case 1:
				torpedo++
			case 2:
				deckGun++
			default:
				t.Errorf("unexpected target %s", item.Vector)
			}
		}
		assert.Equal(t, 4, torpedo)
		assert.Equal(t, 6, deckGun, "ring two clipped to the map")
	})

	t.Run("first source wins", func(t *testing.T) {
		result := Attackable(m, ship, origin, AttackModeDefault, WithRadius(1))
		tests := []struct {
			target grid.Vector
			source grid.Vector
		}{
			{grid.Vec(3, 1), origin},
			{grid.Vec(4, 1), origin},
			{grid.Vec(1, 2), origin},
			// the origin itself is hit by the torpedo from the first move
			{origin, grid.Vec(3, 1)},
			{grid.Vec(5, 1), grid.Vec(3, 1)},
			{grid.Vec(1, 1), grid.Vec(3, 1)},
		}
		for _, tt := range tests {
			source, ok := result.SourceFor(tt.target)
			require.True(t, ok, "target %s", tt.target)
			assert.Equal(t, tt.source, source, "target %s", tt.target)
		}
	})
}

func TestAttackableDefaultRadius(t *testing.T) {
	soldier := board.NewUnit("s", units.Infantry, 1)
	m := buildMap(t, terrain.Grassland, []string{"..........."}, nil, placed{grid.Vec(1, 1), soldier})

	// infantry moves 3 and fires at range 1
	result := Attackable(m, soldier, grid.Vec(1, 1), AttackModeDefault)
	assert.True(t, result.Has(grid.Vec(5, 1)))
	assert.False(t, result.Has(grid.Vec(6, 1)))
}

func TestAttackableStationaryWeapons(t *testing.T) {
	artillery := board.NewUnit("a", units.Artillery, 1)
	m := buildMap(t, terrain.Grassland, []string{
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	}, nil, placed{grid.Vec(4, 4), artillery})

	for _, mode := range []AttackMode{AttackModeDefault, AttackModeCost} {
		t.Run(mode.String(), func(t *testing.T) {
			result := Attackable(m, artillery, grid.Vec(4, 4), mode)
			require.NotZero(t, result.Len())
			for _, item := range result.Items() {
				assert.Equal(t, grid.Vec(4, 4), item.Parent)
				d := item.Vector.Distance(grid.Vec(4, 4))
				assert.True(t, d >= 2 && d <= 3, "distance %d", d)
			}
			assert.False(t, result.Has(grid.Vec(4, 5)))
		})
	}
}

func TestAttackableWithoutWeapons(t *testing.T) {
	jeep := board.NewUnit("j", units.Jeep, 1)
	m := buildMap(t, terrain.Grassland, []string{"...."}, nil, placed{grid.Vec(1, 1), jeep})
	assert.Equal(t, 0, Attackable(m, jeep, grid.Vec(1, 1), AttackModeCost).Len())
}

func TestAttackableSkipsOccupiedSources(t *testing.T) {
	soldier := board.NewUnit("s", units.Infantry, 1)
	m := buildMap(t, terrain.Grassland, []string{"....."}, nil,
		placed{grid.Vec(1, 1), soldier},
		placed{grid.Vec(2, 1), board.NewUnit("f", units.Infantry, 1)},
	)

	result := Attackable(m, soldier, grid.Vec(1, 1), AttackModeCost, WithRadius(2))
	source, ok := result.SourceFor(grid.Vec(4, 1))
	require.True(t, ok)
	assert.Equal(t, grid.Vec(3, 1), source)
	source, ok = result.SourceFor(grid.Vec(2, 1))
	require.True(t, ok)
	assert.Equal(t, grid.Vec(1, 1), source)
}
