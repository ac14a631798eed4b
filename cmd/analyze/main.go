// Command analyze prints quick, human-readable reachability heuristics about
// the scenario files in a directory (configs by default). For every unit it
// reports how many tiles it can reach this turn, how many of those it can
// stop on, and how many tiles and enemy units it threatens. Units that
// cannot leave their tile are flagged.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/engine"
)

// UnitAnalysis holds the reachability counts of one unit.
type UnitAnalysis struct {
	ID           string
	Type         string
	Player       int
	X, Y         int
	Reachable    int
	Destinations int
	Attackable   int
	Targets      int
}

// Stuck reports whether the unit cannot move off its tile.
func (a UnitAnalysis) Stuck() bool {
	return a.Reachable <= 1
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", dir)
		os.Exit(1)
	}
	sort.Strings(files)

	failed := false
	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeScenario(os.Stdout, file); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func analyzeScenario(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	scenario, err := config.ParseScenario(data)
	if err != nil {
		return err
	}

	results, err := analyzeUnits(scenario)
	if err != nil {
		return err
	}

	width := 0
	if len(scenario.Layout) > 0 {
		width = len([]rune(scenario.Layout[0]))
	}
	fmt.Fprintf(w, "Name: %s\n", scenario.Name)
	fmt.Fprintf(w, "Map Size: %d x %d\n", width, len(scenario.Layout))
	fmt.Fprintf(w, "Units: %d\n", len(results))

	var stuck []UnitAnalysis
	for _, a := range results {
		fmt.Fprintf(w, "  %-10s %-14s p%d (%d,%d): reach %d, stop %d, attack %d, targets %d\n",
			a.ID, a.Type, a.Player, a.X, a.Y, a.Reachable, a.Destinations, a.Attackable, a.Targets)
		if a.Stuck() {
			stuck = append(stuck, a)
		}
	}

	if len(stuck) > 0 {
		ids := make([]string, len(stuck))
		for i, a := range stuck {
			ids[i] = a.ID
		}
		fmt.Fprintf(w, "⚠️  WARNING: %d units cannot leave their tile: %s\n", len(stuck), strings.Join(ids, ", "))
	} else {
		fmt.Fprintf(w, "✅ Every unit can move this turn\n")
	}
	return nil
}

// analyzeUnits runs the movement and attack searches for every unit on the
// scenario map, in map order.
func analyzeUnits(scenario *config.Scenario) ([]UnitAnalysis, error) {
	m, err := scenario.Build()
	if err != nil {
		return nil, err
	}

	var results []UnitAnalysis
	for _, entry := range m.Units() {
		u := entry.Unit
		moves := engine.Moveable(m, u, entry.Vector)
		attacks := engine.Attackable(m, u, entry.Vector, engine.AttackModeDefault)
		results = append(results, UnitAnalysis{
			ID:           u.ID,
			Type:         u.Type.Name,
			Player:       u.Player,
			X:            entry.Vector.X,
			Y:            entry.Vector.Y,
			Reachable:    moves.Len(),
			Destinations: len(moves.Destinations(m, u)),
			Attackable:   attacks.Len(),
			Targets:      len(attacks.Targets(m, u)),
		})
	}
	return results, nil
}
